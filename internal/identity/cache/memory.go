package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rblessings/urlradar/internal/identity/domain"
)

type memoryEntry struct {
	user      domain.User
	expiresAt time.Time
}

// Memory implements Cache on a process-local map. Expired entries are
// reaped lazily on read; good enough for tests and single-node development.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ Cache = (*Memory)(nil)

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *Memory) Get(_ context.Context, key string) (domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.User{}, ErrMiss
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return domain.User{}, ErrMiss
	}
	return e.user, nil
}

func (c *Memory) Put(_ context.Context, key string, u domain.User, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{user: u, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *Memory) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
