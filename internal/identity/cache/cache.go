// Package cache provides the read-through user cache. Entries are full
// internal records keyed by id and by normalized email; absence is never
// cached. The cache is an optimization layer only, so every implementation
// must let callers degrade to the store when it misbehaves.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rblessings/urlradar/internal/identity/domain"
)

// DefaultTTL is the entry lifetime applied when no override is configured.
const DefaultTTL = 10 * time.Minute

// ErrMiss reports that no live entry exists under the key. A miss is an
// expected outcome, distinct from a transport failure.
var ErrMiss = errors.New("cache: miss")

// Cache stores user records for bounded staleness reads.
type Cache interface {
	// Get returns the record under key, or ErrMiss.
	Get(ctx context.Context, key string) (domain.User, error)

	// Put stores the record under key for ttl. A non-positive ttl falls back
	// to DefaultTTL.
	Put(ctx context.Context, key string, u domain.User, ttl time.Duration) error

	// Invalidate removes the entry under key. Removing an absent key is not
	// an error.
	Invalidate(ctx context.Context, key string) error
}

// UserIDKey builds the cache key for a lookup by id.
func UserIDKey(id string) string { return "users:id:" + id }

// UserEmailKey builds the cache key for a lookup by normalized email.
func UserEmailKey(email string) string {
	return "users:email:" + domain.NormalizeEmail(email)
}
