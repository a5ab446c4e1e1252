package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rblessings/urlradar/internal/identity/domain"
)

const redisOpTimeout = 5 * time.Second

// Redis implements Cache on a Redis server. Records are stored as JSON
// strings with a per-key TTL, so expiry needs no bookkeeping of our own.
type Redis struct {
	client *redis.Client
}

var _ Cache = (*Redis)(nil)

// NewRedis builds a cache against the server at host:port. The connection is
// lazy; call Ping to verify reachability at startup.
func NewRedis(host, port string) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:         net.JoinHostPort(host, port),
			DialTimeout:  redisOpTimeout,
			ReadTimeout:  redisOpTimeout,
			WriteTimeout: redisOpTimeout,
		}),
	}
}

// NewRedisWithClient wraps an existing client. Used by tests.
func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Ping verifies the server is reachable.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client's connection pool.
func (c *Redis) Close() error { return c.client.Close() }

func (c *Redis) Get(ctx context.Context, key string) (domain.User, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.User{}, ErrMiss
		}
		return domain.User{}, fmt.Errorf("cache get: %w", err)
	}

	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		// A corrupt entry behaves like a miss so the caller falls back to
		// the store; drop it so it cannot poison later reads.
		_ = c.client.Del(ctx, key).Err()
		return domain.User{}, ErrMiss
	}
	return u, nil
}

func (c *Redis) Put(ctx context.Context, key string, u domain.User, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

func (c *Redis) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
