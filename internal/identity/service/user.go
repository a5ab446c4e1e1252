// Package service implements the user registry use cases on top of the
// store and cache layers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rblessings/urlradar/internal/identity/cache"
	"github.com/rblessings/urlradar/internal/identity/domain"
	"github.com/rblessings/urlradar/internal/identity/store"
	"github.com/rblessings/urlradar/pkg/cryptox"
)

// ErrUserNotFound reports a lookup for a user that does not exist.
var ErrUserNotFound = errors.New("service: user not found")

// EmailInUseError reports a registration attempt with an address that
// already names an existing identity.
type EmailInUseError struct {
	Email string
}

func (e *EmailInUseError) Error() string {
	return fmt.Sprintf("The email address '%s' is already in use.", e.Email)
}

// RegisterUserRequest carries the raw registration input. The email is
// normalized and the password hashed inside the service; callers never deal
// in stored representations.
type RegisterUserRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserService is the registry of user identities. Reads go through the cache
// with the store as the source of truth; cache failures degrade to store
// reads rather than failing the request.
type UserService struct {
	Store  store.Store
	Cache  cache.Cache
	TTL    time.Duration
	Logger *slog.Logger
}

// NewUserService wires a service with the default cache TTL.
func NewUserService(st store.Store, c cache.Cache, logger *slog.Logger) *UserService {
	return &UserService{
		Store:  st,
		Cache:  c,
		TTL:    cache.DefaultTTL,
		Logger: logger,
	}
}

// Register creates a new user identity. The normalized email must be unique;
// the store's unique index is the authority under concurrency, so a lost
// race surfaces as the same EmailInUseError as the fast-path check.
func (s *UserService) Register(ctx context.Context, req RegisterUserRequest) (domain.UserView, error) {
	email := domain.NormalizeEmail(req.Email)

	// Fast-path existence check through the cache. Purely advisory: the
	// insert below is what actually enforces uniqueness.
	if _, err := s.findByEmail(ctx, email); err == nil {
		return domain.UserView{}, &EmailInUseError{Email: email}
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.UserView{}, fmt.Errorf("check existing email: %w", err)
	}

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return domain.UserView{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.Store.Users().Insert(ctx, domain.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return domain.UserView{}, &EmailInUseError{Email: email}
		}
		return domain.UserView{}, fmt.Errorf("insert user: %w", err)
	}

	s.populateCache(ctx, created)
	return created.View(), nil
}

// FindByID returns the user with the given id, or ErrUserNotFound.
func (s *UserService) FindByID(ctx context.Context, id string) (domain.UserView, error) {
	u, err := s.lookup(ctx, cache.UserIDKey(id), func(ctx context.Context) (domain.User, error) {
		return s.Store.Users().GetByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.UserView{}, ErrUserNotFound
		}
		return domain.UserView{}, err
	}
	return u.View(), nil
}

// FindByEmail returns the user with the given email, or ErrUserNotFound.
// The email is normalized before lookup.
func (s *UserService) FindByEmail(ctx context.Context, email string) (domain.UserView, error) {
	u, err := s.findByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.UserView{}, ErrUserNotFound
		}
		return domain.UserView{}, err
	}
	return u.View(), nil
}

func (s *UserService) findByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.lookup(ctx, cache.UserEmailKey(email), func(ctx context.Context) (domain.User, error) {
		return s.Store.Users().GetByEmail(ctx, email)
	})
}

// lookup is the cache-aside read path: try the cache, fall back to the
// store, populate the cache on a hit. Absence is never cached, so a record
// created after a miss is visible on the very next read.
func (s *UserService) lookup(ctx context.Context, key string, fetch func(context.Context) (domain.User, error)) (domain.User, error) {
	if s.Cache != nil {
		u, err := s.Cache.Get(ctx, key)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log().WarnContext(ctx, "cache read failed, falling back to store", "key", key, "err", err)
		}
	}

	u, err := fetch(ctx)
	if err != nil {
		return domain.User{}, err
	}

	s.populateCache(ctx, u)
	return u, nil
}

// populateCache writes the record under both of its keys. Best effort: a
// failed write only costs a later store read.
func (s *UserService) populateCache(ctx context.Context, u domain.User) {
	if s.Cache == nil {
		return
	}
	for _, key := range []string{cache.UserIDKey(u.ID), cache.UserEmailKey(u.Email)} {
		if err := s.Cache.Put(ctx, key, u, s.ttl()); err != nil {
			s.log().WarnContext(ctx, "cache write failed", "key", key, "err", err)
		}
	}
}

func (s *UserService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return cache.DefaultTTL
}

func (s *UserService) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
