// Package memory implements the store contract in process memory. It exists
// for tests and local development; semantics mirror the mongo driver exactly.
package memory

import (
	"context"

	"github.com/rblessings/urlradar/internal/identity/store"
)

// Store holds all repositories behind a single lock-free facade.
type Store struct {
	users *Users
}

var _ store.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{users: newUsers()}
}

// Users returns the user repository.
func (s *Store) Users() store.Users { return s.users }

// Ping always succeeds; there is no connection to lose.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }
