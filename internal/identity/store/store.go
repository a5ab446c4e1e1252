// Package store defines the durable storage contract for user records.
// Concrete drivers (mongo for production, memory for tests) implement it.
package store

import (
	"context"
	"errors"

	"github.com/rblessings/urlradar/internal/identity/domain"
)

var (
	// ErrNotFound reports an absent record. Absence is an expected outcome,
	// not a transport failure.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateEmail reports a violation of the unique email index. The
	// index is the authoritative uniqueness guarantee; any pre-check in the
	// service is only a fast path.
	ErrDuplicateEmail = errors.New("store: email already exists")

	// ErrVersionConflict reports a stale-version update. The caller's copy of
	// the record lost a concurrent write; nothing was applied.
	ErrVersionConflict = errors.New("store: version conflict")
)

// Store is the root data access interface. It exposes the users
// sub-repository so the surface stays tidy as further entities arrive.
type Store interface {
	Users() Users

	// Ping verifies the backing store connection is alive.
	Ping(ctx context.Context) error

	// Close releases the underlying connection resources.
	Close(ctx context.Context) error
}

// Users is the user record repository. Implementations must not hold any
// in-process lock across the I/O boundary: uniqueness and version safety
// are delegated to the store's index and compare-and-swap machinery, since
// multiple service instances run concurrently.
type Users interface {
	// Insert persists a new record, assigning its id and initial version.
	// Returns ErrDuplicateEmail when the unique email index rejects it.
	Insert(ctx context.Context, u domain.User) (domain.User, error)

	// GetByID returns a record by id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByEmail returns a record by its normalized email, or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// UpdateWithVersion applies u only if the stored version still equals
	// u.Version, atomically incrementing the version on success. A stale
	// version yields ErrVersionConflict with no partial changes; an unknown
	// id yields ErrNotFound. Conflicts are never retried here; retry with a
	// fresh read is caller policy.
	UpdateWithVersion(ctx context.Context, u domain.User) (domain.User, error)
}
