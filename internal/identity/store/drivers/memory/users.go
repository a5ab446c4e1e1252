package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rblessings/urlradar/internal/identity/domain"
	"github.com/rblessings/urlradar/internal/identity/store"
	"github.com/rblessings/urlradar/pkg/idx"
)

// Users implements store.Users on two in-memory indexes guarded by one mutex.
type Users struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> id
}

var _ store.Users = (*Users)(nil)

func newUsers() *Users {
	return &Users{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

// Insert persists a new user under the lock, enforcing email uniqueness the
// way the mongo driver's index does.
func (r *Users) Insert(_ context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return domain.User{}, store.ErrDuplicateEmail
	}

	now := time.Now().UTC()
	u.ID = idx.New()
	u.Version = 1
	u.CreatedAt = now
	u.UpdatedAt = now

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return u, nil
}

// GetByID returns the record with the given id.
func (r *Users) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

// GetByEmail returns the record with the given normalized email.
func (r *Users) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return r.byID[id], nil
}

// UpdateWithVersion applies the record only when the stored version matches.
func (r *Users) UpdateWithVersion(_ context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[u.ID]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	if current.Version != u.Version {
		return domain.User{}, store.ErrVersionConflict
	}

	if u.Email != current.Email {
		if _, taken := r.byEmail[u.Email]; taken {
			return domain.User{}, store.ErrDuplicateEmail
		}
		delete(r.byEmail, current.Email)
		r.byEmail[u.Email] = u.ID
	}

	u.Version = current.Version + 1
	u.CreatedAt = current.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	r.byID[u.ID] = u
	return u, nil
}
