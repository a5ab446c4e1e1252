package domain

import (
	"strings"
	"time"
)

// User is the stored identity record. Identity is keyed on the normalized
// email alone; the id exists for stable references and the version for
// optimistic locking.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string // unique identity key, normalized at the service boundary
	PasswordHash string // PHC-encoded, never serialized outward
	Version      int64  // bumped by the store on every successful update
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserView is the outward-facing projection of a User. It deliberately has
// no password field of any kind.
type UserView struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// View returns the sanitized projection of the user.
func (u User) View() UserView {
	return UserView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// NormalizeEmail applies the fixed write-time normalization policy: trim and
// lowercase. Two addresses are the same identity iff they normalize equal.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
