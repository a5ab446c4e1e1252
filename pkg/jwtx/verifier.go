package jwtx

import (
	"errors"
	"time"
)

// Verifier validates a JWT string and returns its claims if the token is
// authentic and current.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Leeway tolerated when validating exp/nbf. Clock sync is never perfect.
const DefaultLeeway = 30 * time.Second

var (
	ErrMalformed      = errors.New("jwtx: malformed token")
	ErrUnknownKID     = errors.New("jwtx: unknown kid")
	ErrUnsupportedKey = errors.New("jwtx: unsupported key type")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)
