// Package idx generates the lexicographically sortable ULID identifiers used
// for user records. IDs embed their creation time, so listing by id is
// effectively listing by age.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

var (
	once sync.Once
	gen  *generator
)

// generator produces ULIDs safely under concurrent use via a shared
// monotonic entropy source.
type generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func (g *generator) newAt(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}

func initGen() {
	gen = &generator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a fresh ULID string using the current UTC time.
func New() string {
	once.Do(initGen)
	return gen.newAt(time.Now().UTC())
}

// NewAt generates an id at the provided time. Useful for tests that need
// deterministic ordering.
func NewAt(t time.Time) string {
	once.Do(initGen)
	return gen.newAt(t.UTC())
}

// Validate reports whether s is a well-formed ULID.
func Validate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return ErrInvalid
	}
	return nil
}

// Time extracts the embedded UTC timestamp, or the zero time for invalid ids.
func Time(s string) time.Time {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}
