package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time and safe for use as DynamoDB sort keys.
func New() string {
	return NewAt(time.Now())
}

// NewAt generates a ULID stamped with t. Within one process, ids generated for
// the same millisecond are strictly increasing, so sorting by id preserves
// insertion order for equal timestamps.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// NewStamped reads the clock and generates a ULID for that instant under one
// lock. Across concurrent callers, ordering by (timestamp, id) and ordering by
// id alone agree.
func NewStamped(now func() time.Time) (string, time.Time) {
	mu.Lock()
	defer mu.Unlock()
	t := now()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String(), t
}

// Valid reports whether s parses as a ULID.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
