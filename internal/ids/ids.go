package ids

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// NewAt returns an identifier stamped with t, so ids minted from a test clock
// still sort by that clock.
func NewAt(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Prefixed returns kind_ULID, e.g. "ses_01J...".
func Prefixed(kind string, t time.Time) string {
	return kind + "_" + NewAt(t)
}

// Time extracts the timestamp embedded in an identifier produced by this package.
func Time(id string) (time.Time, bool) {
	if i := len(id) - ulid.EncodedSize; i > 0 {
		id = id[i:]
	}
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(u.Time()), true
}
