// Package ratelimit implements the durable per-user cooldown ledger.
//
// Every mutation goes through a single atomic CheckAndReserve operation:
// read the user's last accepted submission, decide, and (only when allowed)
// record the new timestamp, all in one indivisible store operation. Separate
// read-then-write calls would let two concurrent submissions from the same
// user both observe an expired window.
//
// When the backing store is unreachable the caller receives
// ErrStoreUnavailable. The pipeline fails open on that error so a transient
// outage does not block legitimate users; the known risk is that a store
// outage disables rate limiting entirely.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable is returned when the backing store cannot be reached
// or does not answer within the operation's timeout.
var ErrStoreUnavailable = errors.New("rate limit store unavailable")

// Outcome is the result of one atomic cooldown check.
type Outcome struct {
	Allowed bool
	// Remaining is how long the user must wait before the next submission
	// is accepted. Zero when Allowed.
	Remaining time.Duration
}

// RetryAfterSeconds returns Remaining as whole seconds, rounded up so a
// limited user is never told to wait zero seconds.
func (o Outcome) RetryAfterSeconds() int {
	if o.Allowed || o.Remaining <= 0 {
		return 0
	}
	secs := int(o.Remaining / time.Second)
	if o.Remaining%time.Second != 0 {
		secs++
	}
	return secs
}

// Store is the per-user cooldown ledger. Implementations keep at most one
// record per user and update it in place.
type Store interface {
	// CheckAndReserve atomically checks the cooldown window for userID and,
	// when the window has passed (or no record exists), records now as the
	// last accepted submission. The Limited path mutates nothing.
	CheckAndReserve(ctx context.Context, userID string, now time.Time, cooldown time.Duration) (Outcome, error)
}

// defaultOpTimeout bounds a single store operation. A store that does not
// answer in time is treated as unavailable.
const defaultOpTimeout = 5 * time.Second
