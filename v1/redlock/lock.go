package redlock

import (
	"context"
	"time"
)

// Lock is a handle to a held lease. It is immutable except for Expiration
// and Attempts, both of which a successful Extend overwrites in place;
// Extend returns the same *Lock it was given. Unlock is the only way to
// logically release a Lock — there is no server-enforced removal of the
// handle itself, the manager simply stops promising correctness for it.
type Lock struct {
	manager    *Manager
	resource   Resource
	value      string
	expiration int64 // wall-clock ms
	attempts   int
}

// Resource returns the keyset this lock protects.
func (l *Lock) Resource() Resource { return l.resource }

// Value returns the opaque per-acquisition token. It is stable across
// Extend calls and only meant for diagnostics; callers should not depend on
// its format.
func (l *Lock) Value() string { return l.value }

// Expiration returns the wall-clock time after which the lock is no longer
// guaranteed held.
func (l *Lock) Expiration() time.Time {
	return time.UnixMilli(l.expiration)
}

// Attempts reports how many rounds were used by the lock's most recent
// successful Acquire or Extend.
func (l *Lock) Attempts() int { return l.attempts }

// Stale reports whether the lock's expiration has already passed.
func (l *Lock) Stale() bool {
	return l.expiration <= time.Now().UnixMilli()
}

// Unlock releases the lock. It delegates to the owning Manager.
func (l *Lock) Unlock(ctx context.Context) error {
	return l.manager.Release(ctx, l)
}

// Extend resets the lock's lease to ttl from now; the remaining time is
// replaced, not added to. It delegates to the owning Manager and, on
// success, returns the same *Lock with Expiration and Attempts updated in
// place.
func (l *Lock) Extend(ctx context.Context, ttl time.Duration) (*Lock, error) {
	return l.manager.Extend(ctx, l, ttl)
}
