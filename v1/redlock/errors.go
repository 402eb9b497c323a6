package redlock

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by LockError and ConfigError. Callers discriminate
// with errors.Is, not by comparing error strings.
var (
	// ErrNoClients is returned by New when given an empty client list.
	ErrNoClients = errors.New("redlock: at least one server client is required")

	// ErrLockNotObtained means acquire/extend exhausted every retry round
	// without reaching quorum with positive validity.
	ErrLockNotObtained = errors.New("redlock: lock not obtained")

	// ErrLockStale means extend was attempted on a handle whose expiration
	// had already passed; no server round was attempted.
	ErrLockStale = errors.New("redlock: lock is stale")

	// ErrLockNotHeld means release (or an extend mismatched at round one)
	// could not reach quorum of servers agreeing the caller still owns the
	// lock.
	ErrLockNotHeld = errors.New("redlock: lock not held")
)

// ConfigError is raised at construction time. It is never a LockError.
type ConfigError struct {
	err error
}

func (e *ConfigError) Error() string { return e.err.Error() }
func (e *ConfigError) Unwrap() error { return e.err }

// LockError is returned by Acquire, Extend and Release when an operation
// fails to reach quorum, or when ctx is done during a backoff sleep.
// Attempts reports how many rounds were used, except that an Extend on a
// stale handle, or one with no matching server at round one, reports 0.
type LockError struct {
	Op       string
	Attempts int
	err      error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("redlock: %s failed after %d attempt(s): %v", e.Op, e.Attempts, e.err)
}

func (e *LockError) Unwrap() error { return e.err }

func newLockError(op string, attempts int, err error) *LockError {
	return &LockError{Op: op, Attempts: attempts, err: err}
}
