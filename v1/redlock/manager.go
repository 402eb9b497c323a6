package redlock

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ServerClient is the capability set the manager requires from each quorum
// participant: atomically evaluate a compare-and-set script, and disconnect.
type ServerClient interface {
	// Eval runs script atomically against keys with args, and returns the
	// script's integer reply (a count of keys affected).
	Eval(ctx context.Context, script Script, keys []string, args []any) (int64, error)
	// Close disconnects the client. Further use is undefined.
	Close(ctx context.Context) error
}

// CloseResult is one server client's outcome from Manager.Close.
type CloseResult struct {
	Client int
	Err    error
}

// Manager is the Redlock quorum lock façade. It owns a fixed list of server
// clients and hands out Lock handles. A Manager's configuration is
// effectively immutable after construction; the only mutable shared surface
// is the client-error sink, which is safe for concurrent emission from
// multiple in-flight operations.
type Manager struct {
	clients []ServerClient
	quorum  int
	cfg     Config

	mu      sync.Mutex
	errSubs []chan error
}

// New constructs a Manager over clients. It fails with a *ConfigError
// wrapping ErrNoClients if clients is empty.
func New(clients []ServerClient, opts ...Option) (*Manager, error) {
	if len(clients) == 0 {
		return nil, &ConfigError{err: ErrNoClients}
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cs := make([]ServerClient, len(clients))
	copy(cs, clients)
	return &Manager{
		clients: cs,
		quorum:  len(cs)/2 + 1,
		cfg:     cfg,
	}, nil
}

// ClientErrors returns a channel that receives one error per per-server
// failure. Each channel buffers up to 16 errors; sends are non-blocking, so
// once the buffer is full and nobody is reading, further errors are dropped
// rather than stalling the operation that produced them.
func (m *Manager) ClientErrors() <-chan error {
	ch := make(chan error, 16)
	m.mu.Lock()
	m.errSubs = append(m.errSubs, ch)
	m.mu.Unlock()
	return ch
}

func (m *Manager) emitClientError(err error) {
	if m.cfg.onError != nil {
		m.cfg.onError(err)
	}
	m.mu.Lock()
	subs := m.errSubs
	m.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- err:
		default:
		}
	}
}

// Acquire obtains a lock over resource for ttl, retrying up to
// cfg.retryCount additional rounds. On success it returns a Lock whose
// Expiration accounts for clock drift; on failure it returns a *LockError
// wrapping ErrLockNotObtained.
func (m *Manager) Acquire(ctx context.Context, resource Resource, ttl time.Duration) (*Lock, error) {
	value, err := newValue()
	if err != nil {
		return nil, fmt.Errorf("redlock: generating lock value: %w", err)
	}

	end := m.traceStart(ctx, "acquire", resource.String())
	ok := false
	attemptsUsed := 0
	defer func() { end(ok, attemptsUsed) }()

	ttlMs := ttl.Milliseconds()
	rounds := m.cfg.retryCount + 1
	var lastErr error
	for attempt := 1; attempt <= rounds; attempt++ {
		start := time.Now()
		votes := m.broadcastFull(ctx, m.cfg.lockScript, resource.Names(), []any{value, ttlMs})
		drift := computeDrift(ttlMs, m.cfg.driftFactor)
		elapsed := time.Since(start).Milliseconds()
		validity := ttlMs - elapsed - drift

		if votes >= m.quorum && validity > 0 {
			lock := &Lock{
				manager:    m,
				resource:   resource,
				value:      value,
				expiration: start.UnixMilli() + validity,
				attempts:   attempt,
			}
			ok = true
			attemptsUsed = attempt
			m.recordAcquire(resource.String(), true, attempt)
			return lock, nil
		}

		lastErr = fmt.Errorf("quorum %d/%d votes, validity %dms", votes, m.quorum, validity)
		m.rollback(resource.Names(), value)
		if attempt < rounds {
			if err := m.backoffSleep(ctx); err != nil {
				attemptsUsed = attempt
				m.recordAcquire(resource.String(), false, attempt)
				return nil, newLockError("acquire", attempt, err)
			}
		}
	}
	attemptsUsed = rounds
	m.recordAcquire(resource.String(), false, rounds)
	return nil, newLockError("acquire", rounds, errors.Join(ErrLockNotObtained, lastErr))
}

// Extend resets lock's lease to ttl, measured from the start of the
// successful round; the new lease replaces the remaining time rather than
// adding to it. On success it mutates lock in place (Expiration, Attempts)
// and returns the same pointer. A stale lock (one whose Expiration already
// passed) fails immediately with Attempts=0 and no server round.
func (m *Manager) Extend(ctx context.Context, lock *Lock, ttl time.Duration) (*Lock, error) {
	end := m.traceStart(ctx, "extend", lock.resource.String())
	ok := false
	attemptsUsed := 0
	defer func() { end(ok, attemptsUsed) }()

	if lock.Stale() {
		m.recordExtend(lock.resource.String(), false, 0)
		return nil, newLockError("extend", 0, ErrLockStale)
	}

	ttlMs := ttl.Milliseconds()
	rounds := m.cfg.retryCount + 1
	var lastErr error
	for attempt := 1; attempt <= rounds; attempt++ {
		start := time.Now()
		votes := m.broadcastFull(ctx, m.cfg.extendScript, lock.resource.Names(), []any{lock.value, ttlMs})
		drift := computeDrift(ttlMs, m.cfg.driftFactor)
		elapsed := time.Since(start).Milliseconds()
		validity := ttlMs - elapsed - drift

		if votes >= m.quorum && validity > 0 {
			lock.expiration = start.UnixMilli() + validity
			lock.attempts = attempt
			ok = true
			attemptsUsed = attempt
			m.recordExtend(lock.resource.String(), true, attempt)
			return lock, nil
		}

		if attempt == 1 && votes == 0 {
			m.recordExtend(lock.resource.String(), false, 0)
			return nil, newLockError("extend", 0, ErrLockNotHeld)
		}

		lastErr = fmt.Errorf("quorum %d/%d votes, validity %dms", votes, m.quorum, validity)
		if attempt < rounds {
			if err := m.backoffSleep(ctx); err != nil {
				attemptsUsed = attempt
				m.recordExtend(lock.resource.String(), false, attempt)
				return nil, newLockError("extend", attempt, err)
			}
		}
	}
	attemptsUsed = rounds
	m.recordExtend(lock.resource.String(), false, rounds)
	return nil, newLockError("extend", rounds, errors.Join(ErrLockNotObtained, lastErr))
}

// Release unlocks lock. It makes exactly one round — release never
// retries, because a release that misses quorum is usually racing an
// expiration the caller cannot repair anyway. Every server client is always
// attempted, regardless of individual failures.
func (m *Manager) Release(ctx context.Context, lock *Lock) error {
	end := m.traceStart(ctx, "release", lock.resource.String())
	votes := m.broadcastFull(ctx, m.cfg.unlockScript, lock.resource.Names(), []any{lock.value})
	ok := votes >= m.quorum
	end(ok, 1)
	m.recordRelease(lock.resource.String(), ok)
	if !ok {
		return newLockError("release", 1, ErrLockNotHeld)
	}
	return nil
}

// Close disconnects every server client in parallel and returns every
// client's result. After Close, the manager is unusable.
func (m *Manager) Close(ctx context.Context) []CloseResult {
	results := make([]CloseResult, len(m.clients))
	var wg sync.WaitGroup
	for i, c := range m.clients {
		wg.Add(1)
		go func(i int, c ServerClient) {
			defer wg.Done()
			results[i] = CloseResult{Client: i, Err: c.Close(ctx)}
		}(i, c)
	}
	wg.Wait()
	return results
}

// broadcastFull runs script against every server client in parallel and
// counts a server as a vote only if its reply equals len(keys) — the
// "all keys on that server" rule that makes multi-resource locks
// quorum-correct. It waits for every reply before returning, so elapsed
// time reflects the slowest participant.
func (m *Manager) broadcastFull(ctx context.Context, script Script, keys []string, args []any) int {
	return m.broadcast(ctx, script, keys, args, true)
}

func (m *Manager) broadcast(ctx context.Context, script Script, keys []string, args []any, emitErrors bool) int {
	need := int64(len(keys))
	results := make([]int64, len(m.clients))
	errs := make([]error, len(m.clients))

	var g errgroup.Group
	for i, c := range m.clients {
		i, c := i, c
		g.Go(func() error {
			n, err := c.Eval(ctx, script, keys, args)
			results[i] = n
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	votes := 0
	for i, err := range errs {
		if err != nil {
			m.cfg.logger.Debug("redlock: server client failed", "client", i, "error", err, "suppressed", !emitErrors)
			if emitErrors {
				m.emitClientError(err)
			}
			continue
		}
		if results[i] == need {
			votes++
		}
	}
	return votes
}

// rollback fires a best-effort, fire-and-forget unlockScript broadcast to
// release any partial acquisition from a failed round. Its outcome does not
// gate the next retry, but dispatching it (rather than skipping it) is what
// keeps a leaked partial reservation from blocking the next round until TTL.
// Its per-server errors are suppressed (logged, not emitted) since they
// carry no correctness weight here.
func (m *Manager) rollback(keys []string, value string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		m.broadcast(ctx, m.cfg.unlockScript, keys, []any{value}, false)
	}()
}

func (m *Manager) backoffSleep(ctx context.Context) error {
	d := m.cfg.retryDelay
	if m.cfg.retryJitter > 0 {
		jitter := time.Duration(rand.Int63n(int64(2*m.cfg.retryJitter+1))) - m.cfg.retryJitter
		d += jitter
		if d < 0 {
			d = 0
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func computeDrift(ttlMs int64, driftFactor float64) int64 {
	return int64(math.Floor(float64(ttlMs)*driftFactor)) + 2
}

func (m *Manager) traceStart(ctx context.Context, op, resource string) func(ok bool, attempts int) {
	if m.cfg.tracer == nil {
		return func(bool, int) {}
	}
	return m.cfg.tracer.StartOperation(ctx, op, resource)
}

func (m *Manager) recordAcquire(resource string, ok bool, attempts int) {
	if m.cfg.metrics != nil {
		m.cfg.metrics.ObserveAcquire(resource, ok, attempts)
	}
}

func (m *Manager) recordExtend(resource string, ok bool, attempts int) {
	if m.cfg.metrics != nil {
		m.cfg.metrics.ObserveExtend(resource, ok, attempts)
	}
}

func (m *Manager) recordRelease(resource string, ok bool) {
	if m.cfg.metrics != nil {
		m.cfg.metrics.ObserveRelease(resource, ok)
	}
}
