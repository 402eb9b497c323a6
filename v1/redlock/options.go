package redlock

import (
	"context"
	"io"
	"log/slog"
	"time"
)

const (
	defaultDriftFactor = 0.01
	defaultRetryCount  = 3
	defaultRetryDelay  = 200 * time.Millisecond
	defaultRetryJitter = 100 * time.Millisecond
)

// metricsSink is the subset of redlockmetrics.Recorder the manager needs,
// kept local so the core package never imports prometheus.
type metricsSink interface {
	ObserveAcquire(resource string, ok bool, attempts int)
	ObserveExtend(resource string, ok bool, attempts int)
	ObserveRelease(resource string, ok bool)
}

// tracerSink is the subset of redlocktrace.Tracer the manager needs, kept
// local so the core package never imports otel directly.
type tracerSink interface {
	StartOperation(ctx context.Context, op, resource string) func(ok bool, attempts int)
}

// Config holds the manager's static, effectively-immutable configuration.
type Config struct {
	driftFactor  float64
	retryCount   int
	retryDelay   time.Duration
	retryJitter  time.Duration
	lockScript   Script
	unlockScript Script
	extendScript Script
	logger       *slog.Logger
	onError      func(error)
	metrics      metricsSink
	tracer       tracerSink
}

func defaultConfig() Config {
	return Config{
		driftFactor:  defaultDriftFactor,
		retryCount:   defaultRetryCount,
		retryDelay:   defaultRetryDelay,
		retryJitter:  defaultRetryJitter,
		lockScript:   DefaultLockScript,
		unlockScript: DefaultUnlockScript,
		extendScript: DefaultExtendScript,
		logger:       slog.Default(),
	}
}

// Option configures a Manager at construction time.
type Option func(*Config)

// WithDriftFactor overrides the fraction of TTL added to the clock-drift
// floor when computing validity.
func WithDriftFactor(f float64) Option {
	return func(c *Config) { c.driftFactor = f }
}

// WithRetryCount overrides the number of retries attempted by Acquire and
// Extend beyond the first round (total rounds = retryCount+1).
func WithRetryCount(n int) Option {
	return func(c *Config) { c.retryCount = n }
}

// WithRetryDelay overrides the base backoff between rounds.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Config) { c.retryDelay = d }
}

// WithRetryJitter overrides the symmetric uniform jitter added to the
// backoff between rounds.
func WithRetryJitter(d time.Duration) Option {
	return func(c *Config) { c.retryJitter = d }
}

// WithLockScript overrides the acquire script body.
func WithLockScript(s Script) Option {
	return func(c *Config) { c.lockScript = s }
}

// WithLockScriptTransform applies t to the default acquire script exactly
// once, at construction.
func WithLockScriptTransform(t ScriptTransform) Option {
	return func(c *Config) { c.lockScript = t(DefaultLockScript) }
}

// WithUnlockScript overrides the release script body.
func WithUnlockScript(s Script) Option {
	return func(c *Config) { c.unlockScript = s }
}

// WithUnlockScriptTransform applies t to the default release script exactly
// once, at construction.
func WithUnlockScriptTransform(t ScriptTransform) Option {
	return func(c *Config) { c.unlockScript = t(DefaultUnlockScript) }
}

// WithExtendScript overrides the extend script body.
func WithExtendScript(s Script) Option {
	return func(c *Config) { c.extendScript = s }
}

// WithExtendScriptTransform applies t to the default extend script exactly
// once, at construction.
func WithExtendScriptTransform(t ScriptTransform) Option {
	return func(c *Config) { c.extendScript = t(DefaultExtendScript) }
}

// WithLogger overrides the logger used for absorbed, per-round failures.
// A nil logger disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l == nil {
			l = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		c.logger = l
	}
}

// WithClientErrorHandler registers a synchronous callback invoked once per
// per-server failure, in addition to the manager's ClientErrors channel.
func WithClientErrorHandler(f func(error)) Option {
	return func(c *Config) { c.onError = f }
}

// WithMetrics wires a metrics recorder (see redlockmetrics.Recorder) into
// the manager so every operation's outcome is observed.
func WithMetrics(m metricsSink) Option {
	return func(c *Config) { c.metrics = m }
}

// WithTracer wires a span helper (see redlocktrace.Tracer) into the manager
// so every operation opens a span.
func WithTracer(t tracerSink) Option {
	return func(c *Config) { c.tracer = t }
}
