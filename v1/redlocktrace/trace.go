// Package redlocktrace wires a redlock.Manager's operations into
// OpenTelemetry through the global tracer provider (otel.Tracer). Neither
// this package nor the core redlock package imports a concrete SDK or
// exporter; callers decide how spans are collected by installing a provider
// with otel.SetTracerProvider.
package redlocktrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/mirkobrombin/redlock/v1/redlock")

// Tracer opens one span per redlock operation. Wire it into a Manager via
// redlock.WithTracer.
type Tracer struct{}

// New returns a Tracer. Each call to StartOperation takes its own context,
// so spans parent to the caller's actual request context rather than one
// fixed at construction.
func New() *Tracer {
	return &Tracer{}
}

// StartOperation starts a span named "redlock.<op>" as a child of ctx, with
// the resource as an attribute, and returns a function that ends the span,
// recording the round count reached and failure status when ok is false.
func (t *Tracer) StartOperation(ctx context.Context, op, resource string) func(ok bool, attempts int) {
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := tracer.Start(ctx, "redlock."+op, trace.WithAttributes(
		attribute.String("redlock.resource", resource),
	))
	return func(ok bool, attempts int) {
		span.SetAttributes(attribute.Int("redlock.attempts", attempts))
		if !ok {
			span.SetStatus(codes.Error, "quorum not reached")
		}
		span.End()
	}
}
