// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/contracts/pkg/contract"
	"github.com/jllopis/contracts/pkg/errors"
)

// TracerName is the instrumentation scope used for contract spans.
const TracerName = "github.com/jllopis/contracts"

// ContractObserver reports invocations of contracted functions as spans,
// metrics and log records. It is safe for concurrent use.
type ContractObserver struct {
	tracer  trace.Tracer
	metrics *ContractMetrics
	logger  *slog.Logger
}

// ObserverOption configures a ContractObserver.
type ObserverOption func(*ContractObserver)

// WithTracer sets the tracer used for invocation spans.
func WithTracer(tracer trace.Tracer) ObserverOption {
	return func(o *ContractObserver) {
		o.tracer = tracer
	}
}

// WithMetrics sets the metric instruments. Without it no metrics are recorded.
func WithMetrics(metrics *ContractMetrics) ObserverOption {
	return func(o *ContractObserver) {
		o.metrics = metrics
	}
}

// WithLogger sets the logger; defaults to slog.Default(). Records name the
// function and invocation only when the logger's handler comes from
// ConfigureSlog.
func WithLogger(logger *slog.Logger) ObserverOption {
	return func(o *ContractObserver) {
		o.logger = logger
	}
}

// NewContractObserver builds an observer using the global tracer provider
// unless configured otherwise.
func NewContractObserver(opts ...ObserverOption) *ContractObserver {
	o := &ContractObserver{}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(TracerName)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

type invocationStateKey struct{}

type invocationState struct {
	violated bool
}

// InvocationStarted opens the invocation span.
func (o *ContractObserver) InvocationStarted(ctx context.Context, inv contract.Invocation) context.Context {
	ctx, _ = o.tracer.Start(ctx, "contract.invoke "+inv.Function,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(InvocationAttributes(inv)...),
	)
	o.logger.DebugContext(ctx, "contract.invocation.started", slog.String("args", inv.Args.String()))
	return context.WithValue(ctx, invocationStateKey{}, &invocationState{})
}

// CheckFailed records the failed check on the span, the violation counter
// and the log.
func (o *ContractObserver) CheckFailed(ctx context.Context, inv contract.Invocation, v contract.Violation) {
	if state, ok := ctx.Value(invocationStateKey{}).(*invocationState); ok {
		state.violated = true
	}

	span := trace.SpanFromContext(ctx)
	span.AddEvent("contract.violation", trace.WithAttributes(ViolationAttributes(v)...))
	o.metrics.RecordViolation(ctx, inv.Function, v)

	attrs := []any{
		slog.String("kind", string(v.Kind)),
		slog.Int("index", v.Index),
		slog.String("message", errors.MessageOf(v.Err)),
	}
	if v.Param != "" {
		attrs = append(attrs, slog.String("param", v.Param))
	}
	if code := errors.CodeOf(v.Err); code != "" {
		attrs = append(attrs, slog.String("code", string(code)))
	}
	o.logger.WarnContext(ctx, "contract.violation", attrs...)
}

// InvocationFinished closes the span and records the invocation outcome.
func (o *ContractObserver) InvocationFinished(ctx context.Context, inv contract.Invocation, _ any, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailure
		if state, ok := ctx.Value(invocationStateKey{}).(*invocationState); ok && state.violated {
			outcome = OutcomeViolation
		}
	}
	durationMs := float64(time.Since(inv.StartedAt).Microseconds()) / 1000.0

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.Float64(AttrDurationMs, durationMs),
	)
	switch outcome {
	case OutcomeViolation:
		span.SetStatus(codes.Error, errors.MessageOf(err))
	case OutcomeFailure:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.metrics.RecordFailure(ctx, inv.Function, err)
		o.logger.InfoContext(ctx, "contract.invocation.failed", slog.String("error", err.Error()))
	default:
		span.SetStatus(codes.Ok, "")
	}
	o.metrics.RecordInvocation(ctx, inv.Function, outcome, durationMs)
	o.logger.DebugContext(ctx, "contract.invocation.finished",
		slog.String("outcome", outcome),
		slog.Float64("duration_ms", durationMs),
	)
	span.End()
}
