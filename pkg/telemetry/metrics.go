// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jllopis/contracts/pkg/contract"
	"github.com/jllopis/contracts/pkg/errors"
)

// MeterName is the instrumentation scope used for contract metrics.
const MeterName = "github.com/jllopis/contracts"

// ContractMetrics counts invocations, violations and underlying failures of
// contracted functions. A nil *ContractMetrics records nothing.
type ContractMetrics struct {
	// invocationCounter tracks observed invocations by function and outcome
	invocationCounter metric.Int64Counter

	// violationCounter tracks failed checks by function, kind and code
	violationCounter metric.Int64Counter

	// failureCounter tracks errors returned by function bodies
	failureCounter metric.Int64Counter

	duration metric.Float64Histogram
}

// NewContractMetrics creates the instruments on meter, or on the global
// meter provider when meter is nil.
func NewContractMetrics(meter metric.Meter) (*ContractMetrics, error) {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}

	invocationCounter, err := meter.Int64Counter(
		"contracts.invocations.total",
		metric.WithDescription("Observed invocations of contracted functions by outcome"),
	)
	if err != nil {
		return nil, err
	}

	violationCounter, err := meter.Int64Counter(
		"contracts.violations.total",
		metric.WithDescription("Failed preconditions and postconditions by function and kind"),
	)
	if err != nil {
		return nil, err
	}

	failureCounter, err := meter.Int64Counter(
		"contracts.failures.total",
		metric.WithDescription("Errors returned by contracted function bodies"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"contracts.invocation.duration_ms",
		metric.WithDescription("Duration of contracted invocations including checks"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &ContractMetrics{
		invocationCounter: invocationCounter,
		violationCounter:  violationCounter,
		failureCounter:    failureCounter,
		duration:          duration,
	}, nil
}

// RecordInvocation counts one finished invocation and its duration.
func (m *ContractMetrics) RecordInvocation(ctx context.Context, function, outcome string, durationMs float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrFunction, function),
		attribute.String(AttrOutcome, outcome),
	)
	m.invocationCounter.Add(ctx, 1, attrs)
	m.duration.Record(ctx, durationMs, attrs)
}

// RecordViolation counts one failed check.
func (m *ContractMetrics) RecordViolation(ctx context.Context, function string, v contract.Violation) {
	if m == nil {
		return
	}
	code := errors.CodeOf(v.Err)
	if code == "" {
		code = errors.CodeInternal
	}
	m.violationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(AttrFunction, function),
			attribute.String(AttrKind, string(v.Kind)),
			attribute.String(AttrCode, string(code)),
		),
	)
}

// RecordFailure counts an error returned by a function body.
func (m *ContractMetrics) RecordFailure(ctx context.Context, function string, err error) {
	if m == nil || err == nil {
		return
	}
	code := "UNKNOWN"
	if c := errors.CodeOf(err); c != "" {
		code = string(c)
	}
	m.failureCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(AttrFunction, function),
			attribute.String(AttrCode, code),
		),
	)
}
