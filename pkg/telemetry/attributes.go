// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides OpenTelemetry and slog integration for
// contracted functions.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/jllopis/contracts/pkg/contract"
	"github.com/jllopis/contracts/pkg/errors"
)

// Attribute keys for contract telemetry.
const (
	// Invocation attributes
	AttrFunction     = "contracts.function"
	AttrInvocationID = "contracts.invocation.id"
	AttrArgCount     = "contracts.invocation.arg_count"
	AttrOutcome      = "contracts.invocation.outcome" // "ok", "violation", "failure"
	AttrDurationMs   = "contracts.invocation.duration_ms"

	// Violation attributes
	AttrKind    = "contracts.kind"
	AttrIndex   = "contracts.condition.index"
	AttrParam   = "contracts.condition.param"
	AttrCode    = "contracts.error.code"
	AttrMessage = "contracts.error.message"

	// Resource attributes
	AttrEnforcePreconditions  = "contracts.enforce.preconditions"
	AttrEnforcePostconditions = "contracts.enforce.postconditions"
)

// Outcome values recorded under AttrOutcome.
const (
	OutcomeOK        = "ok"
	OutcomeViolation = "violation"
	OutcomeFailure   = "failure"
)

// InvocationAttributes returns attributes for an invocation span.
func InvocationAttributes(inv contract.Invocation) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrFunction, inv.Function),
		attribute.Int(AttrArgCount, inv.Args.Len()),
	}
	if inv.ID != "" {
		attrs = append(attrs, attribute.String(AttrInvocationID, inv.ID))
	}
	return attrs
}

// ViolationAttributes returns attributes describing a failed check.
func ViolationAttributes(v contract.Violation) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrKind, string(v.Kind)),
		attribute.Int(AttrIndex, v.Index),
	}
	if v.Param != "" {
		attrs = append(attrs, attribute.String(AttrParam, v.Param))
	}
	if code := errors.CodeOf(v.Err); code != "" {
		attrs = append(attrs, attribute.String(AttrCode, string(code)))
	}
	if v.Err != nil {
		attrs = append(attrs, attribute.String(AttrMessage, errors.MessageOf(v.Err)))
	}
	return attrs
}
