// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package contract attaches preconditions and postconditions to functions and
// enforces them on every invocation.
//
// A raw function is described by a Function (name, declared parameter names
// and body). Attaching a condition wraps it into a Contracted exactly once;
// further attachments extend the same wrapper instead of nesting a new one.
//
// Example usage:
//
//	fib := contract.Apply(contract.NewFunction("fib", fibBody, "n"),
//	    contract.Require(guards.ParameterHasType[int]("n", "n is an integer")),
//	    contract.PreArg("n", guards.NonNegative[int](), "n is at least zero"),
//	    contract.Ensure(guards.ReturnHasType[int]("returns an integer")),
//	)
//
//	result, err := fib.Call(ctx, 4)
//	if errors.Is(err, errors.ErrContractViolation) {
//	    // errors.MessageOf(err) == the failing condition's description
//	}
//
// Invocation evaluates preconditions in attachment order, calls the body,
// then evaluates postconditions in attachment order. The first failing check
// stops the invocation. Errors returned by the body pass through untouched.
package contract

import (
	"github.com/jllopis/contracts/pkg/binding"
)

// Kind distinguishes preconditions from postconditions.
type Kind string

const (
	KindPrecondition  Kind = "precondition"
	KindPostcondition Kind = "postcondition"
)

// Default messages used when a condition has no description.
const (
	DefaultPreconditionMessage  = "A precondition failed"
	DefaultPostconditionMessage = "A postcondition failed"
)

// ValueCheck is a predicate over a single value: a named parameter or the
// return value.
type ValueCheck func(value any) bool

// CallCheck is a predicate over the whole argument set of a call. Useful for
// constraints between arguments.
type CallCheck func(args binding.Args) bool

// Condition is the part shared by preconditions and postconditions: its kind
// and an optional human-readable description. It is immutable.
type Condition struct {
	kind        Kind
	description string
}

// Kind returns whether this is a precondition or a postcondition.
func (c Condition) Kind() Kind {
	return c.kind
}

// Description returns the description as declared, possibly empty.
func (c Condition) Description() string {
	return c.description
}

// Message returns the text reported when the condition fails. An empty
// description counts as absent.
func (c Condition) Message() string {
	if c.description != "" {
		return c.description
	}
	if c.kind == KindPostcondition {
		return DefaultPostconditionMessage
	}
	return DefaultPreconditionMessage
}
