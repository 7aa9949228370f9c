// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package contract

import (
	"context"
	"time"

	"github.com/jllopis/contracts/pkg/binding"
)

// Invocation identifies one observed call of a Contracted.
type Invocation struct {
	ID        string
	Function  string
	Args      binding.Args
	StartedAt time.Time
}

// Violation describes a failed check. Err is the error returned to the
// caller: a contract violation, or a binding error raised while resolving a
// named parameter.
type Violation struct {
	Kind  Kind
	Index int
	Param string
	Err   error
}

// Observer is notified about invocations of a Contracted. The contract layer
// never logs by itself; telemetry and auditing plug in here.
type Observer interface {
	// InvocationStarted is called before any check runs. The returned
	// context is passed to the body and to the remaining callbacks.
	InvocationStarted(ctx context.Context, inv Invocation) context.Context

	// CheckFailed is called once for the check that stopped the invocation.
	CheckFailed(ctx context.Context, inv Invocation, v Violation)

	// InvocationFinished is called last with the outcome of the call.
	InvocationFinished(ctx context.Context, inv Invocation, result any, err error)
}

// Observers fans notifications out to several observers, in order.
func Observers(obs ...Observer) Observer {
	list := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) InvocationStarted(ctx context.Context, inv Invocation) context.Context {
	for _, o := range m {
		ctx = o.InvocationStarted(ctx, inv)
	}
	return ctx
}

func (m multiObserver) CheckFailed(ctx context.Context, inv Invocation, v Violation) {
	for _, o := range m {
		o.CheckFailed(ctx, inv, v)
	}
}

func (m multiObserver) InvocationFinished(ctx context.Context, inv Invocation, result any, err error) {
	for i := len(m) - 1; i >= 0; i-- {
		m[i].InvocationFinished(ctx, inv, result, err)
	}
}

type invocationKey struct{}

// InvocationFromContext returns the observed invocation ctx belongs to. Only
// observed invocations are recorded; nested calls see the innermost one.
func InvocationFromContext(ctx context.Context) (Invocation, bool) {
	if ctx == nil {
		return Invocation{}, false
	}
	inv, ok := ctx.Value(invocationKey{}).(Invocation)
	return inv, ok
}

func withInvocation(ctx context.Context, inv Invocation) context.Context {
	return context.WithValue(ctx, invocationKey{}, inv)
}
