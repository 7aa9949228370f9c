// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package contract

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jllopis/contracts/pkg/binding"
	"github.com/jllopis/contracts/pkg/errors"
)

// Contracted wraps a function with ordered preconditions and postconditions.
// Conditions are attached at declaration time and never removed; a
// Contracted is not safe for attaching while it is being invoked.
type Contracted struct {
	fn             Function
	preconditions  []*Precondition
	postconditions []*Postcondition
	enforcement    Enforcement
	observer       Observer
}

// Wrap creates a Contracted around fn with no conditions. Most callers use
// Apply or the Attach functions instead, which wrap on demand.
func Wrap(fn Function, opts ...Option) *Contracted {
	c := &Contracted{
		fn:          fn,
		enforcement: EnforceAll,
	}
	c.Configure(opts...)
	return c
}

// Configure applies options to the wrapper.
func (c *Contracted) Configure(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
}

// Name returns the wrapped function's name.
func (c *Contracted) Name() string { return c.fn.Name() }

// Params returns the wrapped function's declared parameter names.
func (c *Contracted) Params() []string { return c.fn.Params() }

// Function returns the wrapped function.
func (c *Contracted) Function() Function { return c.fn }

// AddPrecondition appends p; it is evaluated after the ones already attached.
func (c *Contracted) AddPrecondition(p *Precondition) {
	if p == nil {
		return
	}
	c.preconditions = append(c.preconditions, p)
}

// AddPostcondition appends p; it is evaluated after the ones already attached.
func (c *Contracted) AddPostcondition(p *Postcondition) {
	if p == nil {
		return
	}
	c.postconditions = append(c.postconditions, p)
}

// Preconditions returns the attached preconditions in evaluation order.
func (c *Contracted) Preconditions() []*Precondition {
	return append([]*Precondition(nil), c.preconditions...)
}

// Postconditions returns the attached postconditions in evaluation order.
func (c *Contracted) Postconditions() []*Postcondition {
	return append([]*Postcondition(nil), c.postconditions...)
}

// Call invokes the function with positional arguments only.
func (c *Contracted) Call(ctx context.Context, positional ...any) (any, error) {
	return c.Invoke(ctx, binding.Call(positional...))
}

// Invoke checks the preconditions, calls the function, checks the
// postconditions and returns the function's result. The first failing
// check stops the invocation. An error returned by the function itself is
// returned as is, together with whatever result came with it.
func (c *Contracted) Invoke(ctx context.Context, args binding.Args) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.observer == nil {
		return c.invoke(ctx, args, nil)
	}

	inv := &Invocation{
		ID:        uuid.NewString(),
		Function:  c.fn.Name(),
		Args:      args,
		StartedAt: time.Now(),
	}
	ctx = c.observer.InvocationStarted(withInvocation(ctx, *inv), *inv)
	result, err := c.invoke(ctx, args, inv)
	c.observer.InvocationFinished(ctx, *inv, result, err)
	return result, err
}

func (c *Contracted) invoke(ctx context.Context, args binding.Args, inv *Invocation) (any, error) {
	if c.enforcement.Preconditions {
		params := c.fn.params
		for i, p := range c.preconditions {
			if err := p.Evaluate(params, args); err != nil {
				c.checkFailed(ctx, inv, Violation{Kind: KindPrecondition, Index: i, Param: p.param, Err: err}, err)
				return nil, err
			}
		}
	}

	result, err := c.fn.Invoke(ctx, args)
	if err != nil {
		return result, err
	}

	if c.enforcement.Postconditions {
		for i, p := range c.postconditions {
			if err := p.Evaluate(result); err != nil {
				c.checkFailed(ctx, inv, Violation{Kind: KindPostcondition, Index: i, Err: err}, err)
				return nil, err
			}
		}
	}
	return result, nil
}

func (c *Contracted) checkFailed(ctx context.Context, inv *Invocation, v Violation, err error) {
	if ce := errors.AsContractError(err); ce.Code != errors.CodeInternal {
		ce.WithContext("function", c.fn.Name()).
			WithContext("index", v.Index).
			WithAttribute("contracts.kind", string(v.Kind))
	}
	if inv != nil {
		c.observer.CheckFailed(ctx, *inv, v)
	}
}

func (c *Contracted) contracted() bool { return true }
