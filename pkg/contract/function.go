// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package contract

import (
	"context"

	"github.com/jllopis/contracts/pkg/binding"
)

// Func is the shape every guarded function is adapted to.
type Func func(ctx context.Context, args binding.Args) (any, error)

// Invoker is anything that can be called with a set of arguments.
type Invoker interface {
	Invoke(ctx context.Context, args binding.Args) (any, error)
}

// Target is what conditions attach to: a raw Function or an existing
// Contracted. The unexported method keeps other implementations out.
type Target interface {
	Invoker
	Name() string
	Params() []string
	contracted() bool
}

// Function is a raw, unguarded function together with its declared
// parameter names.
type Function struct {
	name   string
	params []string
	fn     Func
}

// NewFunction describes fn. params lists the parameter names in declaration
// order; named preconditions resolve against them.
func NewFunction(name string, fn Func, params ...string) Function {
	return Function{
		name:   name,
		params: append([]string(nil), params...),
		fn:     fn,
	}
}

// Name returns the function name used in errors and telemetry.
func (f Function) Name() string { return f.name }

// Params returns a copy of the declared parameter names.
func (f Function) Params() []string { return append([]string(nil), f.params...) }

// Invoke calls the function directly, without any checks.
func (f Function) Invoke(ctx context.Context, args binding.Args) (any, error) {
	return f.fn(ctx, args)
}

func (f Function) contracted() bool { return false }
