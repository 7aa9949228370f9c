// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package demo holds the example contracted functions exercised by the CLI
// and the scenario tests.
package demo

import (
	"context"
	"sync/atomic"

	"github.com/jllopis/contracts/pkg/binding"
	"github.com/jllopis/contracts/pkg/contract"
	"github.com/jllopis/contracts/pkg/errors"
	"github.com/jllopis/contracts/pkg/guards"
)

// NewFib returns the contracted Fibonacci function: fib(n) is 1 for n <= 1
// and fib(n-1) + fib(n-2) otherwise. Recursive calls go through the
// contracted wrapper, so every step is checked.
func NewFib(opts ...contract.Option) *contract.Contracted {
	var fib *contract.Contracted
	params := []string{"n"}
	body := func(ctx context.Context, args binding.Args) (any, error) {
		v, err := binding.Resolve(params, args, "n")
		if err != nil {
			return nil, err
		}
		n, ok := v.(int)
		if !ok {
			return nil, errors.New(errors.CodeInvalidInput, "fib needs an integer", nil).WithContext("n", v)
		}
		if n <= 1 {
			return 1, nil
		}
		a, err := fib.Call(ctx, n-1)
		if err != nil {
			return nil, err
		}
		b, err := fib.Call(ctx, n-2)
		if err != nil {
			return nil, err
		}
		return a.(int) + b.(int), nil
	}

	fib = contract.Apply(contract.NewFunction("fib", body, params...),
		contract.Require(guards.ParameterHasType[int]("n", "n is an integer")),
		contract.PreArg("n", guards.NonNegative[int](), "n is at least zero"),
		contract.Ensure(guards.ReturnHasType[int]("returns an integer")),
		contract.Post(guards.NonNegative[int](), "return value is positive"),
		contract.Configure(opts...),
	)
	return fib
}

// ReturnsString declares an integer result but returns a string. Calls
// counts the bodies that ran to completion.
type ReturnsString struct {
	*contract.Contracted
	calls atomic.Int64
}

// NewReturnsString returns the contracted function.
func NewReturnsString(opts ...contract.Option) *ReturnsString {
	rs := &ReturnsString{}
	rs.Contracted = contract.Apply(
		contract.NewFunction("returns_string", func(context.Context, binding.Args) (any, error) {
			rs.calls.Add(1)
			return "foobar", nil
		}, "n"),
		contract.Ensure(guards.ReturnHasType[int]("returns an integer")),
		contract.Configure(opts...),
	)
	return rs
}

// Calls returns how many times the body ran.
func (rs *ReturnsString) Calls() int64 {
	return rs.calls.Load()
}

// NewFoobar returns foobar(a int, b string, c int), constrained to c < 0.
// The result is a + len(b) + c.
func NewFoobar(opts ...contract.Option) *contract.Contracted {
	params := []string{"a", "b", "c"}
	body := func(_ context.Context, args binding.Args) (any, error) {
		bound := binding.Bind(params, args)
		a, okA := bound["a"].(int)
		b, okB := bound["b"].(string)
		c, okC := bound["c"].(int)
		if !okA || !okB || !okC {
			return nil, errors.New(errors.CodeInvalidInput, "foobar needs (int, string, int)", nil).
				WithContext("args", args.String())
		}
		return a + len(b) + c, nil
	}
	return contract.Apply(contract.NewFunction("foobar", body, params...),
		contract.Require(guards.ParameterHasType[int]("a", "a is an integer")),
		contract.Require(guards.ParameterHasType[string]("b", "b is a string")),
		contract.Require(guards.ParameterHasType[int]("c", "c is an integer")),
		contract.PreArg("c", guards.Negative[int](), "c is less than zero"),
		contract.Configure(opts...),
	)
}
