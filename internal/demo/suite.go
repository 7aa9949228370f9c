// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package demo

import (
	"context"
	"fmt"

	"github.com/jllopis/contracts/pkg/binding"
	"github.com/jllopis/contracts/pkg/contract"
	"github.com/jllopis/contracts/pkg/errors"
)

// Case is one demo invocation and its expected outcome.
type Case struct {
	Name     string
	Function string
	Args     binding.Args
	// WantError expects the call to fail. WantMessage, when set, must equal
	// the failure message.
	WantError   bool
	WantMessage string
	// WantValue is compared when the call is expected to succeed and it is
	// not nil.
	WantValue any
}

// Result is the outcome of running a Case.
type Result struct {
	Case   Case
	Value  any
	Err    error
	Passed bool
	Detail string
}

// Suite bundles the demo functions built with the same options.
type Suite struct {
	Fib           *contract.Contracted
	ReturnsString *ReturnsString
	Foobar        *contract.Contracted
}

// NewSuite builds every demo function with opts.
func NewSuite(opts ...contract.Option) *Suite {
	return &Suite{
		Fib:           NewFib(opts...),
		ReturnsString: NewReturnsString(opts...),
		Foobar:        NewFoobar(opts...),
	}
}

// Lookup returns the demo function called name.
func (s *Suite) Lookup(name string) (*contract.Contracted, bool) {
	switch name {
	case "fib":
		return s.Fib, true
	case "returns_string":
		return s.ReturnsString.Contracted, true
	case "foobar":
		return s.Foobar, true
	}
	return nil, false
}

func kw(pairs ...any) map[string]any {
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out[pairs[i].(string)] = pairs[i+1]
	}
	return out
}

// Cases lists the demo scenarios.
func Cases() []Case {
	return []Case{
		{Name: "fib rejects a string", Function: "fib", Args: binding.Call("foobar"),
			WantError: true, WantMessage: "n is an integer"},
		{Name: "fib rejects a negative number", Function: "fib", Args: binding.Call(-1),
			WantError: true, WantMessage: "n is at least zero"},
		{Name: "fib(4)", Function: "fib", Args: binding.Call(4), WantValue: 5},
		{Name: "fib by keyword", Function: "fib", Args: binding.Keywords(kw("n", 10)), WantValue: 89},
		{Name: "returns_string breaks its return type", Function: "returns_string", Args: binding.Call(10),
			WantError: true, WantMessage: "returns an integer"},
		{Name: "foobar with c=3", Function: "foobar", Args: binding.Call(1, "x", 3),
			WantError: true, WantMessage: "c is less than zero"},
		{Name: "foobar with c=3 by keyword", Function: "foobar", Args: binding.Args{
			Positional: []any{1}, Keyword: kw("b", "x", "c", 3)},
			WantError: true, WantMessage: "c is less than zero"},
		{Name: "foobar with a wrongly typed c", Function: "foobar", Args: binding.Call(1, "", ""),
			WantError: true, WantMessage: "c is an integer"},
		{Name: "foobar with a wrongly typed a", Function: "foobar", Args: binding.Call("", "", 3),
			WantError: true, WantMessage: "a is an integer"},
		{Name: "foobar with c=-3", Function: "foobar", Args: binding.Call(1, "x", -3), WantValue: -1},
		{Name: "foobar with c=-3 by keyword", Function: "foobar", Args: binding.Keywords(kw("c", -3, "a", 1, "b", "")),
			WantValue: -2},
	}
}

// Run invokes c against the suite.
func (s *Suite) Run(ctx context.Context, c Case) Result {
	res := Result{Case: c}
	fn, ok := s.Lookup(c.Function)
	if !ok {
		res.Err = errors.New(errors.CodeInvalidInput, "unknown demo function", nil).WithContext("function", c.Function)
		res.Detail = res.Err.Error()
		return res
	}

	res.Value, res.Err = fn.Invoke(ctx, c.Args)
	switch {
	case c.WantError && res.Err == nil:
		res.Detail = fmt.Sprintf("expected an error, got %v", res.Value)
	case c.WantError && c.WantMessage != "" && errors.MessageOf(res.Err) != c.WantMessage:
		res.Detail = fmt.Sprintf("got %q, expected %q", errors.MessageOf(res.Err), c.WantMessage)
	case !c.WantError && res.Err != nil:
		res.Detail = fmt.Sprintf("unexpected error: %s", errors.MessageOf(res.Err))
	case !c.WantError && c.WantValue != nil && res.Value != c.WantValue:
		res.Detail = fmt.Sprintf("got %v, expected %v", res.Value, c.WantValue)
	default:
		res.Passed = true
		if res.Err != nil {
			res.Detail = errors.MessageOf(res.Err)
		} else {
			res.Detail = fmt.Sprintf("%v", res.Value)
		}
	}
	return res
}

// RunAll runs every case in order.
func (s *Suite) RunAll(ctx context.Context, cases []Case) []Result {
	out := make([]Result, 0, len(cases))
	for _, c := range cases {
		out = append(out, s.Run(ctx, c))
	}
	return out
}
