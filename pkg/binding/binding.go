// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package binding resolves declared parameter names to the values supplied at
// a call site.
//
// Go functions carry no runtime parameter names, so every guarded function
// declares its names explicitly. Arguments arrive as a mix of positional
// values and keyword values; binding follows the usual call rules:
//
//   - a parameter supplied by keyword takes that value
//   - every other parameter consumes the next positional slot, in declaration order
//
// Example:
//
//	params := []string{"a", "b", "c"}
//	args := binding.Call(1).With("c", -3).With("b", "x")
//	v, err := binding.Resolve(params, args, "c") // -3
package binding

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/jllopis/contracts/pkg/errors"
)

// Args holds the arguments of one call exactly as they were passed.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// Call builds Args from positional values.
func Call(positional ...any) Args {
	return Args{Positional: positional}
}

// Keywords builds Args from keyword values only.
func Keywords(kw map[string]any) Args {
	return Args{Keyword: kw}
}

// With returns a copy of the arguments with name supplied by keyword.
// The receiver is left untouched.
func (a Args) With(name string, value any) Args {
	kw := make(map[string]any, len(a.Keyword)+1)
	for k, v := range a.Keyword {
		kw[k] = v
	}
	kw[name] = value
	return Args{Positional: a.Positional, Keyword: kw}
}

// Len returns the total number of supplied arguments.
func (a Args) Len() int {
	return len(a.Positional) + len(a.Keyword)
}

// KeywordValue returns the value supplied by keyword for name, if any.
func (a Args) KeywordValue(name string) (any, bool) {
	if a.Keyword == nil {
		return nil, false
	}
	v, ok := a.Keyword[name]
	return v, ok
}

// String renders the arguments in call syntax, keywords sorted by name.
func (a Args) String() string {
	parts := make([]string, 0, a.Len())
	for _, v := range a.Positional {
		parts = append(parts, fmt.Sprintf("%#v", v))
	}
	names := make([]string, 0, len(a.Keyword))
	for name := range a.Keyword {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%#v", name, a.Keyword[name]))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Binding maps parameter names to their call-time values. It is rebuilt for
// every check that needs it and never stored.
type Binding map[string]any

// Lookup returns the value bound to name.
func (b Binding) Lookup(name string) (any, bool) {
	v, ok := b[name]
	return v, ok
}

// Bind resolves every declared parameter against args. Parameters supplied
// by keyword are taken from the keyword set and do not consume positional
// slots; the remaining parameters consume positional values in order.
// Parameters left without a value are absent from the result.
func Bind(params []string, args Args) Binding {
	out := make(Binding, len(params))
	slot := 0
	for _, name := range params {
		if v, ok := args.KeywordValue(name); ok {
			out[name] = v
			continue
		}
		if slot < len(args.Positional) {
			out[name] = args.Positional[slot]
		}
		slot++
	}
	return out
}

// Resolve returns the value bound to target. It fails with a BINDING_FAILED
// error when target is not declared or when its positional slot was not
// supplied; both mean the contract does not match the function signature.
func Resolve(params []string, args Args, target string) (any, error) {
	if !slices.Contains(params, target) {
		return nil, errors.Bindingf("parameter %q is not declared (declared: %s)", target, strings.Join(params, ", ")).
			WithContext("param", target)
	}
	v, ok := Bind(params, args).Lookup(target)
	if !ok {
		return nil, errors.Bindingf("no value supplied for parameter %q (%d positional arguments)", target, len(args.Positional)).
			WithContext("param", target)
	}
	return v, nil
}
