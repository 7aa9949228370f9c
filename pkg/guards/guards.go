// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package guards provides ready-made conditions and predicates for contracts.
//
// Type guards check that a parameter or the return value has a given Go type:
//
//	contract.Apply(fn,
//	    contract.Require(guards.ParameterHasType[int]("n", "n is an integer")),
//	    contract.Ensure(guards.ReturnHasType[int]("returns an integer")),
//	)
//
// Predicates build contract.ValueCheck values for common domain rules:
//
//	contract.PreArg("amount", guards.Positive[int64](), "amount must be positive")
//	contract.PreArg("ratio", guards.InRange(0.0, 1.0), "")
//
// A numeric predicate fails when the value is not of the requested type.
package guards

import (
	"fmt"
	"reflect"

	"golang.org/x/exp/constraints"

	"github.com/jllopis/contracts/pkg/contract"
)

// Number is any integer or floating-point type.
type Number interface {
	constraints.Integer | constraints.Float
}

// ParameterHasType builds a precondition that the named parameter holds a
// value of type T. An empty description defaults to
// "<name> must be of type <T>".
func ParameterHasType[T any](name, description string) *contract.Precondition {
	if description == "" {
		description = fmt.Sprintf("%s must be of type %s", name, TypeName[T]())
	}
	return contract.PreconditionOnArgument(name, IsType[T](), description)
}

// ReturnHasType builds a postcondition that the return value is of type T.
// An empty description defaults to "return value must be of type <T>".
func ReturnHasType[T any](description string) *contract.Postcondition {
	if description == "" {
		description = fmt.Sprintf("return value must be of type %s", TypeName[T]())
	}
	return contract.NewPostcondition(IsType[T](), description)
}

// TypeName returns the printable name of T.
func TypeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// IsType reports whether a value is of type T. For interface types the
// check is "implements T"; a nil value never matches.
func IsType[T any]() contract.ValueCheck {
	return func(v any) bool {
		_, ok := v.(T)
		return ok
	}
}

// NotNil reports whether a value is non-nil, including typed nils held in
// an interface.
func NotNil() contract.ValueCheck {
	return func(v any) bool {
		return !isNil(v)
	}
}

// NotEmpty reports whether a value is a non-empty string.
func NotEmpty() contract.ValueCheck {
	return func(v any) bool {
		s, ok := v.(string)
		return ok && s != ""
	}
}

// Positive reports whether a value of type T is greater than zero.
func Positive[T Number]() contract.ValueCheck {
	return func(v any) bool {
		n, ok := v.(T)
		return ok && n > 0
	}
}

// NonNegative reports whether a value of type T is zero or greater.
func NonNegative[T Number]() contract.ValueCheck {
	return func(v any) bool {
		n, ok := v.(T)
		return ok && n >= 0
	}
}

// Negative reports whether a value of type T is less than zero.
func Negative[T Number]() contract.ValueCheck {
	return func(v any) bool {
		n, ok := v.(T)
		return ok && n < 0
	}
}

// InRange reports whether a value of type T lies in [lo, hi].
func InRange[T constraints.Ordered](lo, hi T) contract.ValueCheck {
	return func(v any) bool {
		n, ok := v.(T)
		return ok && lo <= n && n <= hi
	}
}

// Not negates a check.
func Not(check contract.ValueCheck) contract.ValueCheck {
	return func(v any) bool {
		return !check(v)
	}
}

// All reports whether every check holds. Checks run in order and stop at the
// first failure.
func All(checks ...contract.ValueCheck) contract.ValueCheck {
	return func(v any) bool {
		for _, check := range checks {
			if !check(v) {
				return false
			}
		}
		return true
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
