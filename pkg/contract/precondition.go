// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package contract

import (
	"github.com/jllopis/contracts/pkg/binding"
	"github.com/jllopis/contracts/pkg/errors"
)

// Precondition is checked before the guarded function runs. It is scoped
// either to one named parameter or to the whole argument set.
type Precondition struct {
	Condition
	param   string
	named   bool
	onValue ValueCheck
	onCall  CallCheck
}

// PreconditionOnArgument builds a precondition whose check receives the value
// bound to the named parameter. A param the function does not declare, the
// empty name included, fails every invocation with a binding error.
func PreconditionOnArgument(param string, check ValueCheck, description string) *Precondition {
	return &Precondition{
		Condition: Condition{kind: KindPrecondition, description: description},
		param:     param,
		named:     true,
		onValue:   check,
	}
}

// PreconditionOnCall builds a precondition whose check receives the call's
// arguments exactly as passed.
func PreconditionOnCall(check CallCheck, description string) *Precondition {
	return &Precondition{
		Condition: Condition{kind: KindPrecondition, description: description},
		onCall:    check,
	}
}

// Param returns the parameter this precondition is scoped to. ok is false
// for whole-call preconditions.
func (p *Precondition) Param() (name string, ok bool) {
	return p.param, p.named
}

// Evaluate runs the check against a call. params are the guarded function's
// declared parameter names.
func (p *Precondition) Evaluate(params []string, args binding.Args) error {
	var ok bool
	if p.named {
		value, err := binding.Resolve(params, args, p.param)
		if err != nil {
			return err
		}
		if p.onValue == nil {
			return errors.New(errors.CodeInvalidInput, "precondition on "+p.param+" has no check", nil)
		}
		ok = p.onValue(value)
	} else {
		if p.onCall == nil {
			return errors.New(errors.CodeInvalidInput, "precondition has no check", nil)
		}
		ok = p.onCall(args)
	}
	if ok {
		return nil
	}
	violation := errors.New(errors.CodePreconditionFailed, p.Message(), nil)
	if p.named {
		violation.WithContext("param", p.param)
	}
	return violation
}
