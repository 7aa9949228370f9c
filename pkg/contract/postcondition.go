// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package contract

import (
	"github.com/jllopis/contracts/pkg/errors"
)

// Postcondition is checked against the guarded function's return value.
type Postcondition struct {
	Condition
	check ValueCheck
}

// NewPostcondition builds a postcondition on the return value.
func NewPostcondition(check ValueCheck, description string) *Postcondition {
	return &Postcondition{
		Condition: Condition{kind: KindPostcondition, description: description},
		check:     check,
	}
}

// Evaluate runs the check against result.
func (p *Postcondition) Evaluate(result any) error {
	if p.check == nil {
		return errors.New(errors.CodeInvalidInput, "postcondition has no check", nil)
	}
	if p.check(result) {
		return nil
	}
	return errors.New(errors.CodePostconditionFailed, p.Message(), nil)
}
