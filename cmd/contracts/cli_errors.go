// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package main implements the contracts CLI.
package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jllopis/contracts/pkg/errors"
)

// CLIError wraps ContractError with CLI-specific formatting and hints.
type CLIError struct {
	*errors.ContractError
	Hint string
}

// NewCLIError creates a new CLI error.
func NewCLIError(ce *errors.ContractError, hint string) *CLIError {
	return &CLIError{
		ContractError: ce,
		Hint:          hint,
	}
}

// Error returns the formatted error message with hints.
func (e *CLIError) Error() string {
	if e.ContractError == nil {
		return "unknown error"
	}

	msg := e.ContractError.Error()
	if e.Hint != "" {
		msg += "\n  Hint: " + e.Hint
	}
	return msg
}

// PrintError writes the error to w, as a JSON object when asJSON is set.
func (e *CLIError) PrintError(w io.Writer, asJSON bool) {
	if asJSON {
		payload, _ := json.Marshal(map[string]any{
			"error": map[string]string{
				"code":    string(e.Code),
				"message": e.Message,
				"hint":    e.Hint,
			},
		})
		fmt.Fprintln(w, string(payload))
		return
	}

	fmt.Fprintf(w, "Error [%s]: %s\n", FormatErrorCode(e.Code), e.Message)
	if e.Hint != "" {
		fmt.Fprintf(w, "  Hint: %s\n", e.Hint)
	}
}

// NewInvalidArgumentError creates an invalid argument error with CLI hints.
func NewInvalidArgumentError(arg, reason string) *CLIError {
	ce := errors.New(errors.CodeInvalidInput, fmt.Sprintf("invalid argument: %s", reason), nil).
		WithContext("argument", arg).
		WithContext("reason", reason)
	return NewCLIError(ce, "run 'contracts help' for usage information")
}

// NewConfigError creates a configuration error with CLI hints.
func NewConfigError(err error, configPath string) *CLIError {
	ce := errors.New(errors.CodeInvalidInput, "configuration error: "+errors.MessageOf(err), err).
		WithContext("config_path", configPath)

	hint := "check your configuration file syntax"
	if configPath != "" {
		hint = fmt.Sprintf("check %s for syntax errors", configPath)
	}
	return NewCLIError(ce, hint)
}

// NewViolationError reports a contract violation raised by a command.
func NewViolationError(err error) *CLIError {
	ce := errors.AsContractError(err)
	switch ce.Code {
	case errors.CodePreconditionFailed:
		return NewCLIError(ce, "the arguments do not satisfy the function's preconditions")
	case errors.CodePostconditionFailed:
		return NewCLIError(ce, "the function returned a value that breaks its postconditions")
	case errors.CodeBindingFailed:
		return NewCLIError(ce, "a declared parameter received no value")
	default:
		return NewCLIError(ce, "")
	}
}

// PrintSimpleError prints a simple error message (for non-ContractError cases).
func PrintSimpleError(w io.Writer, err error, asJSON bool) {
	if asJSON {
		payload, _ := json.Marshal(map[string]any{
			"error": map[string]string{"code": "UNKNOWN", "message": err.Error()},
		})
		fmt.Fprintln(w, string(payload))
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err.Error())
}

// FormatErrorCode returns a user-friendly name for error codes.
func FormatErrorCode(code errors.ErrorCode) string {
	switch code {
	case errors.CodeInternal:
		return "Internal Error"
	case errors.CodeInvalidInput:
		return "Invalid Input"
	case errors.CodePreconditionFailed:
		return "Precondition Failed"
	case errors.CodePostconditionFailed:
		return "Postcondition Failed"
	case errors.CodeBindingFailed:
		return "Binding Failed"
	default:
		return string(code)
	}
}
