// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed contract errors with rich context.
// Violations and binding failures share one error type so callers can
// classify them with errors.Is and read the failing condition's message.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// ErrorCode classifies contract errors for monitoring and reporting.
type ErrorCode string

const (
	// CodeInternal indicates an internal error in the contract layer.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates a malformed contract declaration (e.g. nil check).
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodePreconditionFailed indicates a precondition evaluated false.
	CodePreconditionFailed ErrorCode = "PRECONDITION_FAILED"

	// CodePostconditionFailed indicates a postcondition evaluated false.
	CodePostconditionFailed ErrorCode = "POSTCONDITION_FAILED"

	// CodeBindingFailed indicates a named parameter could not be resolved
	// from the call's arguments.
	CodeBindingFailed ErrorCode = "BINDING_FAILED"
)

var (
	// ErrContractViolation matches any precondition or postcondition failure.
	ErrContractViolation = stderrors.New("contract violation")

	// ErrBinding matches argument binding failures.
	ErrBinding = stderrors.New("argument binding failed")
)

// ContractError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type ContractError struct {
	Code       ErrorCode
	Message    string
	Err        error
	Context    map[string]interface{}
	Attributes map[string]string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *ContractError) Unwrap() error {
	return e.Err
}

// Is reports whether the error belongs to the class named by a sentinel.
func (e *ContractError) Is(target error) bool {
	switch target {
	case ErrContractViolation:
		return e.IsViolation()
	case ErrBinding:
		return e.Code == CodeBindingFailed
	}
	return false
}

// IsViolation reports whether the error is a failed precondition or postcondition.
func (e *ContractError) IsViolation() bool {
	return e.Code == CodePreconditionFailed || e.Code == CodePostconditionFailed
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *ContractError) MarshalJSON() ([]byte, error) {
	cause := ""
	if e.Err != nil {
		cause = e.Err.Error()
	}
	return json.Marshal(&struct {
		Message    string                 `json:"message"`
		Code       string                 `json:"code"`
		Err        string                 `json:"error,omitempty"`
		Context    map[string]interface{} `json:"context,omitempty"`
		Attributes map[string]string      `json:"attributes,omitempty"`
	}{
		Message:    e.Message,
		Code:       string(e.Code),
		Err:        cause,
		Context:    e.Context,
		Attributes: e.Attributes,
	})
}

// New creates a new ContractError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *ContractError {
	return &ContractError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		Attributes: make(map[string]string),
	}
}

// Bindingf creates a BINDING_FAILED error with a formatted message.
func Bindingf(format string, args ...any) *ContractError {
	return New(CodeBindingFailed, fmt.Sprintf(format, args...), nil)
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *ContractError) WithContext(key string, value interface{}) *ContractError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *ContractError) WithAttribute(key, value string) *ContractError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// AsContractError attempts to convert an error to a ContractError.
// Returns the error as ContractError if it is one, or wraps it otherwise.
func AsContractError(err error) *ContractError {
	if err == nil {
		return nil
	}
	var ce *ContractError
	if stderrors.As(err, &ce) {
		return ce
	}
	return New(CodeInternal, "wrapped error", err)
}

// MessageOf returns the human-readable message carried by err: the failing
// condition's description for contract errors, err.Error() otherwise.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var ce *ContractError
	if stderrors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}

// CodeOf returns the error code of err, or an empty code for foreign errors.
func CodeOf(err error) ErrorCode {
	var ce *ContractError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
