// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"strings"

	"github.com/jllopis/contracts/pkg/errors"
)

// TestingT is the subset of *testing.T used by the helpers.
type TestingT interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// Assertions provides assertion helpers for testing.
type Assertions struct {
	t      TestingT
	failed bool
}

// NewAssertions creates a new assertions helper.
func NewAssertions(t TestingT) *Assertions {
	return &Assertions{t: t}
}

// Failed returns true if any assertion has failed.
func (a *Assertions) Failed() bool {
	return a.failed
}

func (a *Assertions) fail(format string, args ...any) {
	a.t.Helper()
	a.t.Errorf(format, args...)
	a.failed = true
}

// ExpectFailure calls thunk and asserts that it returned an error. When
// expectedMessage is not empty, the error's message must equal it exactly;
// for contract errors the message is the failing condition's description.
// It returns the error for further inspection.
func (a *Assertions) ExpectFailure(thunk func() error, expectedMessage string) error {
	a.t.Helper()
	err := thunk()
	if err == nil {
		if expectedMessage != "" {
			a.fail("expected error to be returned: %q", expectedMessage)
		} else {
			a.fail("expected an error to be returned")
		}
		return nil
	}
	if expectedMessage != "" {
		if got := errors.MessageOf(err); got != expectedMessage {
			a.fail("invalid error: got %q, expected %q", got, expectedMessage)
		}
	}
	return err
}

// ExpectNoFailure calls thunk and records any returned error. It never stops
// the test.
func (a *Assertions) ExpectNoFailure(thunk func() error) {
	a.t.Helper()
	if err := thunk(); err != nil {
		a.fail("expected no error to be returned but got: %q", errors.MessageOf(err))
	}
}

// AssertEqual asserts that two values are equal.
func (a *Assertions) AssertEqual(expected, actual any, msg string) {
	a.t.Helper()
	if expected != actual {
		a.fail("%s: expected %v, got %v", msg, expected, actual)
	}
}

// AssertTrue asserts that the value is true.
func (a *Assertions) AssertTrue(value bool, msg string) {
	a.t.Helper()
	if !value {
		a.fail("%s: expected true", msg)
	}
}

// AssertFalse asserts that the value is false.
func (a *Assertions) AssertFalse(value bool, msg string) {
	a.t.Helper()
	if value {
		a.fail("%s: expected false", msg)
	}
}

// AssertError asserts that the error is not nil.
func (a *Assertions) AssertError(err error, msg string) {
	a.t.Helper()
	if err == nil {
		a.fail("%s: expected error, got nil", msg)
	}
}

// AssertNoError asserts that the error is nil.
func (a *Assertions) AssertNoError(err error, msg string) {
	a.t.Helper()
	if err != nil {
		a.fail("%s: unexpected error: %v", msg, err)
	}
}

// AssertErrorContains asserts that the error message contains the substring.
func (a *Assertions) AssertErrorContains(err error, substr, msg string) {
	a.t.Helper()
	if err == nil {
		a.fail("%s: expected error containing %q, got nil", msg, substr)
		return
	}
	if !strings.Contains(err.Error(), substr) {
		a.fail("%s: error %q does not contain %q", msg, err.Error(), substr)
	}
}

// AssertCode asserts that err is a contract error with the given code.
func (a *Assertions) AssertCode(err error, code errors.ErrorCode, msg string) {
	a.t.Helper()
	if got := errors.CodeOf(err); got != code {
		a.fail("%s: expected code %s, got %s", msg, code, formatCode(got))
	}
}

// Quick assertion functions for common patterns

// RequireNoError fails the test immediately if err is not nil.
func RequireNoError(t TestingT, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// RequireEqual fails the test immediately if values are not equal.
func RequireEqual(t TestingT, expected, actual any, msg string) {
	t.Helper()
	if expected != actual {
		t.Fatalf("%s: expected %v, got %v", msg, expected, actual)
	}
}

func formatCode(code errors.ErrorCode) string {
	if code == "" {
		return "(none)"
	}
	return string(code)
}
