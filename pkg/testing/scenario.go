// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package testing provides utilities for testing contracted functions.
//
// This package includes:
//   - ExpectFailure / ExpectNoFailure helpers reading contract messages
//   - Scenario definitions for declarative invocation testing
//   - String matchers for error messages
//
// Example usage:
//
//	scenario := testing.NewScenario("fib rejects strings").
//	    WithArgs(binding.Call("foobar")).
//	    ExpectMessage(testing.Equals("n is an integer"))
//
//	result := scenario.Run(t, fib)
//	result.Assert(t, scenario)
package testing

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/jllopis/contracts/pkg/binding"
	"github.com/jllopis/contracts/pkg/contract"
	"github.com/jllopis/contracts/pkg/errors"
)

// Scenario defines one invocation of a contracted function and what it
// should produce.
type Scenario struct {
	name          string
	description   string
	args          binding.Args
	context       context.Context
	expectations  []Expectation
	setupFuncs    []func() error
	teardownFuncs []func() error
}

// Expectation defines a condition to verify after running a scenario.
type Expectation interface {
	// Check verifies the expectation against the result.
	Check(result *ScenarioResult) error
	// Description returns a human-readable description of the expectation.
	Description() string
}

// ScenarioResult contains the outcome of running a scenario.
type ScenarioResult struct {
	Value    any
	Error    error
	Duration time.Duration
}

// NewScenario creates a new test scenario with the given name.
func NewScenario(name string) *Scenario {
	return &Scenario{
		name:         name,
		context:      context.Background(),
		expectations: make([]Expectation, 0),
	}
}

// Name returns the scenario name.
func (s *Scenario) Name() string {
	return s.name
}

// WithDescription adds a description to the scenario.
func (s *Scenario) WithDescription(desc string) *Scenario {
	s.description = desc
	return s
}

// WithArgs sets the call arguments.
func (s *Scenario) WithArgs(args binding.Args) *Scenario {
	s.args = args
	return s
}

// WithContext sets the context for the scenario.
func (s *Scenario) WithContext(ctx context.Context) *Scenario {
	s.context = ctx
	return s
}

// WithSetup adds a setup function to run before the scenario.
func (s *Scenario) WithSetup(fn func() error) *Scenario {
	s.setupFuncs = append(s.setupFuncs, fn)
	return s
}

// WithTeardown adds a teardown function to run after the scenario.
func (s *Scenario) WithTeardown(fn func() error) *Scenario {
	s.teardownFuncs = append(s.teardownFuncs, fn)
	return s
}

// Expect adds an expectation to the scenario.
func (s *Scenario) Expect(exp Expectation) *Scenario {
	s.expectations = append(s.expectations, exp)
	return s
}

// ExpectNoError expects the invocation to succeed.
func (s *Scenario) ExpectNoError() *Scenario {
	return s.Expect(&noErrorExpectation{})
}

// ExpectValue expects the invocation to return value.
func (s *Scenario) ExpectValue(value any) *Scenario {
	return s.Expect(&valueExpectation{expected: value})
}

// ExpectMessage expects an error whose contract message matches.
func (s *Scenario) ExpectMessage(matcher StringMatcher) *Scenario {
	return s.Expect(&messageExpectation{matcher: matcher})
}

// ExpectCode expects a contract error with the given code.
func (s *Scenario) ExpectCode(code errors.ErrorCode) *Scenario {
	return s.Expect(&codeExpectation{code: code})
}

// ExpectErrorIs expects an error matching target with errors.Is.
func (s *Scenario) ExpectErrorIs(target error) *Scenario {
	return s.Expect(&errorIsExpectation{target: target})
}

// Run invokes the scenario against fn.
func (s *Scenario) Run(t TestingT, fn contract.Invoker) *ScenarioResult {
	t.Helper()

	for _, setup := range s.setupFuncs {
		if err := setup(); err != nil {
			t.Fatalf("scenario %q setup failed: %v", s.name, err)
		}
	}

	defer func() {
		for _, teardown := range s.teardownFuncs {
			if err := teardown(); err != nil {
				t.Errorf("scenario %q teardown failed: %v", s.name, err)
			}
		}
	}()

	start := time.Now()
	value, err := fn.Invoke(s.context, s.args)
	return &ScenarioResult{
		Value:    value,
		Error:    err,
		Duration: time.Since(start),
	}
}

// Assert checks all expectations and reports failures to the test.
func (r *ScenarioResult) Assert(t TestingT, scenario *Scenario) {
	t.Helper()

	for _, exp := range scenario.expectations {
		if err := exp.Check(r); err != nil {
			t.Errorf("scenario %q: expectation %q failed: %v", scenario.name, exp.Description(), err)
		}
	}
}

// Failures returns the descriptions of failed expectations, without a test.
func (r *ScenarioResult) Failures(scenario *Scenario) []string {
	var out []string
	for _, exp := range scenario.expectations {
		if err := exp.Check(r); err != nil {
			out = append(out, fmt.Sprintf("%s: %v", exp.Description(), err))
		}
	}
	return out
}

// StringMatcher defines how to match strings in expectations.
type StringMatcher interface {
	Match(s string) bool
	Description() string
}

// Contains returns a matcher that checks if the string contains the substring.
func Contains(substr string) StringMatcher {
	return &containsMatcher{substr: substr}
}

// Equals returns a matcher that checks exact string equality.
func Equals(expected string) StringMatcher {
	return &equalsMatcher{expected: expected}
}

// Regex returns a matcher that checks against a regular expression.
func Regex(pattern string) StringMatcher {
	return &regexMatcher{pattern: pattern}
}

// HasPrefix returns a matcher that checks if the string has the given prefix.
func HasPrefix(prefix string) StringMatcher {
	return &prefixMatcher{prefix: prefix}
}

type containsMatcher struct {
	substr string
}

func (m *containsMatcher) Match(s string) bool {
	return strings.Contains(s, m.substr)
}

func (m *containsMatcher) Description() string {
	return fmt.Sprintf("contains %q", m.substr)
}

type equalsMatcher struct {
	expected string
}

func (m *equalsMatcher) Match(s string) bool {
	return s == m.expected
}

func (m *equalsMatcher) Description() string {
	return fmt.Sprintf("equals %q", m.expected)
}

type regexMatcher struct {
	pattern string
}

func (m *regexMatcher) Match(s string) bool {
	re, err := regexp.Compile(m.pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func (m *regexMatcher) Description() string {
	return fmt.Sprintf("matches regex %q", m.pattern)
}

type prefixMatcher struct {
	prefix string
}

func (m *prefixMatcher) Match(s string) bool {
	return strings.HasPrefix(s, m.prefix)
}

func (m *prefixMatcher) Description() string {
	return fmt.Sprintf("has prefix %q", m.prefix)
}

// Expectation implementations

type noErrorExpectation struct{}

func (e *noErrorExpectation) Check(r *ScenarioResult) error {
	if r.Error != nil {
		return fmt.Errorf("expected no error, got: %v", r.Error)
	}
	return nil
}

func (e *noErrorExpectation) Description() string {
	return "no error"
}

type valueExpectation struct {
	expected any
}

func (e *valueExpectation) Check(r *ScenarioResult) error {
	if !reflect.DeepEqual(r.Value, e.expected) {
		return fmt.Errorf("expected value %#v, got %#v", e.expected, r.Value)
	}
	return nil
}

func (e *valueExpectation) Description() string {
	return fmt.Sprintf("value %#v", e.expected)
}

type messageExpectation struct {
	matcher StringMatcher
}

func (e *messageExpectation) Check(r *ScenarioResult) error {
	if r.Error == nil {
		return fmt.Errorf("expected error with message %s, got nil", e.matcher.Description())
	}
	if msg := errors.MessageOf(r.Error); !e.matcher.Match(msg) {
		return fmt.Errorf("message %q does not match: %s", msg, e.matcher.Description())
	}
	return nil
}

func (e *messageExpectation) Description() string {
	return fmt.Sprintf("message %s", e.matcher.Description())
}

type codeExpectation struct {
	code errors.ErrorCode
}

func (e *codeExpectation) Check(r *ScenarioResult) error {
	if got := errors.CodeOf(r.Error); got != e.code {
		return fmt.Errorf("expected code %s, got %s (error: %v)", e.code, formatCode(got), r.Error)
	}
	return nil
}

func (e *codeExpectation) Description() string {
	return fmt.Sprintf("code %s", e.code)
}

type errorIsExpectation struct {
	target error
}

func (e *errorIsExpectation) Check(r *ScenarioResult) error {
	if !stderrors.Is(r.Error, e.target) {
		return fmt.Errorf("error %v is not %v", r.Error, e.target)
	}
	return nil
}

func (e *errorIsExpectation) Description() string {
	return fmt.Sprintf("error is %v", e.target)
}
