// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package contract

// Enforcement selects which kinds of conditions are evaluated. A disabled
// kind is skipped entirely: its checks are not called.
type Enforcement struct {
	Preconditions  bool
	Postconditions bool
}

// EnforceAll evaluates every condition. It is the default.
var EnforceAll = Enforcement{Preconditions: true, Postconditions: true}

// Option configures a Contracted.
type Option func(*Contracted)

// WithEnforcement sets which condition kinds are evaluated.
func WithEnforcement(e Enforcement) Option {
	return func(c *Contracted) {
		c.enforcement = e
	}
}

// WithObserver sets the observer notified about invocations.
func WithObserver(o Observer) Option {
	return func(c *Contracted) {
		c.observer = o
	}
}
