// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package contract

// AttachPrecondition adds p to target. If target is already a Contracted the
// same wrapper is extended and returned; otherwise a new wrapper is created.
// A nil *Contracted or *Function target panics.
func AttachPrecondition(target Target, p *Precondition) *Contracted {
	c := wrapOnce(target)
	c.AddPrecondition(p)
	return c
}

// AttachPostcondition adds p to target with the same wrapping rule as
// AttachPrecondition.
func AttachPostcondition(target Target, p *Postcondition) *Contracted {
	c := wrapOnce(target)
	c.AddPostcondition(p)
	return c
}

func wrapOnce(target Target) *Contracted {
	switch t := target.(type) {
	case *Contracted:
		if t == nil {
			panic("contract: nil *Contracted target")
		}
		return t
	case Function:
		return Wrap(t)
	case *Function:
		if t == nil {
			panic("contract: nil *Function target")
		}
		return Wrap(*t)
	}
	// Target cannot be implemented outside this package.
	panic("contract: unknown target type")
}

// Annotation attaches something to a target, the way a decorator would.
type Annotation func(Target) *Contracted

// Apply applies annotations to target in order: the first annotation is the
// innermost, so its conditions are evaluated first. The result is always a
// single Contracted, even when target already was one.
func Apply(target Target, annotations ...Annotation) *Contracted {
	c := wrapOnce(target)
	for _, a := range annotations {
		if a != nil {
			c = a(c)
		}
	}
	return c
}

// Require returns an annotation attaching p.
func Require(p *Precondition) Annotation {
	return func(t Target) *Contracted {
		return AttachPrecondition(t, p)
	}
}

// Ensure returns an annotation attaching p.
func Ensure(p *Postcondition) Annotation {
	return func(t Target) *Contracted {
		return AttachPostcondition(t, p)
	}
}

// Pre returns an annotation attaching a whole-call precondition.
func Pre(check CallCheck, description string) Annotation {
	return Require(PreconditionOnCall(check, description))
}

// PreArg returns an annotation attaching a precondition on one parameter.
func PreArg(param string, check ValueCheck, description string) Annotation {
	return Require(PreconditionOnArgument(param, check, description))
}

// Post returns an annotation attaching a postcondition on the return value.
func Post(check ValueCheck, description string) Annotation {
	return Ensure(NewPostcondition(check, description))
}

// Configure returns an annotation applying options to the wrapper.
func Configure(opts ...Option) Annotation {
	return func(t Target) *Contracted {
		c := wrapOnce(t)
		c.Configure(opts...)
		return c
	}
}
