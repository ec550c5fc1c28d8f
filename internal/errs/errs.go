// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package errs classifies the failures of an optimization run so a driver
// can tell a bad configuration from a broken solver.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error.
type Kind int

const (
	Other Kind = iota
	// Config: unreadable or malformed configuration, usually recoverable by
	// disabling a feature.
	Config
	// Encoding: a value which cannot be written as clause literals.
	Encoding
	// Protocol: missing or malformed solver output.
	Protocol
	// Invariant: the model is not what the caller promised, e.g. a node id
	// which does not resolve.
	Invariant
	// Infeasible: no clock period in reach satisfies every path.
	Infeasible
	// Canceled: the run was interrupted or a solver ran out of time.
	Canceled
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case Encoding:
		return "encoding"
	case Protocol:
		return "protocol"
	case Invariant:
		return "invariant"
	case Infeasible:
		return "infeasible"
	case Canceled:
		return "canceled"
	default:
		return "other"
	}
}

// Error is an error with a Kind and the operation which produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

// Cause implements the github.com/pkg/errors causer.
func (e *Error) Cause() error { return e.Err }

// Unwrap implements the errors.Unwrap convention.
func (e *Error) Unwrap() error { return e.Err }

// E creates an *Error of kind k for operation op.
func E(k Kind, op string, err error) error {
	return &Error{Kind: k, Op: op, Err: err}
}

// Ef is E with a formatted message as the underlying error.
func Ef(k Kind, op string, format string, args ...interface{}) error {
	return &Error{Kind: k, Op: op, Err: errors.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain, walking
// both Unwrap and pkg/errors causes.  It returns Other if there is none.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		switch x := err.(type) {
		case interface{ Unwrap() error }:
			err = x.Unwrap()
		case interface{ Cause() error }:
			err = x.Cause()
		default:
			return Other
		}
	}
	return Other
}

// Is reports whether err is classified as k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
