// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pledge

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of
// these, so callers dispatch with errors.Is.
var (
	// ErrInvalidArgument reports malformed input: bad permission
	// characters, an empty path, or a path/permissions pair where only
	// one side is nil.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPermission reports an operation the current state disallows,
	// such as exposure declared after lock or promises redeclared after
	// the profile was applied.
	ErrPermission = errors.New("operation not permitted")

	// ErrCapacity reports a fixed bound being exceeded: the exposure
	// rule table is full or the generated profile is too large.
	ErrCapacity = errors.New("capacity exceeded")

	// ErrPlatform reports that the confinement primitive is present but
	// rejected or failed to apply the profile.
	ErrPlatform = errors.New("platform confinement failed")
)

// Capacity refinements. Both satisfy errors.Is(err, ErrCapacity).
var (
	ErrRuleTableFull   = fmt.Errorf("exposure rule table full: %w", ErrCapacity)
	ErrProfileTooLarge = fmt.Errorf("generated profile too large: %w", ErrCapacity)
)

// Error is the concrete error type returned by State operations.
type Error struct {
	// Op is the operation that failed ("declare capabilities",
	// "declare exposure", "apply").
	Op string

	// Kind is one of the package sentinels.
	Kind error

	// Detail is a human-readable description of the failure.
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("pledge: %s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("pledge: %s: %v: %s", e.Op, e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(op string, kind error, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
