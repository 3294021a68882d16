// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package pledge

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Errno translates an error from this package into the errno a
// libc-style pledge or unveil wrapper would set. Nil maps to zero.
// Errors not produced by this package map to EPERM so that a confused
// caller never mistakes an unknown failure for success.
func Errno(err error) unix.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidArgument):
		return unix.EINVAL
	case errors.Is(err, ErrRuleTableFull):
		return unix.E2BIG
	case errors.Is(err, ErrProfileTooLarge):
		return unix.ENOMEM
	case errors.Is(err, ErrCapacity):
		return unix.ENOMEM
	case errors.Is(err, ErrPermission):
		return unix.EPERM
	case errors.Is(err, ErrPlatform):
		return unix.EPERM
	default:
		return unix.EPERM
	}
}
