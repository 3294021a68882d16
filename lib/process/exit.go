// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/sbpledge/pledge"
)

// Exit codes, following sysexits(3).
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 64 // EX_USAGE
	ExitDataErr     = 65 // EX_DATAERR
	ExitUnavailable = 69 // EX_UNAVAILABLE
	ExitSoftware    = 70 // EX_SOFTWARE
	ExitOSErr       = 71 // EX_OSERR
	ExitNoPerm      = 77 // EX_NOPERM
	ExitConfig      = 78 // EX_CONFIG
)

// ErrUsage marks command-line mistakes.
var ErrUsage = errors.New("usage")

// ErrUnconfined marks a refusal to continue without confinement.
var ErrUnconfined = errors.New("confinement unavailable")

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, ErrUnconfined):
		return ExitUnavailable
	case errors.Is(err, pledge.ErrInvalidArgument):
		return ExitDataErr
	case errors.Is(err, pledge.ErrCapacity):
		return ExitSoftware
	case errors.Is(err, pledge.ErrPermission):
		return ExitNoPerm
	case errors.Is(err, pledge.ErrPlatform):
		return ExitOSErr
	default:
		return ExitFailure
	}
}

// Fatal writes "error: err" to stderr and exits with ExitCode(err).
// Use it in main() for errors from run() where the structured logger
// may not be initialized.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(ExitCode(err))
}
