// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package main

import "golang.org/x/sys/unix"

// execProgram replaces the process image. Replaced in tests.
var execProgram = unix.Exec
