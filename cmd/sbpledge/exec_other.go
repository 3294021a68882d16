// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package main

import "errors"

var execProgram = func(string, []string, []string) error {
	return errors.New("exec is only supported on unix platforms")
}
