// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package preflight checks whether a policy can be applied as written
// before anything is confined. [Validator] runs independent checks on
// the platform primitive, the configured temporary directory and audit
// file, the policy structure, each exposed path and the size of the
// generated profile, and prints them as a pass/warn/fail list.
//
// Warnings never fail a run: an unveiled path that does not exist yet
// is legal, and a missing primitive is tolerated unless the
// configuration's fallback is "error".
package preflight
