// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for sbpledge packages.
//
// [ResolvedTempDir] returns a t.TempDir with every symlink resolved.
// Exposure paths are canonicalized at declaration time, and on macOS
// the default temporary directory lives under /var, which is a symlink
// to /private/var. Tests comparing declared paths against recorded
// rules need the canonical form on both sides.
//
// [Logger] returns an slog.Logger that writes through t.Log, so log
// output appears only for failing or verbose tests.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation, such as distinct path names within one directory.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no sbpledge-internal dependencies.
package testutil
