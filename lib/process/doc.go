// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for the sbpledge binary.
// These functions centralize the raw I/O that happens before the
// structured logger exists or after main() has decided to exit:
//
//   - Fatal error reporting to stderr when the logger may not be
//     initialized (pre-logger).
//   - Mapping errors to process exit codes, so that scripts can tell
//     a rejected policy from a platform that refused confinement.
package process
