// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// sbpledge confines programs on macOS with OpenBSD-style promises and
// unveil rules, translated to a Seatbelt profile.
//
// Usage:
//
//	sbpledge exec [flags] -- <program> [args...]
//	sbpledge render [flags]
//	sbpledge validate [flags] <policy>...
//	sbpledge doctor [flags]
//	sbpledge promises [--sbpl] [name...]
//	sbpledge audit [--diag] <file>
//	sbpledge version
//
// exec declares the policy, applies it to its own process and then
// replaces itself with the program, which inherits the confinement.
// render prints the profile the same policy would produce without
// applying anything, so policies can be reviewed on any platform.
//
// Policies come from a YAML or JSONC file (--policy) and from flags
// (--promises, --unveil, --lock); flags add to the file. Limits, the
// temporary directory, the audit log and the behavior on platforms
// without Seatbelt come from the configuration file named by --config
// or SBPLEDGE_CONFIG.
package main
