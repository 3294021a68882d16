// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for sbpledge.
//
// Configuration is loaded from a single file named by the
// SBPLEDGE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no per-field environment
// override, so the limits a program runs under are always the ones in
// the file it was pointed at.
//
// The file may carry development and production sections that override
// base values when [Config].Environment matches. Production defaults
// are stricter: a missing confinement primitive is an error rather than
// a logged skip.
//
// temp_dir and audit_file undergo ${VAR} and ${VAR:-default} expansion
// after loading.
//
// This package depends on no other sbpledge packages.
package config
