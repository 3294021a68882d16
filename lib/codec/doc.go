// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding used for sbpledge audit
// records.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. Two
// audit records describing the same application are byte-identical,
// which keeps audit files diffable across runs.
//
// Audit files are CBOR sequences (RFC 8742): records are written back to
// back with no framing, so a file can be appended to by several runs and
// read with a single stream decoder:
//
//	encoder := codec.NewEncoder(file)
//	decoder := codec.NewDecoder(file)
//
// Struct types serialized here carry `cbor` tags only.
//
// This package depends on no other sbpledge packages.
package codec
