// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package policyfile reads confinement policies from disk. A policy
// names the promises a program keeps, the paths it may reach and
// whether the exposure list is locked. Policies are authored as YAML
// or as JSONC (JSON extended with comments and trailing commas); the
// file extension selects the format.
//
// The typical flow:
//
//  1. ReadFile or Parse: bytes → Policy
//  2. Validate: promise names, permission strings, paths
//  3. Apply: declare the policy on a pledge.State
package policyfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a policy.
type Format int

const (
	FormatYAML Format = iota
	FormatJSONC
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSONC:
		return "jsonc"
	default:
		return "unknown"
	}
}

// Policy is a declarative confinement request.
type Policy struct {
	// Promises lists the permitted promises. Nil means the policy does
	// not declare promises and the program keeps every capability
	// outside the filesystem; an empty list permits nothing.
	Promises *PromiseList `json:"promises,omitempty" yaml:"promises,omitempty"`

	// Mode is passed through to the promise declaration.
	Mode uint64 `json:"mode,omitempty" yaml:"mode,omitempty"`

	// Unveil lists exposure rules in declaration order.
	Unveil []Exposure `json:"unveil,omitempty" yaml:"unveil,omitempty"`

	// Lock closes the exposure list after the rules are declared, which
	// applies the profile.
	Lock bool `json:"lock,omitempty" yaml:"lock,omitempty"`
}

// Exposure is one unveil entry.
type Exposure struct {
	Path        string `json:"path" yaml:"path"`
	Permissions string `json:"permissions" yaml:"permissions"`
}

// PromiseList accepts either a pledge-style string ("stdio rpath") or
// a list of names.
type PromiseList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *PromiseList) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*l = strings.Fields(text)
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("promises must be a string or a list of strings")
	}
	*l = names
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *PromiseList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = strings.Fields(node.Value)
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*l = names
		return nil
	default:
		return fmt.Errorf("line %d: promises must be a string or a list of strings", node.Line)
	}
}

// String renders the list as a pledge promise string.
func (l PromiseList) String() string {
	return strings.Join(l, " ")
}

// FormatFromPath selects the format from a file extension: .json and
// .jsonc are JSONC, anything else is YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return FormatJSONC
	default:
		return FormatYAML
	}
}

// Parse decodes a policy in the given format. Unknown fields are
// rejected so that a misspelled key cannot silently widen a policy.
func Parse(data []byte, format Format) (*Policy, error) {
	var policy Policy
	switch format {
	case FormatJSONC:
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&policy); err != nil {
			return nil, fmt.Errorf("parsing policy: %w", err)
		}
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&policy); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing policy: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown policy format %v", format)
	}
	return &policy, nil
}

// ReadFile reads and parses a policy, choosing the format from the
// extension.
func ReadFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	policy, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return policy, nil
}
