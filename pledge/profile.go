// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pledge

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// Reference bounds. Both are configurable through [Limits].
const (
	DefaultMaxRules        = 256
	DefaultMaxProfileBytes = 16 * 1024
)

// Limits bounds the state a profile is generated from and the profile
// itself. Zero fields take the defaults.
type Limits struct {
	// MaxRules is the maximum number of distinct exposed paths.
	MaxRules int

	// MaxProfileBytes is the maximum length of a generated profile.
	MaxProfileBytes int
}

// DefaultLimits returns the reference bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxRules:        DefaultMaxRules,
		MaxProfileBytes: DefaultMaxProfileBytes,
	}
}

func (l Limits) withDefaults() Limits {
	if l.MaxRules <= 0 {
		l.MaxRules = DefaultMaxRules
	}
	if l.MaxProfileBytes <= 0 {
		l.MaxProfileBytes = DefaultMaxProfileBytes
	}
	return l
}

// StateView is the read-only input to [Generate].
type StateView struct {
	Promises         PromiseSet
	PromisesDeclared bool
	Rules            []ExposureRule
	Locked           bool
}

// exposureActive reports whether path scope comes from exposure rules
// rather than from the promises alone. OpenBSD starts enforcing unveil
// with the first call, before the list is locked.
func (v StateView) exposureActive() bool {
	return v.Locked || len(v.Rules) > 0
}

// GeneratedProfile is an immutable SBPL document.
type GeneratedProfile struct {
	text string
}

// Text returns the SBPL source.
func (p *GeneratedProfile) Text() string {
	return p.text
}

// Len returns the length of the SBPL source in bytes.
func (p *GeneratedProfile) Len() int {
	return len(p.text)
}

// Digest returns the hex BLAKE3-256 digest of the SBPL source. Identical
// state always yields an identical digest.
func (p *GeneratedProfile) Digest() string {
	sum := blake3.Sum256([]byte(p.text))
	return hex.EncodeToString(sum[:])
}

const profileHeader = `;; sbpledge profile
(version 1)
(deny default)

;; re-execution of the running image
(allow process-exec (literal (param "` + ParamProcessPath + `")))`

const unrestrictedSection = `;; no promises declared: unrestricted
(allow default)`

// filesystemDenyRule removes path-based filesystem access while keeping
// the device nodes stdio and tty rely on.
const filesystemDenyRule = `(deny file-read* file-write*
  (require-all
    (subpath "/")
    (require-not (subpath "/dev"))))`

// imageReadRule keeps the running image mappable after the filesystem
// deny rule.
const imageReadRule = `(allow file-read* (literal (param "` + ParamProcessPath + `")))`

// profileBuilder collects sections in order and joins them once.
type profileBuilder struct {
	sections []string
}

func (b *profileBuilder) section(comment string, rules ...string) {
	lines := make([]string, 0, len(rules)+1)
	if comment != "" {
		lines = append(lines, ";; "+comment)
	}
	lines = append(lines, rules...)
	b.sections = append(b.sections, strings.Join(lines, "\n"))
}

func (b *profileBuilder) text() string {
	return strings.Join(b.sections, "\n\n") + "\n"
}

// Generate builds the profile for view. The result depends only on view:
// promises are emitted in enumeration order and exposure rules in
// declaration order, so identical state yields byte-identical output.
// A profile longer than maxBytes (or [DefaultMaxProfileBytes] when
// maxBytes is not positive) fails with [ErrProfileTooLarge].
func Generate(view StateView, maxBytes int) (*GeneratedProfile, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxProfileBytes
	}

	builder := &profileBuilder{}
	builder.sections = append(builder.sections, profileHeader)

	exposure := view.exposureActive()
	rules := unionRules(view.Rules)
	if !view.PromisesDeclared {
		builder.section("", unrestrictedSection)
	}

	// The deny block precedes the promise fragments so that the explicit
	// grants of dns, tty and tmppath still win over it.
	switch {
	case view.Locked && len(rules) == 0:
		builder.section("exposure locked with nothing exposed", filesystemDenyRule, imageReadRule)
	case exposure && !view.PromisesDeclared:
		builder.section("filesystem confined to exposed paths", filesystemDenyRule, imageReadRule)
	}

	if view.PromisesDeclared {
		for _, promise := range view.Promises.List() {
			addPromise(builder, promise, exposure)
		}
	}

	for _, rule := range rules {
		addExposure(builder, rule)
	}

	text := builder.text()
	if len(text) > maxBytes {
		return nil, newError("generate profile", ErrProfileTooLarge,
			"%d bytes exceeds the %d byte limit", len(text), maxBytes)
	}
	return &GeneratedProfile{text: text}, nil
}

func addPromise(builder *profileBuilder, promise Promise, exposure bool) {
	fragment := Lookup(promise)
	rules := fragment.Rules
	if len(fragment.FileOps) > 0 {
		if exposure {
			rules = append(rules, ";; path access for "+promise.String()+" comes from exposure rules")
		} else {
			rules = append(rules, allowRule(fragment.FileOps, "/"))
		}
	}
	builder.section(fragment.Comment, rules...)
}

func addExposure(builder *profileBuilder, rule ExposureRule) {
	if rule.Permissions == 0 {
		builder.section("hidden: " + rule.Path)
		return
	}
	var rules []string
	if rule.Permissions.Has(PermRead) {
		rules = append(rules, allowRule([]string{"file-read*"}, rule.Path))
	}
	if rule.Permissions.Has(PermWrite) {
		rules = append(rules, allowRule([]string{"file-write-data"}, rule.Path))
	}
	if rule.Permissions.Has(PermExecute) {
		rules = append(rules, allowRule([]string{"process-exec*", "file-map-executable"}, rule.Path))
	}
	if rule.Permissions.Has(PermCreate) {
		rules = append(rules, allowRule([]string{"file-write-create", "file-write-unlink", "file-link"}, rule.Path))
	}
	builder.section("exposed: "+rule.Path+" ["+rule.Permissions.String()+"]", rules...)
}

func allowRule(operations []string, path string) string {
	return "(allow " + strings.Join(operations, " ") + " (subpath " + quote(path) + "))"
}

// unionRules merges rules naming the same path, keeping the position of
// the first declaration. Permissions accumulate; a later rule never
// narrows an earlier one.
func unionRules(rules []ExposureRule) []ExposureRule {
	merged := make([]ExposureRule, 0, len(rules))
	index := make(map[string]int, len(rules))
	for _, rule := range rules {
		if i, ok := index[rule.Path]; ok {
			merged[i].Permissions |= rule.Permissions
			continue
		}
		index[rule.Path] = len(merged)
		merged = append(merged, rule)
	}
	return merged
}

// quote renders s as an SBPL string literal.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}
