// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pledge

import (
	"errors"
	"strings"
	"testing"
)

func mustGenerate(t *testing.T, view StateView) string {
	t.Helper()
	profile, err := Generate(view, 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return profile.Text()
}

func requireOrder(t *testing.T, text string, fragments ...string) {
	t.Helper()
	last := -1
	for _, fragment := range fragments {
		index := strings.Index(text, fragment)
		if index < 0 {
			t.Fatalf("profile missing %q:\n%s", fragment, text)
		}
		if index < last {
			t.Fatalf("%q appears out of order:\n%s", fragment, text)
		}
		last = index
	}
}

func TestGenerateUnrestricted(t *testing.T) {
	text := mustGenerate(t, StateView{})

	if !strings.HasPrefix(text, ";; sbpledge profile\n(version 1)\n(deny default)") {
		t.Errorf("profile does not start with the header:\n%s", text)
	}
	requireOrder(t, text, "(deny default)", `(param "PROCESS_PATH")`, "(allow default)")
	if strings.Contains(text, "(deny file-read*") {
		t.Errorf("unrestricted profile confines the filesystem:\n%s", text)
	}
	if !strings.HasSuffix(text, "\n") || strings.HasSuffix(text, "\n\n") {
		t.Errorf("profile should end with exactly one newline")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	view := StateView{
		Promises:         Promises(PromiseStdio, PromiseRpath, PromiseInet),
		PromisesDeclared: true,
		Rules: []ExposureRule{
			{Path: "/usr/lib", Permissions: PermRead},
			{Path: "/var/db", Permissions: PermRead | PermWrite},
		},
		Locked: true,
	}
	first, err := Generate(view, 0)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Generate(view, 0)
	if err != nil {
		t.Fatal(err)
	}
	if first.Text() != second.Text() {
		t.Fatal("identical views produced different profiles")
	}
	if first.Digest() != second.Digest() || len(first.Digest()) != 64 {
		t.Errorf("digest %q / %q", first.Digest(), second.Digest())
	}
	if first.Len() != len(first.Text()) {
		t.Errorf("Len() = %d, text is %d bytes", first.Len(), len(first.Text()))
	}

	view.Rules = append(view.Rules, ExposureRule{Path: "/opt", Permissions: PermRead})
	third, err := Generate(view, 0)
	if err != nil {
		t.Fatal(err)
	}
	if third.Digest() == first.Digest() {
		t.Error("different views share a digest")
	}
}

func TestGeneratePromiseOrder(t *testing.T) {
	text := mustGenerate(t, StateView{
		Promises:         Promises(PromiseTmppath, PromiseInet, PromiseStdio),
		PromisesDeclared: true,
	})
	requireOrder(t, text, ";; stdio:", ";; inet:", ";; tmppath:")
	if strings.Contains(text, "(allow default)") {
		t.Errorf("declared promises still allow everything:\n%s", text)
	}
}

func TestGenerateEmptyPromisesDenyAll(t *testing.T) {
	text := mustGenerate(t, StateView{PromisesDeclared: true})
	if strings.Contains(text, "(allow default)") || strings.Contains(text, ";; stdio:") {
		t.Errorf("empty promise set should grant nothing beyond the header:\n%s", text)
	}
}

func TestGenerateFileOpsWithoutExposure(t *testing.T) {
	text := mustGenerate(t, StateView{
		Promises:         Promises(PromiseRpath, PromiseWpath),
		PromisesDeclared: true,
	})
	requireOrder(t, text,
		`(allow file-read* (subpath "/"))`,
		`(allow file-write-data (subpath "/"))`,
	)
}

func TestGenerateFileOpsScopedByExposure(t *testing.T) {
	text := mustGenerate(t, StateView{
		Promises:         Promises(PromiseStdio, PromiseRpath),
		PromisesDeclared: true,
		Rules:            []ExposureRule{{Path: "/etc", Permissions: PermRead}},
	})
	if strings.Contains(text, `(subpath "/"))`) {
		t.Errorf("rpath reaches the whole filesystem despite exposure:\n%s", text)
	}
	requireOrder(t, text,
		";; path access for rpath comes from exposure rules",
		";; exposed: /etc [r]",
		`(allow file-read* (subpath "/etc"))`,
	)
}

func TestGenerateLockedWithNothingExposed(t *testing.T) {
	text := mustGenerate(t, StateView{
		Promises:         Promises(PromiseStdio),
		PromisesDeclared: true,
		Locked:           true,
	})
	requireOrder(t, text, ";; exposure locked with nothing exposed", "(deny file-read* file-write*",
		`(allow file-read* (literal (param "PROCESS_PATH")))`, ";; stdio:")
	if !strings.Contains(text, `(require-not (subpath "/dev"))`) {
		t.Errorf("deny block does not spare /dev:\n%s", text)
	}
}

func TestGenerateLockedKeepsPromiseFileGrants(t *testing.T) {
	view := StateView{
		Promises:         Promises(PromiseStdio, PromiseDNS, PromiseTTY, PromiseTmppath),
		PromisesDeclared: true,
		Locked:           true,
	}
	grants := []string{
		`(literal "/etc/resolv.conf")`,
		`(literal "/dev/tty")`,
		`(subpath (param "TMPDIR"))`,
	}

	text := mustGenerate(t, view)
	deny := strings.LastIndex(text, "(deny file-read* file-write*")
	if deny < 0 {
		t.Fatalf("locked profile has no deny block:\n%s", text)
	}
	for _, grant := range grants {
		if index := strings.Index(text, grant); index < deny {
			t.Errorf("%s at %d is overridden by the deny block at %d:\n%s", grant, index, deny, text)
		}
	}

	// An unrelated exposure rule must not change which promise grants
	// survive.
	view.Rules = []ExposureRule{{Path: "/usr", Permissions: PermRead}}
	exposed := mustGenerate(t, view)
	for _, grant := range grants {
		if !strings.Contains(exposed, grant) {
			t.Errorf("%s missing with a rule present:\n%s", grant, exposed)
		}
	}
}

func TestGenerateExposureWithoutPromises(t *testing.T) {
	text := mustGenerate(t, StateView{
		Rules:  []ExposureRule{{Path: "/srv", Permissions: PermRead | PermExecute}},
		Locked: true,
	})
	requireOrder(t, text,
		"(allow default)",
		";; filesystem confined to exposed paths",
		";; exposed: /srv [rx]",
		`(allow file-read* (subpath "/srv"))`,
		`(allow process-exec* file-map-executable (subpath "/srv"))`,
	)
}

func TestGenerateUnionSemantics(t *testing.T) {
	text := mustGenerate(t, StateView{
		Promises:         Promises(PromiseStdio, PromiseRpath, PromiseWpath),
		PromisesDeclared: true,
		Rules: []ExposureRule{
			{Path: "/etc", Permissions: PermRead},
			{Path: "/var", Permissions: PermCreate},
			{Path: "/etc", Permissions: PermWrite},
		},
		Locked: true,
	})
	if n := strings.Count(text, ";; exposed: /etc"); n != 1 {
		t.Fatalf("/etc emitted %d times:\n%s", n, text)
	}
	requireOrder(t, text,
		";; exposed: /etc [rw]",
		`(allow file-read* (subpath "/etc"))`,
		`(allow file-write-data (subpath "/etc"))`,
		";; exposed: /var [c]",
		`(allow file-write-create file-write-unlink file-link (subpath "/var"))`,
	)
}

func TestGenerateHiddenPath(t *testing.T) {
	text := mustGenerate(t, StateView{
		PromisesDeclared: true,
		Rules:            []ExposureRule{{Path: "/secret"}},
	})
	if !strings.Contains(text, ";; hidden: /secret") {
		t.Errorf("missing hidden marker:\n%s", text)
	}
	if strings.Contains(text, `(subpath "/secret")`) {
		t.Errorf("hidden path granted access:\n%s", text)
	}
}

func TestGenerateQuotesPaths(t *testing.T) {
	text := mustGenerate(t, StateView{
		PromisesDeclared: true,
		Rules:            []ExposureRule{{Path: `/a"b\c`, Permissions: PermRead}},
	})
	if !strings.Contains(text, `(allow file-read* (subpath "/a\"b\\c"))`) {
		t.Errorf("path not escaped:\n%s", text)
	}
}

func TestGenerateTooLarge(t *testing.T) {
	view := StateView{
		Promises:         Promises(AllPromises()...),
		PromisesDeclared: true,
	}
	profile, err := Generate(view, 100)
	if profile != nil {
		t.Error("oversized profile returned")
	}
	if !errors.Is(err, ErrProfileTooLarge) || !errors.Is(err, ErrCapacity) {
		t.Fatalf("got %v, want ErrProfileTooLarge wrapping ErrCapacity", err)
	}

	if _, err := Generate(view, 0); err != nil {
		t.Errorf("full promise set exceeds the default bound: %v", err)
	}
}

func TestLimitsWithDefaults(t *testing.T) {
	limits := Limits{MaxRules: 4}.withDefaults()
	if limits.MaxRules != 4 || limits.MaxProfileBytes != DefaultMaxProfileBytes {
		t.Errorf("withDefaults = %+v", limits)
	}
	if DefaultLimits() != (Limits{}).withDefaults() {
		t.Error("DefaultLimits disagrees with zero Limits")
	}
}
