// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pledge

import (
	"errors"
	"slices"
	"testing"
)

func TestPromiseNames(t *testing.T) {
	want := []string{
		"stdio", "rpath", "wpath", "cpath", "dpath", "flock", "fattr",
		"inet", "unix", "dns", "tty", "recvfd", "proc", "exec", "id",
		"unveil", "sendfd", "settime", "prot_exec", "vminfo", "tmppath",
		"chown",
	}
	all := AllPromises()
	if len(all) != len(want) {
		t.Fatalf("AllPromises has %d entries, want %d", len(all), len(want))
	}
	for i, promise := range all {
		if promise.String() != want[i] {
			t.Errorf("bit %d: name %q, want %q", i, promise.String(), want[i])
		}
		found, ok := LookupPromise(want[i])
		if !ok || found != promise {
			t.Errorf("LookupPromise(%q) = %v, %v", want[i], found, ok)
		}
	}
	if _, ok := LookupPromise("stdio "); ok {
		t.Error("LookupPromise accepted a name with trailing space")
	}
	if got := Promise(99).String(); got != "promise(99)" {
		t.Errorf("out-of-range String() = %q", got)
	}
	if Promise(99).Valid() {
		t.Error("Promise(99) reported valid")
	}
}

func TestPromiseSet(t *testing.T) {
	set := Promises(PromiseInet, PromiseStdio, PromiseStdio)
	if !set.Has(PromiseStdio) || !set.Has(PromiseInet) {
		t.Fatalf("set %v missing members", set)
	}
	if set.Has(PromiseRpath) {
		t.Error("set reports rpath")
	}
	if set.Len() != 2 {
		t.Errorf("Len() = %d, want 2", set.Len())
	}
	if got := set.String(); got != "stdio inet" {
		t.Errorf("String() = %q, want enumeration order", got)
	}
	if !slices.Equal(set.List(), []Promise{PromiseStdio, PromiseInet}) {
		t.Errorf("List() = %v", set.List())
	}
	if set.Without(PromiseInet) != Promises(PromiseStdio) {
		t.Error("Without did not remove inet")
	}
	if set.With(Promise(80)) != set {
		t.Error("With accepted an invalid promise")
	}
	if PromiseSet(0).String() != "" {
		t.Error("empty set renders non-empty")
	}
}

func TestPromiseSetUnknown(t *testing.T) {
	set := Promises(PromiseStdio) | PromiseSet(1)<<40 | PromiseSet(1)<<63
	if set.Unknown() != PromiseSet(1)<<40|PromiseSet(1)<<63 {
		t.Errorf("Unknown() = %#x", uint64(set.Unknown()))
	}
	if set.Len() != 1 {
		t.Errorf("Len() counts unknown bits: %d", set.Len())
	}
	if Promises(AllPromises()...).Unknown() != 0 {
		t.Error("full set has unknown bits")
	}
}

func TestParsePromises(t *testing.T) {
	set, err := ParsePromises("  rpath\tstdio stdio ")
	if err != nil {
		t.Fatalf("ParsePromises: %v", err)
	}
	if set != Promises(PromiseStdio, PromiseRpath) {
		t.Errorf("ParsePromises = %v", set)
	}

	empty, err := ParsePromises("")
	if err != nil || empty != 0 {
		t.Errorf("ParsePromises(\"\") = %v, %v", empty, err)
	}

	if _, err := ParsePromises("stdio bogus"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unknown name: got %v, want ErrInvalidArgument", err)
	}
}
