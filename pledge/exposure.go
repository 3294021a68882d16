// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pledge

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Permission is a subset of the unveil permissions {r, w, x, c}.
type Permission uint8

const (
	PermRead Permission = 1 << iota
	PermWrite
	PermExecute
	PermCreate
)

var permissionLetters = []struct {
	letter byte
	perm   Permission
}{
	{'r', PermRead},
	{'w', PermWrite},
	{'x', PermExecute},
	{'c', PermCreate},
}

// ParsePermissions parses an unveil permission string. Every character
// must be one of r, w, x or c; repeats are allowed. The empty string is
// valid and exposes the path with no access, which hides it.
func ParsePermissions(s string) (Permission, error) {
	var perm Permission
	for i := 0; i < len(s); i++ {
		found := false
		for _, candidate := range permissionLetters {
			if s[i] == candidate.letter {
				perm |= candidate.perm
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("permission character %q at offset %d is not one of r, w, x, c", s[i], i)
		}
	}
	return perm, nil
}

// Has reports whether every bit of other is in p.
func (p Permission) Has(other Permission) bool {
	return p&other == other
}

// String renders p in canonical rwxc order.
func (p Permission) String() string {
	var b strings.Builder
	for _, candidate := range permissionLetters {
		if p&candidate.perm != 0 {
			b.WriteByte(candidate.letter)
		}
	}
	return b.String()
}

// ExposureRule exposes one filesystem subtree with a permission subset.
// Path is absolute and symlink-resolved at declaration time.
type ExposureRule struct {
	Path        string
	Permissions Permission
}

func (r ExposureRule) String() string {
	return fmt.Sprintf("%s:%s", r.Path, r.Permissions)
}

// checkPathText rejects paths that cannot be represented in an SBPL
// string literal or a C string.
func checkPathText(path string) error {
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	if strings.ContainsAny(path, "\x00\n\r") {
		return fmt.Errorf("path %q contains a NUL or line break", path)
	}
	return nil
}

// resolveExposurePath makes path absolute against the working directory
// and resolves symlinks. Components that do not exist yet are kept
// lexically below their deepest existing ancestor, so exposing a file
// that will be created later still matches the canonical location.
func resolveExposurePath(path string, getwd func() (string, error)) (string, error) {
	if !filepath.IsAbs(path) {
		cwd, err := getwd()
		if err != nil {
			return "", fmt.Errorf("resolving relative path %q: %w", path, err)
		}
		path = filepath.Join(cwd, path)
	}
	return resolveExisting(filepath.Clean(path)), nil
}

func resolveExisting(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	parent := filepath.Dir(path)
	if parent == path {
		return path
	}
	return filepath.Join(resolveExisting(parent), filepath.Base(path))
}
