// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package policyfile

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	promises := func(names ...string) *PromiseList {
		list := PromiseList(names)
		return &list
	}

	tests := []struct {
		name           string
		policy         *Policy
		maxRules       int
		expectedIssues int
		wantSubstrings []string
	}{
		{
			name:   "valid",
			policy: &Policy{Promises: promises("stdio", "rpath"), Unveil: []Exposure{{Path: "/etc", Permissions: "r"}}, Lock: true},
		},
		{
			name:   "hidden path",
			policy: &Policy{Unveil: []Exposure{{Path: "/secret", Permissions: ""}}},
		},
		{
			name:           "unknown promise",
			policy:         &Policy{Promises: promises("stdio", "network")},
			expectedIssues: 1,
			wantSubstrings: []string{`promises[1]: unknown promise "network"`},
		},
		{
			name:           "missing path",
			policy:         &Policy{Unveil: []Exposure{{Permissions: "r"}}},
			expectedIssues: 1,
			wantSubstrings: []string{"unveil[0]: path is required"},
		},
		{
			name:           "bad permissions",
			policy:         &Policy{Unveil: []Exposure{{Path: "/etc", Permissions: "rq"}}},
			expectedIssues: 1,
			wantSubstrings: []string{`unveil[0] "/etc"`, "not one of r, w, x, c"},
		},
		{
			name:           "line break",
			policy:         &Policy{Unveil: []Exposure{{Path: "/a\nb", Permissions: "r"}}},
			expectedIssues: 1,
			wantSubstrings: []string{"NUL or line break"},
		},
		{
			name: "too many paths",
			policy: &Policy{Unveil: []Exposure{
				{Path: "/a", Permissions: "r"},
				{Path: "/b", Permissions: "r"},
				{Path: "/a", Permissions: "w"},
				{Path: "/c", Permissions: "r"},
			}},
			maxRules:       2,
			expectedIssues: 1,
			wantSubstrings: []string{"3 distinct paths exceed the limit of 2"},
		},
		{
			name: "repeated path within limit",
			policy: &Policy{Unveil: []Exposure{
				{Path: "/a", Permissions: "r"},
				{Path: "/a", Permissions: "w"},
			}},
			maxRules: 1,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			issues := Validate(test.policy, test.maxRules)
			if len(issues) != test.expectedIssues {
				t.Fatalf("got %d issues, want %d: %v", len(issues), test.expectedIssues, issues)
			}
			joined := strings.Join(issues, "\n")
			for _, want := range test.wantSubstrings {
				if !strings.Contains(joined, want) {
					t.Errorf("issues missing %q:\n%s", want, joined)
				}
			}
		})
	}
}
