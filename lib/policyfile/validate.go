// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package policyfile

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/sbpledge/pledge"
)

// Validate checks a Policy for issues that would make Apply fail
// before anything is declared. Returns a list of human-readable issue
// descriptions; an empty list means the policy is valid.
//
// Checks:
//   - Every promise name is part of the enumeration
//   - Every unveil entry has a path without NUL or line breaks
//   - Every permission string uses only r, w, x and c
//   - The number of distinct paths fits within maxRules (when positive)
func Validate(policy *Policy, maxRules int) []string {
	var issues []string

	if policy.Promises != nil {
		for index, name := range *policy.Promises {
			if _, ok := pledge.LookupPromise(name); !ok {
				issues = append(issues, fmt.Sprintf("promises[%d]: unknown promise %q", index, name))
			}
		}
	}

	paths := make(map[string]int, len(policy.Unveil))
	for index, exposure := range policy.Unveil {
		prefix := fmt.Sprintf("unveil[%d]", index)
		switch {
		case exposure.Path == "":
			issues = append(issues, prefix+": path is required")
		case strings.ContainsAny(exposure.Path, "\x00\n\r"):
			issues = append(issues, fmt.Sprintf("%s: path %q contains a NUL or line break", prefix, exposure.Path))
		default:
			if _, seen := paths[exposure.Path]; !seen {
				paths[exposure.Path] = index
			}
		}
		if _, err := pledge.ParsePermissions(exposure.Permissions); err != nil {
			issues = append(issues, fmt.Sprintf("%s %q: %v", prefix, exposure.Path, err))
		}
	}

	if maxRules > 0 && len(paths) > maxRules {
		issues = append(issues, fmt.Sprintf("unveil: %d distinct paths exceed the limit of %d", len(paths), maxRules))
	}

	return issues
}
