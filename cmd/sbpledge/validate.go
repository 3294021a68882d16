// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sbpledge/lib/policyfile"
	"github.com/bureau-foundation/sbpledge/lib/process"
	"github.com/bureau-foundation/sbpledge/pledge"
)

// validateCmd implements the "validate" command.
func validateCmd(args []string, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	configPath := flagSet.StringP("config", "c", "", "configuration file (default: $SBPLEDGE_CONFIG)")

	flagSet.Usage = func() {
		fmt.Fprint(stderr, `sbpledge validate - Check policy files

USAGE
    sbpledge validate [flags] <policy>...

FLAGS
`)
		flagSet.PrintDefaults()
	}

	if ok, err := parseFlags(flagSet, args); !ok {
		return err
	}
	if flagSet.NArg() == 0 {
		return fmt.Errorf("%w: at least one policy file is required", process.ErrUsage)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range flagSet.Args() {
		policy, err := policyfile.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdout, "%s: %v\n", path, err)
			failed++
			continue
		}
		issues := policyfile.Validate(policy, cfg.Limits.MaxRules)
		if len(issues) == 0 {
			fmt.Fprintf(stdout, "%s: ok\n", path)
			continue
		}
		failed++
		for _, issue := range issues {
			fmt.Fprintf(stdout, "%s: %s\n", path, issue)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d policies invalid", pledge.ErrInvalidArgument, failed, flagSet.NArg())
	}
	return nil
}
