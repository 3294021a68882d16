// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sbpledge/pledge"
)

// promisesCmd implements the "promises" command.
func promisesCmd(args []string, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("promises", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	showSBPL := flagSet.Bool("sbpl", false, "print the SBPL each promise contributes")

	flagSet.Usage = func() {
		fmt.Fprint(stderr, `sbpledge promises - List promises and what they grant

USAGE
    sbpledge promises [--sbpl] [name...]

FLAGS
`)
		flagSet.PrintDefaults()
	}

	if ok, err := parseFlags(flagSet, args); !ok {
		return err
	}

	selected := pledge.Promises(pledge.AllPromises()...)
	if flagSet.NArg() > 0 {
		var err error
		selected, err = pledge.ParsePromises(strings.Join(flagSet.Args(), " "))
		if err != nil {
			return err
		}
	}

	if !*showSBPL {
		writer := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "BIT\tPROMISE\tGRANTS")
		for _, promise := range selected.List() {
			fragment := pledge.Lookup(promise)
			grants := strings.TrimPrefix(fragment.Comment, promise.String()+": ")
			fmt.Fprintf(writer, "%d\t%s\t%s\n", uint8(promise), promise, grants)
		}
		return writer.Flush()
	}

	for _, promise := range selected.List() {
		fragment := pledge.Lookup(promise)
		fmt.Fprintf(stdout, ";; %s\n", fragment.Comment)
		for _, rule := range fragment.Rules {
			fmt.Fprintln(stdout, rule)
		}
		if len(fragment.FileOps) > 0 {
			fmt.Fprintf(stdout, ";; path-scoped: %s\n", strings.Join(fragment.FileOps, " "))
		}
		fmt.Fprintln(stdout)
	}
	return nil
}
