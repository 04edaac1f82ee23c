// Copyright (c) 2017-2025 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pim

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"pim.dev/x/pim/pkg/updater"
)

type Pim struct {
	Stderr, Stdout, Stdin *os.File
	ExitFn                func(exitCode int)
	// must contain at least one argument, namely the pim binary name, similar to os.Args
	OsArgs []string
}

func (p *Pim) SetOutputStreams(cmd *cobra.Command) {
	cmd.SetOut(p.Stdout)
	cmd.SetErr(p.Stderr)
	cmd.SetIn(p.Stdin)

	lo.ForEach(cmd.Commands(), func(sub *cobra.Command, _ int) {
		p.SetOutputStreams(sub)
	})
}

// Prompter asks about each proposed update on in, writing the question to out.
// Unreadable or exhausted input aborts.
func Prompter(in io.Reader, out io.Writer) func(updater.UpdateInfo) updater.Decision {
	scanner := bufio.NewScanner(in)
	return func(info updater.UpdateInfo) updater.Decision {
		for {
			_, _ = fmt.Fprint(out, updater.Format(info))
			_, _ = fmt.Fprintf(out, "apply update to %s? [y]es / [s]kip / [a]bort: ", info.Name)
			if !scanner.Scan() {
				_, _ = fmt.Fprintln(out)
				return updater.Abort
			}
			switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
			case "y", "yes":
				return updater.Approve
			case "s", "skip", "n", "no":
				return updater.Skip
			case "a", "abort", "q":
				return updater.Abort
			}
		}
	}
}
