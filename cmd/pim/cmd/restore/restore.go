// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package restore

import (
	"github.com/spf13/cobra"
	"pim.dev/x/pim/cmd/pim/cmd/output"
	"pim.dev/x/pim/pkg/builtincommand"
	"pim.dev/x/pim/pkg/pimconfig"
	"pim.dev/x/pim/pkg/pluginmgr"
)

func Cmd(config *pimconfig.Config) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   string(builtincommand.Restore),
		Short: "make installed plugins match the lock file exactly",
		Long: `make installed plugins match the lock file exactly.

	every locked plugin is installed and checked out at its locked revision, and installed
	plugins that are not in the lock file are removed. declarations are not consulted.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			report, err := pluginmgr.New(config).Restore(cmd.Context())
			if err != nil {
				return err
			}
			return output.Print(cmd, format, report, report.Summary)
		},
	}

	output.AddFlag(cmd, &format)
	return cmd
}
