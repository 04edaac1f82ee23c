// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sync

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
		Use:   string(builtincommand.Sync),
		Short: "install declared plugins and move them to their pinned or locked revision",
		Long: `install declared plugins and move them to their pinned or locked revision.

	plugins without pin or lock entry are resolved to their newest release tag, or the head of the
	remote default branch, and locked there. lock entries for plugins no longer declared are dropped.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			report, err := pluginmgr.New(config).Sync(cmd.Context())
			if err != nil {
				return err
			}
			return output.Print(cmd, format, report, report.Summary)
		},
	}

	output.AddFlag(cmd, &format)
	return cmd
}
