// Copyright (c) 2017-2025 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"fmt"

	"github.com/spf13/cobra"
	"pim.dev/x/pim/cmd/pim/cmd/output"
	"pim.dev/x/pim/pkg/builtincommand"
	"pim.dev/x/pim/pkg/pimconfig"
	"pim.dev/x/pim/pkg/pluginmgr"
)

func Cmd(config *pimconfig.Config) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s [plugin...]", string(builtincommand.Install)),
		Short: "clone declared plugins that are not installed yet",
		Long: `clone declared plugins (default: all) and their dependencies that are not installed yet.

	installed plugins are left where they are; use sync to move them to their locked or pinned revision.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			report, err := pluginmgr.New(config).Install(cmd.Context(), args...)
			if err != nil {
				return err
			}
			return output.Print(cmd, format, report, report.Summary)
		},
	}

	output.AddFlag(cmd, &format)
	return cmd
}
