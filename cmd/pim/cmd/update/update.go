// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package update

import (
	"fmt"

	"github.com/spf13/cobra"
	"pim.dev/x/pim/pkg/builtincommand"
	"pim.dev/x/pim/pkg/pim"
	"pim.dev/x/pim/pkg/pimconfig"
	"pim.dev/x/pim/pkg/pluginmgr"
	"pim.dev/x/pim/pkg/updater"
)

func Cmd(config *pimconfig.Config) *cobra.Command {
	var checkOnly, yes bool

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s [plugin...]", string(builtincommand.Update)),
		Short: "move unpinned plugins to their newest revision",
		Long: `move unpinned, locked plugins (default: all) to their newest release tag or default branch head.

	each available update is shown with the commits it brings in and confirmed interactively,
	unless --yes is given. the lock file is written before any plugin is checked out.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			opts := pluginmgr.UpdateOptions{
				Names:     args,
				CheckOnly: checkOnly,
			}
			if !yes {
				opts.Decide = pim.Prompter(cmd.InOrStdin(), cmd.OutOrStdout())
			}

			result, err := pluginmgr.New(config).Update(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if len(result.Available) == 0 {
				cmd.Println("no updates available")
				return nil
			}
			if checkOnly || yes {
				for _, info := range result.Available {
					cmd.Printf("%s", updater.Format(info))
				}
			}
			if !checkOnly {
				cmd.Printf("applied %d of %d update(s)\n", len(result.Applied), len(result.Available))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "list available updates without applying them")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "apply all available updates without asking")
	return cmd
}
