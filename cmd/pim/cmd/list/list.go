// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package list

import (
	"fmt"

	"github.com/spf13/cobra"
	"pim.dev/x/pim/cmd/pim/cmd/output"
	"pim.dev/x/pim/pkg/builtincommand"
	"pim.dev/x/pim/pkg/pimconfig"
	"pim.dev/x/pim/pkg/pluginmgr"
	"pim.dev/x/pim/pkg/status"
)

var ErrOutOfSync = fmt.Errorf("plugins are out of sync with declarations and lock file")

func Cmd(config *pimconfig.Config) *cobra.Command {
	var format string
	var check bool

	cmd := &cobra.Command{
		Use:     string(builtincommand.List),
		Short:   "show declared and locked plugins",
		Aliases: []string{string(builtincommand.Status)},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			entries, err := pluginmgr.New(config).Status(cmd.Context())
			if err != nil {
				return err
			}
			if entries == nil {
				entries = status.Entries{}
			}
			if err := output.Print(cmd, format, entries, entries.Table); err != nil {
				return err
			}

			if check && !entries.InSync() {
				return ErrOutOfSync
			}
			return nil
		},
	}

	output.AddFlag(cmd, &format)
	cmd.Flags().BoolVar(&check, "check", false, "fail unless every plugin is installed at its locked revision")
	return cmd
}
