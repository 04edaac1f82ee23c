// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"github.com/spf13/cobra"
	"pim.dev/x/pim/cmd/pim/cmd/output"
	"pim.dev/x/pim/pkg/builtincommand"
	"pim.dev/x/pim/pkg/pimversion"
)

func Cmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   string(builtincommand.Version),
		Short: "show the pim version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := pimversion.Get()
			return output.Print(cmd, format, v, func() string {
				return v.Version
			})
		},
	}

	output.AddFlag(cmd, &format)
	return cmd
}
