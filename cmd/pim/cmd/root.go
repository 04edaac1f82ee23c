// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"pim.dev/x/pim/cmd/pim/cmd/install"
	"pim.dev/x/pim/cmd/pim/cmd/list"
	"pim.dev/x/pim/cmd/pim/cmd/restore"
	syncCmd "pim.dev/x/pim/cmd/pim/cmd/sync"
	"pim.dev/x/pim/cmd/pim/cmd/update"
	"pim.dev/x/pim/cmd/pim/cmd/version"
	"pim.dev/x/pim/pkg/builtincommand"
	"pim.dev/x/pim/pkg/logging"
	"pim.dev/x/pim/pkg/pim"
	"pim.dev/x/pim/pkg/pimconfig"
	"pim.dev/x/pim/pkg/pimversion"
)

const (
	pluginsGroupId = "plugins"
	metaGroupId    = "meta"
	PimName        = "pim"
)

func RootCmd(ctx context.Context, p *pim.Pim) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   PimName,
		Short: "a git based plugin manager",
		// errors are logged by the caller, with their metadata
		SilenceErrors: true,
	}

	defer p.SetOutputStreams(cmd)

	if len(p.OsArgs) == 0 {
		return nil, fmt.Errorf("Pim.OsArgs must contain at least one entry similar to os.Args")
	}

	cmd.SetArgs(p.OsArgs[1:])
	cmd.AddGroup(&cobra.Group{
		ID:    pluginsGroupId,
		Title: "Plugin Commands",
	})
	cmd.AddGroup(&cobra.Group{
		ID:    metaGroupId,
		Title: "Meta Commands",
	})

	if err := logging.InitLoggingTo(p.Stderr); err != nil {
		return nil, err
	}

	config, err := pimconfig.Get()
	if err != nil {
		return nil, err
	}
	if builtincommand.IsMutatingCommand(p.OsArgs) {
		if err := config.EnsureDirs(); err != nil {
			return nil, err
		}
	}

	cmd.AddCommand(
		setCmdGroup(install.Cmd(config), pluginsGroupId),
		setCmdGroup(syncCmd.Cmd(config), pluginsGroupId),
		setCmdGroup(restore.Cmd(config), pluginsGroupId),
		setCmdGroup(update.Cmd(config), pluginsGroupId),
		setCmdGroup(list.Cmd(config), pluginsGroupId),
		setCmdGroup(version.Cmd(), metaGroupId),
	)

	v, err := yaml.Marshal(pimversion.Get())
	if err != nil {
		return nil, err
	}
	cmd.Version = string(v)
	cmd.SetVersionTemplate("{{.Version}}")

	return cmd, nil
}

func setCmdGroup(cmd *cobra.Command, groupId string) *cobra.Command {
	cmd.GroupID = groupId
	return cmd
}
