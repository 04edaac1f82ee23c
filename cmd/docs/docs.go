// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	pimCmd "pim.dev/x/pim/cmd/pim/cmd"
	"pim.dev/x/pim/pkg/pim"
	"pim.dev/x/pim/pkg/pimconfig"
	"pim.dev/x/pim/pkg/utils"
)

const (
	formatMarkdown = "md"
	formatRST      = "rst"
)

func main() {
	ctx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelFn()

	if err := getDocsCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func getDocsCmd() *cobra.Command {
	var format string

	docsCmd := &cobra.Command{
		Use:   "docs <output dir>",
		Short: "generate the pim CLI commands reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if !lo.Contains([]string{formatMarkdown, formatRST}, format) {
				return fmt.Errorf("only --format md or --format rst are supported")
			}

			cmd.SilenceUsage = true
			if err := genDocs(cmd.Context(), dir, format); err != nil {
				return err
			}

			cmd.Printf("successfully generated at %s\n", dir)
			return nil
		},
	}

	docsCmd.Flags().StringVar(&format, "format", formatMarkdown, "md or rst")
	return docsCmd
}

func genDocs(ctx context.Context, dir, format string) error {
	tmp, deleteFn, err := utils.MkdirTemp("", "")
	if err != nil {
		return err
	}
	defer func() { _ = deleteFn() }()

	// the reference must not depend on the caller's pim home
	if err := os.Setenv(pimconfig.HomeEnvVar, tmp); err != nil {
		return err
	}

	root, err := pimCmd.RootCmd(ctx, &pim.Pim{OsArgs: []string{pimCmd.PimName}})
	if err != nil {
		return err
	}
	root.DisableAutoGenTag = true

	if err := utils.EnsureDirs(dir); err != nil {
		return err
	}

	if format == formatRST {
		if err := doc.GenReSTTreeCustom(root, dir, prependRSTHeader, linkHandler); err != nil {
			return err
		}
		return generateTOC(dir)
	}
	return doc.GenMarkdownTreeCustom(root, dir, prependFrontMatter, func(s string) string {
		return s
	})
}

// title turns a generated file name like "pim_update.md" into "Pim Update"
func title(filename string) string {
	words := strings.Split(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), "_")
	return strings.Join(lo.Map(words, func(w string, _ int) string {
		if w == "" {
			return w
		}
		return strings.ToUpper(w[:1]) + w[1:]
	}), " ")
}

// add a Jekyll/Just-the-Docs front-matter block
func prependFrontMatter(filename string) string {
	return fmt.Sprintf(`---
layout: default
title: %s
parent: CLI reference
---

`, title(filename))
}

func prependRSTHeader(filename string) string {
	t := title(filename)
	return fmt.Sprintf("%s\n%s\n\n", t, strings.Repeat("=", len(t)))
}

func linkHandler(name, ref string) string {
	return fmt.Sprintf(":ref:`%s <%s>`", name, ref)
}

func generateTOC(outputDir string) error {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return fmt.Errorf("error reading output directory: %w", err)
	}

	var b strings.Builder
	b.WriteString(".. toctree::\n   :maxdepth: 2\n   :caption: CLI Reference:\n\n")
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".rst" && e.Name() != "index.rst" {
			fmt.Fprintf(&b, "   %s\n", strings.TrimSuffix(e.Name(), ".rst"))
		}
	}
	return os.WriteFile(filepath.Join(outputDir, "index.rst"), []byte(b.String()), 0o644)
}
