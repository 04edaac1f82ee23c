// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package updater

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"pim.dev/x/pim/pkg/utils"
)

var (
	nameStyle     = color.New(color.Bold)
	breakingStyle = color.New(color.FgRed, color.Bold)
	tagStyle      = color.New(color.FgCyan)
)

// Format renders info as a header line followed by one indented line per commit
func Format(info UpdateInfo) string {
	var b strings.Builder

	b.WriteString(nameStyle.Sprint(info.Name))
	fmt.Fprintf(&b, " %d %s", len(info.Commits), plural(len(info.Commits), "commit"))
	if info.OldTag != "" || info.NewTag != "" {
		from := info.OldTag
		if from == "" {
			from = utils.ShortRevision(info.OldRevision)
		}
		to := info.NewTag
		if to == "" {
			to = utils.ShortRevision(info.NewRevision)
		}
		b.WriteString(" " + tagStyle.Sprintf("(%s -> %s)", from, to))
	}
	if info.IsMajorBump {
		b.WriteString(" " + breakingStyle.Sprint("[BREAKING: major version bump]"))
	}
	b.WriteString("\n")

	for _, c := range info.Commits {
		b.WriteString("    " + c + "\n")
	}
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
