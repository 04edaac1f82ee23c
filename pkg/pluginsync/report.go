// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pluginsync

import (
	"fmt"
	"strings"

	"pim.dev/x/pim/pkg/pluginspec"
)

// Report records what an operation changed
type Report struct {
	Cloned         []pluginspec.Identity `json:"cloned,omitempty"`
	CheckedOut     []pluginspec.Identity `json:"checkedOut,omitempty"`
	Locked         []pluginspec.Identity `json:"locked,omitempty"`
	PrunedFromLock []pluginspec.Identity `json:"prunedFromLock,omitempty"`
	Removed        []string              `json:"removed,omitempty"`
}

func (r *Report) Empty() bool {
	return len(r.Cloned) == 0 &&
		len(r.CheckedOut) == 0 &&
		len(r.Locked) == 0 &&
		len(r.PrunedFromLock) == 0 &&
		len(r.Removed) == 0
}

// Summary is a one-line, human readable account of the report
func (r *Report) Summary() string {
	if r.Empty() {
		return "everything up to date"
	}
	var parts []string
	add := func(n int, what string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, what))
		}
	}
	add(len(r.Cloned), "cloned")
	add(len(r.CheckedOut), "checked out")
	add(len(r.Locked), "locked")
	add(len(r.PrunedFromLock), "pruned from lock")
	add(len(r.Removed), "removed")
	return strings.Join(parts, ", ")
}
