// Copyright (c) 2017-2025 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package builtincommand

import (
	"github.com/samber/lo"
)

type BuiltinCommand string

const (
	Version BuiltinCommand = "version"
	Install BuiltinCommand = "install"
	Sync    BuiltinCommand = "sync"
	Restore BuiltinCommand = "restore"
	Update  BuiltinCommand = "update"
	List    BuiltinCommand = "list"
	Status  BuiltinCommand = "status"
)

var BuiltinCommands = []BuiltinCommand{Version, Install, Sync, Restore, Update, List}

// mutating commands need the pim home and plugins dir to exist
var mutatingCommands = []BuiltinCommand{Install, Sync, Restore, Update}

func IsBuiltinCommand(args []string) bool {
	if len(args) > 1 {
		elems := lo.Map(BuiltinCommands, func(item BuiltinCommand, _ int) string {
			return string(item)
		})
		return lo.Contains(elems, args[1])
	}
	return false
}

func IsMutatingCommand(args []string) bool {
	if len(args) > 1 {
		return lo.Contains(mutatingCommands, BuiltinCommand(args[1]))
	}
	return false
}
