// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pimconfig

const (
	ConfigFileName     = "pim-config.yaml"
	LockFileName       = "pim-lock.json"
	InstallLockName    = ".install.lock"
	DefaultPluginsDir  = "plugins"
	DefaultSpecsDir    = "specs"
	DeclarationFileExt = ".yaml"
)
