// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pimconfig

const envVarPrefix = "PIM_"

const (
	// HomeEnvVar
	// PIM_HOME is the absolute path to the `pim` home directory
	HomeEnvVar = envVarPrefix + "HOME"

	// LogLevelEnvVar
	// PIM_LOG_LEVEL sets the log level.
	// 	Default: info
	//  Possible values: debug info warn error
	LogLevelEnvVar = envVarPrefix + "LOG_LEVEL"

	// PluginsDirEnvVar
	// PIM_PLUGINS_DIR overrides the directory plugins are cloned into
	PluginsDirEnvVar = envVarPrefix + "PLUGINS_DIR"

	// LockFileEnvVar
	// PIM_LOCKFILE overrides the path of the lock file
	LockFileEnvVar = envVarPrefix + "LOCKFILE"

	// SpecsEnvVar
	// PIM_SPECS lists declaration files and/or directories, separated by the OS path list separator
	SpecsEnvVar = envVarPrefix + "SPECS"

	// StrictDuplicatesEnvVar
	// PIM_STRICT_DUPLICATES makes two full declarations of the same plugin a hard error
	StrictDuplicatesEnvVar = envVarPrefix + "STRICT_DUPLICATES"

	// NetrcEnvVar
	// PIM_NETRC points at the netrc file used for HTTPS git credentials
	// 	default: $HOME/.netrc
	NetrcEnvVar = envVarPrefix + "NETRC"
)
