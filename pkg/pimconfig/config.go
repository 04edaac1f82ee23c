// Copyright (c) 2017-2025 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pimconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
	"pim.dev/x/pim/pkg/utils"
)

type Config struct {
	HomePath string `yaml:"-"`

	// file guarding mutating commands against concurrent pim processes
	InstallLockPath string `yaml:"-"`

	// dir containing one git checkout per plugin
	PluginsDir string `yaml:"plugins-dir,omitempty"`

	LockFilePath string `yaml:"lockfile,omitempty"`

	// declaration files, or directories scanned for *.yaml declaration files
	Specs []string `yaml:"specs,omitempty"`

	StrictDuplicates bool `yaml:"strict-duplicates,omitempty"`

	NetrcPath string `yaml:"netrc,omitempty"`
}

func (c *Config) EnsureDirs() error {
	return utils.EnsureDirs(c.HomePath, c.PluginsDir, filepath.Dir(c.LockFilePath))
}

func Get() (*Config, error) {
	homePath, err := getHomePath()
	if err != nil {
		return nil, err
	}
	return GetWithCustomHome(homePath)
}

func GetWithCustomHome(homePath string) (*Config, error) {
	config := Config{}

	// pim-config.yaml is optional
	configFilePath := filepath.Join(homePath, ConfigFileName)
	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		if fileInfo.IsDir() {
			return nil, fmt.Errorf("%q is directory and not a file", configFilePath)
		}

		bytes, err := os.ReadFile(configFilePath)
		if err != nil {
			return nil, err
		}

		if err := yaml.UnmarshalWithOptions(bytes, &config, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", configFilePath, err)
		}
	}

	if v, ok := os.LookupEnv(PluginsDirEnvVar); ok {
		config.PluginsDir = v
	}
	if v, ok := os.LookupEnv(LockFileEnvVar); ok {
		config.LockFilePath = v
	}
	if v, ok := os.LookupEnv(SpecsEnvVar); ok {
		config.Specs = lo.Compact(strings.Split(v, string(os.PathListSeparator)))
	}
	if v, ok := os.LookupEnv(NetrcEnvVar); ok {
		config.NetrcPath = v
	}

	strict, ok, err := utils.BoolEnvVar(StrictDuplicatesEnvVar)
	if err != nil {
		return nil, err
	}
	if ok {
		config.StrictDuplicates = strict
	}

	// relative paths in the config file are relative to the home dir
	if config.PluginsDir == "" {
		config.PluginsDir = DefaultPluginsDir
	}
	config.PluginsDir = utils.ResolvePath(homePath, config.PluginsDir)

	if config.LockFilePath == "" {
		config.LockFilePath = LockFileName
	}
	config.LockFilePath = utils.ResolvePath(homePath, config.LockFilePath)

	if len(config.Specs) == 0 {
		config.Specs = []string{DefaultSpecsDir}
	}
	config.Specs = lo.Map(config.Specs, func(p string, _ int) string {
		return utils.ResolvePath(homePath, p)
	})

	if config.NetrcPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			config.NetrcPath = filepath.Join(home, ".netrc")
		}
	}

	config.HomePath = homePath
	config.InstallLockPath = filepath.Join(homePath, InstallLockName)
	return &config, nil
}

func getHomePath() (string, error) {
	if v, ok := os.LookupEnv(HomeEnvVar); ok {
		return v, nil
	}

	return getAppUserDataDirectory("pim")
}

func getAppUserDataDirectory(appName string) (string, error) {
	switch runtime.GOOS {
	case "windows":
		dir, ok := os.LookupEnv("APPDATA")
		if !ok {
			return "", fmt.Errorf("APPDATA environment variable is not set")
		}
		return filepath.Join(dir, appName), nil
	default:
		dir, ok := os.LookupEnv("HOME")
		if !ok {
			return "", fmt.Errorf("HOME environment variable is not set")
		}
		return filepath.Join(dir, "."+appName), nil
	}
}
