// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package installdir

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"pim.dev/x/pim/pkg/pluginspec"
	"pim.dev/x/pim/pkg/utils"
)

// Layout maps plugins to their installed copies under Root: <root>/<name>
type Layout struct {
	Root string
}

func (l Layout) Dir(id pluginspec.Identity) string {
	return filepath.Join(l.Root, id.Name())
}

func (l Layout) IsInstalled(id pluginspec.Identity) (bool, error) {
	return utils.DirExists(l.Dir(id))
}

// Installed lists the names of everything installed, sorted. A missing root means nothing is installed.
func (l Layout) Installed() ([]string, error) {
	entries, err := os.ReadDir(l.Root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// Remove deletes the installed copy called name
func (l Layout) Remove(name string) error {
	return utils.RemoveAllWithin(l.Root, filepath.Join(l.Root, name))
}

func (l Layout) Ensure() error {
	return os.MkdirAll(l.Root, 0o755)
}
