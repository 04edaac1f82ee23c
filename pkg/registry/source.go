// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"pim.dev/x/pim/pkg/pluginspec"
)

// Source yields the plugin declarations of one declaration source
type Source interface {
	Name() string
	Specs() ([]*pluginspec.Spec, error)
}

type FileSource struct {
	Path string
}

func (f FileSource) Name() string {
	return f.Path
}

func (f FileSource) Specs() ([]*pluginspec.Spec, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration file %q: %w", f.Path, err)
	}
	return pluginspec.ParseDeclaration(f.Path, data)
}

// BytesSource is an in-memory declaration document
type BytesSource struct {
	SourceName string
	Data       []byte
}

func (b BytesSource) Name() string {
	return b.SourceName
}

func (b BytesSource) Specs() ([]*pluginspec.Spec, error) {
	return pluginspec.ParseDeclaration(b.SourceName, b.Data)
}

// StaticSource hands out already-built specs
type StaticSource struct {
	SourceName string
	Declared   []*pluginspec.Spec
}

func (s StaticSource) Name() string {
	return s.SourceName
}

func (s StaticSource) Specs() ([]*pluginspec.Spec, error) {
	out := make([]*pluginspec.Spec, 0, len(s.Declared))
	for _, d := range s.Declared {
		c := *d
		c.Source = s.SourceName
		out = append(out, &c)
	}
	return out, nil
}

var declarationExts = []string{".yaml", ".yml"}

// DiscoverSources expands each path into sources: files are taken as-is, directories
// contribute their *.yaml and *.yml entries in lexical order. Missing paths are skipped.
func DiscoverSources(paths []string) ([]Source, error) {
	var sources []Source
	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			sources = append(sources, FileSource{Path: p})
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read declaration directory %q: %w", p, err)
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			if slices.Contains(declarationExts, strings.ToLower(filepath.Ext(e.Name()))) {
				names = append(names, e.Name())
			}
		}
		slices.Sort(names)
		for _, n := range names {
			sources = append(sources, FileSource{Path: filepath.Join(p, n)})
		}
	}
	return sources, nil
}
