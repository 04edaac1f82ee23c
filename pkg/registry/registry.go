// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"
	"go.trai.ch/zerr"
	"pim.dev/x/pim/pkg/pluginspec"
)

var (
	ErrInvalidDeclaration   = pluginspec.ErrInvalidDeclaration
	ErrDuplicateDeclaration = errors.New("plugin declared more than once")
	ErrNameCollision        = errors.New("plugins share an install name")
)

type Options struct {
	// StrictDuplicates rejects two full declarations of the same identity instead of keeping the last one
	StrictDuplicates bool
}

// Registry is the merged, read-only view of every declared plugin and its
// transitively referenced dependencies, keyed by identity. The zero value is an
// empty registry.
type Registry struct {
	specs    map[pluginspec.Identity]*pluginspec.Spec
	order    []pluginspec.Identity
	topLevel []pluginspec.Identity
}

// Build merges the declarations of all sources, in order, into a registry.
// Referenced but undeclared dependencies get bare stub entries.
// Any failing source fails the whole build.
func Build(sources []Source, opts Options) (*Registry, error) {
	r := &Registry{specs: map[pluginspec.Identity]*pluginspec.Spec{}}

	for _, src := range sources {
		specs, err := src.Specs()
		if err != nil {
			if errors.Is(err, ErrInvalidDeclaration) {
				return nil, err
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to load declarations from "+src.Name()), "source", src.Name())
		}
		for _, s := range specs {
			if err := r.merge(s, opts); err != nil {
				return nil, err
			}
		}
	}

	// declarations referencing something nobody declared get a stub for it
	for _, id := range slices.Clone(r.order) {
		for _, dep := range r.specs[id].Dependencies {
			if _, ok := r.specs[dep]; !ok {
				slog.Debug("adding stub for undeclared dependency", "identity", dep, "dependent", id)
				r.specs[dep] = pluginspec.Bare(dep)
				r.order = append(r.order, dep)
			}
		}
	}

	if err := r.checkNames(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) merge(s *pluginspec.Spec, opts Options) error {
	existing, ok := r.specs[s.Identity]
	if !ok {
		r.specs[s.Identity] = s
		r.order = append(r.order, s.Identity)
		r.topLevel = append(r.topLevel, s.Identity)
		return nil
	}

	switch {
	case s.IsBare():
		// a bare re-declaration adds nothing
		return nil
	case existing.IsBare():
	case opts.StrictDuplicates:
		return zerr.With(
			zerr.With(zerr.Wrap(ErrDuplicateDeclaration, s.Identity.String()), "identity", s.Identity),
			"sources", []string{existing.Source, s.Source},
		)
	default:
		slog.Warn("plugin declared more than once, the last declaration wins",
			"identity", s.Identity, "previous", existing.Source, "current", s.Source)
	}
	r.specs[s.Identity] = s
	return nil
}

func (r *Registry) checkNames() error {
	byName := lo.GroupBy(r.order, func(id pluginspec.Identity) string {
		return strings.ToLower(id.Name())
	})
	for _, id := range r.order {
		ids := byName[strings.ToLower(id.Name())]
		if len(ids) > 1 {
			return zerr.With(
				zerr.Wrap(ErrNameCollision, fmt.Sprintf("%s and %s", ids[0], ids[1])),
				"name", id.Name(),
			)
		}
	}
	return nil
}

func (r *Registry) Get(id pluginspec.Identity) (*pluginspec.Spec, bool) {
	s, ok := r.specs[id]
	return s, ok
}

func (r *Registry) Has(id pluginspec.Identity) bool {
	_, ok := r.specs[id]
	return ok
}

// Lookup finds a plugin by its install name
func (r *Registry) Lookup(name string) (*pluginspec.Spec, bool) {
	for _, id := range r.order {
		if strings.EqualFold(id.Name(), name) {
			return r.specs[id], true
		}
	}
	return nil, false
}

// TopLevel returns the explicitly declared identities in declaration order
func (r *Registry) TopLevel() []pluginspec.Identity {
	return slices.Clone(r.topLevel)
}

// Identities returns every identity, stubs included, sorted
func (r *Registry) Identities() []pluginspec.Identity {
	ids := slices.Clone(r.order)
	slices.Sort(ids)
	return ids
}

// Names returns the install names of every entry, sorted
func (r *Registry) Names() []string {
	names := lo.Map(r.order, func(id pluginspec.Identity, _ int) string { return id.Name() })
	slices.Sort(names)
	return names
}

func (r *Registry) Len() int {
	return len(r.order)
}
