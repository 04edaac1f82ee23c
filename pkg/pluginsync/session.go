// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pluginsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"
	"go.trai.ch/zerr"
	"pim.dev/x/pim/pkg/installdir"
	"pim.dev/x/pim/pkg/lockstore"
	"pim.dev/x/pim/pkg/pluginspec"
	"pim.dev/x/pim/pkg/registry"
	"pim.dev/x/pim/pkg/resolution"
	"pim.dev/x/pim/pkg/utils"
	"pim.dev/x/pim/pkg/utils/set"
	"pim.dev/x/pim/pkg/vcs"
)

var (
	ErrDependencyCycle = errors.New("dependency cycle")
	ErrHeadMismatch    = errors.New("checkout did not reach the resolved revision")
)

// Session carries the state of one invocation: the registry and lock it works on,
// and which identities each mode already handled.
type Session struct {
	VCS      vcs.Adapter
	Layout   installdir.Layout
	Registry *registry.Registry
	Lock     *lockstore.Store
	Policy   *resolution.Policy

	processed map[resolution.Mode]set.Set[pluginspec.Identity]
	report    Report
}

func NewSession(adapter vcs.Adapter, layout installdir.Layout, reg *registry.Registry, lock *lockstore.Store) *Session {
	return &Session{
		VCS:       adapter,
		Layout:    layout,
		Registry:  reg,
		Lock:      lock,
		Policy:    resolution.New(adapter),
		processed: map[resolution.Mode]set.Set[pluginspec.Identity]{},
	}
}

// Report returns everything the session changed so far
func (s *Session) Report() Report {
	return s.report
}

func (s *Session) done(mode resolution.Mode) set.Set[pluginspec.Identity] {
	if s.processed[mode] == nil {
		s.processed[mode] = set.Of[pluginspec.Identity]()
	}
	return s.processed[mode]
}

type visitFn func(ctx context.Context, spec *pluginspec.Spec) error

// walk visits id after its dependencies, at most once per mode
func (s *Session) walk(ctx context.Context, mode resolution.Mode, id pluginspec.Identity, path []pluginspec.Identity, visit visitFn) error {
	if slices.Contains(path, id) {
		cycle := strings.Join(lo.Map(slices.Concat(path[slices.Index(path, id):], []pluginspec.Identity{id}), func(i pluginspec.Identity, _ int) string {
			return i.Name()
		}), " -> ")
		return zerr.With(zerr.With(zerr.Wrap(ErrDependencyCycle, cycle), "identity", id), "cycle", cycle)
	}
	if s.done(mode).Contains(id) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	spec, ok := s.Registry.Get(id)
	if !ok {
		spec = pluginspec.Bare(id)
	}

	path = append(path, id)
	for _, dep := range spec.Dependencies {
		if err := s.walk(ctx, mode, dep, path, visit); err != nil {
			return err
		}
	}

	if err := visit(ctx, spec); err != nil {
		return wrapIdentity(err, mode.String(), id)
	}
	s.done(mode).Add(id)
	return nil
}

func (s *Session) walkAll(ctx context.Context, mode resolution.Mode, ids []pluginspec.Identity, visit visitFn) error {
	if len(ids) == 0 {
		ids = s.Registry.TopLevel()
	}
	for _, id := range ids {
		if err := s.walk(ctx, mode, id, nil, visit); err != nil {
			return err
		}
	}
	return nil
}

// ensureInstalled clones id when absent and reports whether it did
func (s *Session) ensureInstalled(ctx context.Context, id pluginspec.Identity) (bool, error) {
	installed, err := s.Layout.IsInstalled(id)
	if err != nil || installed {
		return false, err
	}
	if err := s.Layout.Ensure(); err != nil {
		return false, err
	}
	slog.Info("installing plugin", "identity", id, "path", s.Layout.Dir(id))
	if err := s.VCS.Clone(ctx, string(id), s.Layout.Dir(id)); err != nil {
		return false, err
	}
	s.report.Cloned = append(s.report.Cloned, id)
	return true, nil
}

// moveTo checks the copy at dir out to res unless HEAD is already there,
// fetching first when the target commit is not known locally. It returns the resulting HEAD.
func (s *Session) moveTo(ctx context.Context, id pluginspec.Identity, res resolution.Resolution) (string, error) {
	dir := s.Layout.Dir(id)
	head, err := s.VCS.Head(ctx, dir, vcs.RevHead)
	if err != nil {
		return "", err
	}
	if head == res.Revision || res.Ref == "" {
		return head, nil
	}

	if _, err := s.VCS.Head(ctx, dir, res.Revision); errors.Is(err, vcs.ErrRefNotFound) {
		if err := s.VCS.Fetch(ctx, dir); err != nil {
			return "", err
		}
	}
	slog.Info("checking out", "identity", id, "ref", res.Ref, "revision", utils.ShortRevision(res.Revision))
	if err := s.VCS.Checkout(ctx, dir, res.Ref); err != nil {
		return "", err
	}
	s.report.CheckedOut = append(s.report.CheckedOut, id)

	head, err = s.VCS.Head(ctx, dir, vcs.RevHead)
	if err != nil {
		return "", err
	}
	if head != res.Revision {
		return "", fmt.Errorf("%w: %s is at %s, expected %s", ErrHeadMismatch, dir, head, res.Revision)
	}
	return head, nil
}

func (s *Session) record(id pluginspec.Identity, rev string) {
	if s.Lock.Set(id, rev) {
		s.report.Locked = append(s.report.Locked, id)
	}
}

func wrapIdentity(err error, op string, id pluginspec.Identity) error {
	return zerr.With(zerr.Wrap(err, op+" "+id.Name()), "identity", id)
}
