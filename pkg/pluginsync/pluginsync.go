// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pluginsync

import (
	"context"
	"log/slog"

	"pim.dev/x/pim/pkg/pluginspec"
	"pim.dev/x/pim/pkg/resolution"
	"pim.dev/x/pim/pkg/utils/set"
	"pim.dev/x/pim/pkg/vcs"
)

// EnsureInstalled clones whatever of ids (default: every declared plugin) and their
// dependencies is missing, checks out pins or locked revisions on fresh clones and
// fills lock gaps. Installed copies are never moved and existing lock entries never overwritten.
func (s *Session) EnsureInstalled(ctx context.Context, ids ...pluginspec.Identity) error {
	return s.walkAll(ctx, resolution.Install, ids, s.ensureOne)
}

func (s *Session) ensureOne(ctx context.Context, spec *pluginspec.Spec) error {
	id := spec.Identity
	locked, hasLock := s.Lock.Get(id)

	cloned, err := s.ensureInstalled(ctx, id)
	if err != nil {
		return err
	}

	head := ""
	if cloned {
		res, err := s.Policy.Resolve(ctx, resolution.Request{
			Spec:   spec,
			Locked: locked,
			Dir:    s.Layout.Dir(id),
			Mode:   resolution.Install,
			Fresh:  true,
		})
		if err != nil {
			return err
		}
		if head, err = s.moveTo(ctx, id, res); err != nil {
			return err
		}
	}

	if hasLock {
		return nil
	}
	if head == "" {
		if head, err = s.VCS.Head(ctx, s.Layout.Dir(id), vcs.RevHead); err != nil {
			return err
		}
	}
	s.record(id, head)
	return nil
}

// Sync drops lock entries of plugins no longer declared, then brings every declared
// plugin to its resolved revision and locks it there. Copies on disk are not pruned.
func (s *Session) Sync(ctx context.Context) error {
	for _, id := range s.Lock.Identities() {
		if !s.Registry.Has(id) {
			slog.Info("pruning undeclared plugin from lock", "identity", id)
			s.Lock.Delete(id)
			s.report.PrunedFromLock = append(s.report.PrunedFromLock, id)
		}
	}
	return s.walkAll(ctx, resolution.Sync, nil, s.syncOne)
}

func (s *Session) syncOne(ctx context.Context, spec *pluginspec.Spec) error {
	id := spec.Identity
	locked, _ := s.Lock.Get(id)

	cloned, err := s.ensureInstalled(ctx, id)
	if err != nil {
		return err
	}
	res, err := s.Policy.Resolve(ctx, resolution.Request{
		Spec:   spec,
		Locked: locked,
		Dir:    s.Layout.Dir(id),
		Mode:   resolution.Sync,
		Fresh:  cloned,
	})
	if err != nil {
		return err
	}
	head, err := s.moveTo(ctx, id, res)
	if err != nil {
		return err
	}
	s.record(id, head)
	return nil
}

// Restore makes disk match the lock: every locked plugin is installed at its locked
// revision and installed copies without a lock entry are removed. Without a lock
// file nothing is removed.
func (s *Session) Restore(ctx context.Context) error {
	done := s.done(resolution.Restore)
	for _, id := range s.Lock.Identities() {
		if done.Contains(id) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.restoreOne(ctx, id); err != nil {
			return err
		}
		done.Add(id)
	}
	return s.pruneDisk()
}

func (s *Session) restoreOne(ctx context.Context, id pluginspec.Identity) error {
	locked, _ := s.Lock.Get(id)
	if _, err := s.ensureInstalled(ctx, id); err != nil {
		return wrapIdentity(err, "restore", id)
	}
	res, err := s.Policy.Resolve(ctx, resolution.Request{
		Spec:   pluginspec.Bare(id),
		Locked: locked,
		Dir:    s.Layout.Dir(id),
		Mode:   resolution.Restore,
	})
	if err != nil {
		return err
	}
	if _, err := s.moveTo(ctx, id, res); err != nil {
		return wrapIdentity(err, "restore", id)
	}
	return nil
}

func (s *Session) pruneDisk() error {
	if !s.Lock.Exists() {
		slog.Warn("no lock file, leaving installed plugins untouched", "lockfile", s.Lock.Path())
		return nil
	}

	keep := set.Of[string]()
	for _, id := range s.Lock.Identities() {
		keep.Add(id.Name())
	}
	installed, err := s.Layout.Installed()
	if err != nil {
		return err
	}
	for _, name := range installed {
		if keep.Contains(name) {
			continue
		}
		slog.Info("removing plugin without lock entry", "name", name)
		if err := s.Layout.Remove(name); err != nil {
			return err
		}
		s.report.Removed = append(s.report.Removed, name)
	}
	return nil
}
