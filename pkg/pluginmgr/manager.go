// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pluginmgr runs plugin operations end to end: it loads declarations and the
// lock file, serializes against other pim processes, and persists the lock afterwards.
package pluginmgr

import (
	"context"
	"errors"

	"pim.dev/x/pim/pkg/installdir"
	"pim.dev/x/pim/pkg/lockstore"
	"pim.dev/x/pim/pkg/pimconfig"
	"pim.dev/x/pim/pkg/pluginsync"
	"pim.dev/x/pim/pkg/registry"
	"pim.dev/x/pim/pkg/status"
	"pim.dev/x/pim/pkg/updater"
	"pim.dev/x/pim/pkg/utils"
	"pim.dev/x/pim/pkg/vcs"
)

type Manager struct {
	Config *pimconfig.Config
	VCS    vcs.Adapter
	Layout installdir.Layout
}

func New(config *pimconfig.Config) *Manager {
	return &Manager{
		Config: config,
		VCS:    vcs.NewGoGit(config.NetrcPath),
		Layout: installdir.Layout{Root: config.PluginsDir},
	}
}

func (m *Manager) Registry() (*registry.Registry, error) {
	sources, err := registry.DiscoverSources(m.Config.Specs)
	if err != nil {
		return nil, err
	}
	return registry.Build(sources, registry.Options{StrictDuplicates: m.Config.StrictDuplicates})
}

func (m *Manager) lock() (*lockstore.Store, error) {
	return lockstore.Read(m.Config.LockFilePath)
}

// withSession runs op under the install lock and saves the lock store afterwards, also when op failed
func (m *Manager) withSession(ctx context.Context, needRegistry bool, op func(*pluginsync.Session) error) (pluginsync.Report, error) {
	var report pluginsync.Report
	err := utils.WithInstallLock(ctx, m.Config.InstallLockPath, func() error {
		reg := &registry.Registry{}
		if needRegistry {
			var err error
			if reg, err = m.Registry(); err != nil {
				return err
			}
		}
		lock, err := m.lock()
		if err != nil {
			return err
		}

		s := pluginsync.NewSession(m.VCS, m.Layout, reg, lock)
		opErr := op(s)
		report = s.Report()
		return errors.Join(opErr, lock.Save())
	})
	return report, err
}

// Install clones the named plugins (default: all declared) and their dependencies if missing
func (m *Manager) Install(ctx context.Context, names ...string) (pluginsync.Report, error) {
	return m.withSession(ctx, true, func(s *pluginsync.Session) error {
		ids, err := Resolve(s.Registry, names)
		if err != nil {
			return err
		}
		return s.EnsureInstalled(ctx, ids...)
	})
}

func (m *Manager) Sync(ctx context.Context) (pluginsync.Report, error) {
	return m.withSession(ctx, true, func(s *pluginsync.Session) error {
		return s.Sync(ctx)
	})
}

func (m *Manager) Restore(ctx context.Context) (pluginsync.Report, error) {
	return m.withSession(ctx, false, func(s *pluginsync.Session) error {
		return s.Restore(ctx)
	})
}

// Status describes declared and locked plugins. It takes no install lock.
func (m *Manager) Status(ctx context.Context) (status.Entries, error) {
	reg, err := m.Registry()
	if err != nil {
		return nil, err
	}
	lock, err := m.lock()
	if err != nil {
		return nil, err
	}
	return status.Collect(ctx, m.VCS, m.Layout, reg, lock)
}

type UpdateOptions struct {
	Names []string
	// CheckOnly collects updates without applying any
	CheckOnly bool
	// Decide is asked about every collected update; nil approves all
	Decide func(updater.UpdateInfo) updater.Decision
}

type UpdateResult struct {
	Available []updater.UpdateInfo
	Applied   []updater.UpdateInfo
}

func (m *Manager) Update(ctx context.Context, opts UpdateOptions) (UpdateResult, error) {
	var result UpdateResult
	err := utils.WithInstallLock(ctx, m.Config.InstallLockPath, func() error {
		reg, err := m.Registry()
		if err != nil {
			return err
		}
		ids, err := Resolve(reg, opts.Names)
		if err != nil {
			return err
		}
		lock, err := m.lock()
		if err != nil {
			return err
		}

		engine := updater.New(m.VCS, m.Layout, reg, lock)
		if result.Available, err = engine.Collect(ctx, ids...); err != nil {
			return err
		}
		if opts.CheckOnly || len(result.Available) == 0 {
			return nil
		}

		decide := opts.Decide
		if decide == nil {
			decide = func(updater.UpdateInfo) updater.Decision { return updater.Approve }
		}
		approved := updater.Review(result.Available, decide)
		if err := engine.Apply(ctx, approved); err != nil {
			return err
		}
		result.Applied = approved
		return nil
	})
	return result, err
}
