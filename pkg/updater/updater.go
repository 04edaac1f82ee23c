// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package updater

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"go.trai.ch/zerr"
	"pim.dev/x/pim/pkg/installdir"
	"pim.dev/x/pim/pkg/lockstore"
	"pim.dev/x/pim/pkg/pluginspec"
	"pim.dev/x/pim/pkg/registry"
	"pim.dev/x/pim/pkg/resolution"
	"pim.dev/x/pim/pkg/semvertag"
	"pim.dev/x/pim/pkg/utils"
	"pim.dev/x/pim/pkg/vcs"
)

// UpdateInfo describes a proposed move of one plugin to a newer revision
type UpdateInfo struct {
	Identity    pluginspec.Identity `json:"identity"`
	Name        string              `json:"name"`
	OldRevision string              `json:"oldRevision"`
	NewRevision string              `json:"newRevision"`
	OldTag      string              `json:"oldTag,omitempty"`
	NewTag      string              `json:"newTag,omitempty"`
	Commits     []string            `json:"commits"`
	IsMajorBump bool                `json:"isMajorBump"`

	// ref to check out to reach NewRevision
	ref string
}

type Decision int

const (
	Approve Decision = iota
	Skip
	Abort
)

type Engine struct {
	VCS      vcs.Adapter
	Layout   installdir.Layout
	Registry *registry.Registry
	Lock     *lockstore.Store
	Policy   *resolution.Policy
}

func New(adapter vcs.Adapter, layout installdir.Layout, reg *registry.Registry, lock *lockstore.Store) *Engine {
	return &Engine{
		VCS:      adapter,
		Layout:   layout,
		Registry: reg,
		Lock:     lock,
		Policy:   resolution.New(adapter),
	}
}

// Collect proposes updates for unpinned, locked and installed plugins, restricted to
// ids when given. Plugins whose newest revision adds no commits are left out.
func (e *Engine) Collect(ctx context.Context, ids ...pluginspec.Identity) ([]UpdateInfo, error) {
	if len(ids) == 0 {
		ids = e.Registry.Identities()
	}

	var infos []UpdateInfo
	for _, id := range ids {
		info, ok, err := e.collectOne(ctx, id)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "collect updates for "+id.Name()), "identity", id)
		}
		if ok {
			infos = append(infos, info)
		}
	}
	return infos, nil
}

func (e *Engine) collectOne(ctx context.Context, id pluginspec.Identity) (UpdateInfo, bool, error) {
	spec, ok := e.Registry.Get(id)
	if !ok || spec.Pin.IsSet() {
		return UpdateInfo{}, false, nil
	}
	locked, ok := e.Lock.Get(id)
	if !ok {
		return UpdateInfo{}, false, nil
	}
	if installed, err := e.Layout.IsInstalled(id); err != nil || !installed {
		return UpdateInfo{}, false, err
	}

	dir := e.Layout.Dir(id)
	res, err := e.Policy.Resolve(ctx, resolution.Request{Spec: spec, Locked: locked, Dir: dir, Mode: resolution.Update})
	if err != nil {
		return UpdateInfo{}, false, err
	}
	if res.Revision == locked {
		return UpdateInfo{}, false, nil
	}

	commits, err := e.VCS.LogRange(ctx, dir, locked, res.Revision)
	if err != nil {
		return UpdateInfo{}, false, err
	}
	if len(commits) == 0 {
		slog.Debug("revision changed without new commits, skipping", "identity", id, "old", locked, "new", res.Revision)
		return UpdateInfo{}, false, nil
	}

	oldTag, err := e.releaseTagAt(ctx, dir, locked)
	if err != nil {
		return UpdateInfo{}, false, err
	}
	newTag, err := e.releaseTagAt(ctx, dir, res.Revision)
	if err != nil {
		return UpdateInfo{}, false, err
	}

	return UpdateInfo{
		Identity:    id,
		Name:        id.Name(),
		OldRevision: locked,
		NewRevision: res.Revision,
		OldTag:      oldTag,
		NewTag:      newTag,
		Commits:     commits,
		IsMajorBump: semvertag.IsMajorBump(oldTag, newTag),
		ref:         res.Ref,
	}, true, nil
}

func (e *Engine) releaseTagAt(ctx context.Context, dir, sha string) (string, error) {
	tags, err := e.VCS.TagsPointingAt(ctx, dir, sha)
	if err != nil {
		return "", err
	}
	tag, _ := semvertag.First(tags)
	return tag, nil
}

// Review asks decide about each update in turn and returns the approved ones.
// Abort keeps what was approved so far and drops the rest undecided.
func Review(infos []UpdateInfo, decide func(UpdateInfo) Decision) []UpdateInfo {
	var approved []UpdateInfo
	for _, info := range infos {
		switch decide(info) {
		case Approve:
			approved = append(approved, info)
		case Abort:
			return approved
		}
	}
	return approved
}

// Apply writes all approved revisions to the lock file in one go, then checks each plugin out.
// A failed checkout leaves the lock ahead of disk until the next sync.
func (e *Engine) Apply(ctx context.Context, approved []UpdateInfo) error {
	if len(approved) == 0 {
		return nil
	}
	for _, info := range approved {
		e.Lock.Set(info.Identity, info.NewRevision)
	}
	if err := e.Lock.Save(); err != nil {
		return err
	}

	for _, info := range approved {
		ref := lo.Ternary(info.ref != "", info.ref, info.NewRevision)
		slog.Info("updating plugin", "identity", info.Identity, "from", utils.ShortRevision(info.OldRevision), "to", utils.ShortRevision(info.NewRevision))
		if err := e.checkout(ctx, info, ref); err != nil {
			return zerr.With(zerr.Wrap(err, "apply update to "+info.Name), "identity", info.Identity)
		}
	}
	return nil
}

func (e *Engine) checkout(ctx context.Context, info UpdateInfo, ref string) error {
	dir := e.Layout.Dir(info.Identity)
	if err := e.VCS.Checkout(ctx, dir, ref); err != nil {
		return err
	}
	head, err := e.VCS.Head(ctx, dir, vcs.RevHead)
	if err != nil {
		return err
	}
	if head != info.NewRevision {
		return fmt.Errorf("%s is at %s after checking out %s", dir, head, ref)
	}
	return nil
}
