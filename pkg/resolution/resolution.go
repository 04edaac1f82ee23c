// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resolution decides which revision a plugin must be at.
//
// Decision order, highest priority first: a commit pin, a tag pin, a branch pin,
// the locked revision (install and sync only), and finally the newest release tag
// or the remote's default branch head. Install skips that last step and keeps
// whatever a fresh clone landed on.
package resolution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.trai.ch/zerr"
	"pim.dev/x/pim/pkg/pluginspec"
	"pim.dev/x/pim/pkg/semvertag"
	"pim.dev/x/pim/pkg/vcs"
)

var (
	ErrNoDefaultBranch = errors.New("no release tag and no master or main branch")
	ErrNotLocked       = errors.New("no lock entry")
)

// DefaultBranches are probed in order when a plugin has no release tags
var DefaultBranches = []string{"master", "main"}

type Mode int

const (
	Install Mode = iota
	Sync
	Restore
	Update
)

func (m Mode) String() string {
	switch m {
	case Install:
		return "install"
	case Sync:
		return "sync"
	case Restore:
		return "restore"
	case Update:
		return "update"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Origin names the rule that produced a Resolution
type Origin string

const (
	FromCommitPin     Origin = "commit pin"
	FromTagPin        Origin = "tag pin"
	FromBranchPin     Origin = "branch pin"
	FromLock          Origin = "lock"
	FromReleaseTag    Origin = "release tag"
	FromDefaultBranch Origin = "default branch"
	FromCurrentHead   Origin = "current head"
)

type Resolution struct {
	// Revision is the full commit id the plugin must end up at
	Revision string
	// Ref is what to check out to get there
	Ref    string
	Origin Origin
	// Tag is set when the revision was picked through a tag
	Tag string
}

type Request struct {
	Spec   *pluginspec.Spec
	Locked string
	Dir    string
	Mode   Mode
	// Fresh marks a copy that was just cloned and needs no fetch
	Fresh bool
}

type Policy struct {
	VCS vcs.Adapter
}

func New(adapter vcs.Adapter) *Policy {
	return &Policy{VCS: adapter}
}

// Resolve picks the revision for req. Only tag and branch pins and the dynamic step
// touch the remote; the plugin's checkout is never moved.
func (p *Policy) Resolve(ctx context.Context, req Request) (Resolution, error) {
	res, err := p.resolve(ctx, req)
	if err != nil {
		return Resolution{}, zerr.With(zerr.Wrap(err, "resolve "+req.Mode.String()), "identity", req.Spec.Identity)
	}
	slog.Debug("resolved", "identity", req.Spec.Identity, "mode", req.Mode, "origin", res.Origin, "revision", res.Revision)
	return res, nil
}

func (p *Policy) resolve(ctx context.Context, req Request) (Resolution, error) {
	pin := req.Spec.Pin
	switch pin.Kind() {
	case pluginspec.CommitPin:
		return Resolution{Revision: pin.Value(), Ref: pin.Value(), Origin: FromCommitPin}, nil
	case pluginspec.TagPin:
		return p.tag(ctx, req, pin.Value())
	case pluginspec.BranchPin:
		return p.branch(ctx, req, pin.Value())
	}

	switch req.Mode {
	case Restore:
		if req.Locked == "" {
			return Resolution{}, ErrNotLocked
		}
		return Resolution{Revision: req.Locked, Ref: req.Locked, Origin: FromLock}, nil
	case Update:
		if !req.Fresh {
			if err := p.VCS.Fetch(ctx, req.Dir); err != nil {
				return Resolution{}, err
			}
		}
		return p.Latest(ctx, req.Dir)
	}

	if req.Locked != "" {
		return Resolution{Revision: req.Locked, Ref: req.Locked, Origin: FromLock}, nil
	}

	if req.Mode == Install {
		head, err := p.VCS.Head(ctx, req.Dir, vcs.RevHead)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Revision: head, Origin: FromCurrentHead}, nil
	}

	if !req.Fresh {
		if err := p.VCS.Fetch(ctx, req.Dir); err != nil {
			return Resolution{}, err
		}
	}
	return p.Latest(ctx, req.Dir)
}

func tagRef(name string) string {
	return "refs/tags/" + name
}

func (p *Policy) tag(ctx context.Context, req Request, name string) (Resolution, error) {
	rev, err := p.VCS.Head(ctx, req.Dir, tagRef(name))
	if errors.Is(err, vcs.ErrRefNotFound) && !req.Fresh {
		// the tag may be newer than the last fetch
		if err := p.VCS.Fetch(ctx, req.Dir); err != nil {
			return Resolution{}, err
		}
		rev, err = p.VCS.Head(ctx, req.Dir, tagRef(name))
	}
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Revision: rev, Ref: tagRef(name), Origin: FromTagPin, Tag: name}, nil
}

func (p *Policy) branch(ctx context.Context, req Request, name string) (Resolution, error) {
	if !req.Fresh && req.Mode != Install {
		if err := p.VCS.Fetch(ctx, req.Dir); err != nil {
			return Resolution{}, err
		}
	}
	rev, err := p.VCS.RemoteHead(ctx, req.Dir, name)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Revision: rev, Ref: name, Origin: FromBranchPin}, nil
}

// Latest resolves from what the copy at dir last fetched: the greatest release tag,
// else the head of the first default branch the remote has.
func (p *Policy) Latest(ctx context.Context, dir string) (Resolution, error) {
	tags, err := p.VCS.Tags(ctx, dir)
	if err != nil {
		return Resolution{}, err
	}
	if tag, ok := semvertag.Latest(tags); ok {
		rev, err := p.VCS.Head(ctx, dir, tagRef(tag))
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Revision: rev, Ref: tagRef(tag), Origin: FromReleaseTag, Tag: tag}, nil
	}

	for _, b := range DefaultBranches {
		rev, err := p.VCS.RemoteHead(ctx, dir, b)
		if errors.Is(err, vcs.ErrRefNotFound) {
			continue
		}
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Revision: rev, Ref: b, Origin: FromDefaultBranch}, nil
	}
	return Resolution{}, ErrNoDefaultBranch
}
