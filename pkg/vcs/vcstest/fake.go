// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package vcstest provides an in-memory vcs.Adapter for engine tests.
package vcstest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"pim.dev/x/pim/pkg/utils"
	"pim.dev/x/pim/pkg/vcs"
)

type commit struct {
	sha     string
	parent  string
	subject string
}

// Remote is an upstream repository living in memory
type Remote struct {
	mu            sync.Mutex
	source        string
	seq           int
	defaultBranch string
	commits       map[string]commit
	branches      map[string]string
	tags          map[string]string
}

// Commit adds a commit on top of branch (created from the default branch if new) and returns its id
func (r *Remote) Commit(branch, subject string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent, ok := r.branches[branch]
	if !ok {
		parent = r.branches[r.defaultBranch]
	}
	r.seq++
	sum := sha1.Sum([]byte(r.source + "\x00" + strconv.Itoa(r.seq) + "\x00" + subject))
	sha := hex.EncodeToString(sum[:])

	r.commits[sha] = commit{sha: sha, parent: parent, subject: subject}
	r.branches[branch] = sha
	return sha
}

// Tag points name at sha, moving it if it already exists
func (r *Remote) Tag(name, sha string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[name] = sha
}

func (r *Remote) Untag(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tags, name)
}

// Branch returns the head of branch
func (r *Remote) Branch(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.branches[name]
}

// DeleteBranch removes a branch from the remote
func (r *Remote) DeleteBranch(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.branches, name)
}

type clone struct {
	remote   *Remote
	commits  map[string]commit
	branches map[string]string
	tags     map[string]string
	head     string
}

func (c *clone) sync() {
	c.remote.mu.Lock()
	defer c.remote.mu.Unlock()
	c.commits = maps.Clone(c.remote.commits)
	c.branches = maps.Clone(c.remote.branches)
	c.tags = maps.Clone(c.remote.tags)
}

// Call records one mutating adapter invocation
type Call struct {
	Op   string
	Path string
	Ref  string
}

// Fake implements vcs.Adapter against in-memory remotes. Clones are real directories
// (with an empty .git inside) so install-dir bookkeeping sees them.
type Fake struct {
	mu      sync.Mutex
	remotes map[string]*Remote
	clones  map[string]*clone
	calls   []Call

	// Errors forces the named operation ("clone", "fetch", "checkout") to fail
	Errors map[string]error
}

var _ vcs.Adapter = (*Fake)(nil)

func NewFake() *Fake {
	return &Fake{
		remotes: map[string]*Remote{},
		clones:  map[string]*clone{},
		Errors:  map[string]error{},
	}
}

// NewRemote registers an upstream for source with one initial commit on defaultBranch
func (f *Fake) NewRemote(source, defaultBranch string) *Remote {
	r := &Remote{
		source:        source,
		defaultBranch: defaultBranch,
		commits:       map[string]commit{},
		branches:      map[string]string{},
		tags:          map[string]string{},
	}
	r.Commit(defaultBranch, "initial commit")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.remotes[source] = r
	return r
}

func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Count returns how many times op was invoked
func (f *Fake) Count(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (f *Fake) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *Fake) record(op, path, ref string) error {
	f.calls = append(f.calls, Call{Op: op, Path: path, Ref: ref})
	return f.Errors[op]
}

func (f *Fake) get(path string) (*clone, error) {
	c, ok := f.clones[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", vcs.ErrNotRepository, path)
	}
	if _, err := os.Stat(filepath.Join(path, ".git")); err != nil {
		delete(f.clones, path)
		return nil, fmt.Errorf("%w: %s", vcs.ErrNotRepository, path)
	}
	return c, nil
}

func (f *Fake) Clone(_ context.Context, source, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("clone", dest, source); err != nil {
		return fmt.Errorf("%w: %w", vcs.ErrCloneFailed, err)
	}
	r, ok := f.remotes[source]
	if !ok {
		return fmt.Errorf("%w: %s: repository not found", vcs.ErrCloneFailed, source)
	}
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%w: %s already exists", vcs.ErrCloneFailed, dest)
	}
	if err := os.MkdirAll(filepath.Join(dest, ".git"), 0o755); err != nil {
		return fmt.Errorf("%w: %w", vcs.ErrCloneFailed, err)
	}

	c := &clone{remote: r}
	c.sync()
	c.head = c.branches[r.defaultBranch]
	f.clones[dest] = c
	return nil
}

func (f *Fake) Head(_ context.Context, path, rev string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, err := f.get(path)
	if err != nil {
		return "", err
	}
	if rev == "" {
		rev = vcs.RevHead
	}
	return c.resolve(rev)
}

func (c *clone) resolve(rev string) (string, error) {
	notFound := fmt.Errorf("%w: %s", vcs.ErrRefNotFound, rev)

	if base, n, ok := strings.Cut(rev, "~"); ok {
		sha, err := c.resolve(base)
		if err != nil {
			return "", err
		}
		steps, err := strconv.Atoi(n)
		if err != nil {
			return "", notFound
		}
		for range steps {
			sha = c.commits[sha].parent
			if sha == "" {
				return "", notFound
			}
		}
		return sha, nil
	}

	switch {
	case rev == vcs.RevHead:
		return c.head, nil
	case strings.HasPrefix(rev, "refs/tags/"):
		if sha, ok := c.tags[strings.TrimPrefix(rev, "refs/tags/")]; ok {
			return sha, nil
		}
	case strings.HasPrefix(rev, "origin/"):
		if sha, ok := c.branches[strings.TrimPrefix(rev, "origin/")]; ok {
			return sha, nil
		}
	default:
		if sha, ok := c.branches[rev]; ok {
			return sha, nil
		}
		if sha, ok := c.tags[rev]; ok {
			return sha, nil
		}
		if _, ok := c.commits[rev]; ok {
			return rev, nil
		}
	}
	return "", notFound
}

func (f *Fake) Checkout(_ context.Context, path, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, err := f.get(path)
	if err != nil {
		return err
	}
	if err := f.record("checkout", path, ref); err != nil {
		return fmt.Errorf("%w: %w", vcs.ErrCheckoutFailed, err)
	}
	sha, err := c.resolve(ref)
	if err != nil {
		return err
	}
	c.head = sha
	return nil
}

func (f *Fake) Fetch(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, err := f.get(path)
	if err != nil {
		return err
	}
	if err := f.record("fetch", path, ""); err != nil {
		return fmt.Errorf("%w: %w", vcs.ErrFetchFailed, err)
	}
	c.sync()
	return nil
}

func (f *Fake) Tags(_ context.Context, path string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, err := f.get(path)
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(c.tags)), nil
}

func (f *Fake) RemoteHead(_ context.Context, path, branch string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, err := f.get(path)
	if err != nil {
		return "", err
	}
	sha, ok := c.branches[branch]
	if !ok {
		return "", fmt.Errorf("%w: origin/%s", vcs.ErrRefNotFound, branch)
	}
	return sha, nil
}

func (f *Fake) LogRange(_ context.Context, path, from, to string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, err := f.get(path)
	if err != nil {
		return nil, err
	}
	end, err := c.resolve(to)
	if err != nil {
		return nil, err
	}

	exclude := map[string]bool{}
	if from != "" {
		start, err := c.resolve(from)
		if err != nil {
			return nil, err
		}
		for sha := start; sha != ""; sha = c.commits[sha].parent {
			exclude[sha] = true
		}
	}

	var lines []string
	for sha := end; sha != "" && !exclude[sha]; sha = c.commits[sha].parent {
		lines = append(lines, utils.ShortRevision(sha)+" "+c.commits[sha].subject)
	}
	return lines, nil
}

func (f *Fake) TagsPointingAt(_ context.Context, path, sha string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, err := f.get(path)
	if err != nil {
		return nil, err
	}
	var names []string
	for name, target := range c.tags {
		if target == sha {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}
