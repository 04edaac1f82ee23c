// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"pim.dev/x/pim/pkg/utils"
)

const DefaultRemoteName = "origin"

// GoGit implements Adapter on top of go-git, without shelling out to a git binary
// for anything but local file transports.
type GoGit struct {
	Auth       AuthFunc
	RemoteName string
}

var _ Adapter = (*GoGit)(nil)

func NewGoGit(netrcPath string) *GoGit {
	return &GoGit{
		Auth:       NetrcAuth(netrcPath),
		RemoteName: DefaultRemoteName,
	}
}

func (g *GoGit) remoteName() string {
	if g.RemoteName == "" {
		return DefaultRemoteName
	}
	return g.RemoteName
}

func (g *GoGit) Clone(ctx context.Context, source, dest string) error {
	slog.Debug("cloning", "source", source, "path", dest)
	opts := &git.CloneOptions{
		URL:        source,
		RemoteName: g.remoteName(),
		Tags:       git.AllTags,
	}
	if g.Auth != nil {
		opts.Auth = g.Auth(source)
	}

	if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
		// a half-written clone would otherwise count as installed
		_ = os.RemoveAll(dest)
		return fmt.Errorf("%w: %s into %s: %w", ErrCloneFailed, source, dest, err)
	}
	return nil
}

func (g *GoGit) Head(ctx context.Context, path, rev string) (string, error) {
	r, err := open(ctx, path)
	if err != nil {
		return "", err
	}
	if rev == "" {
		rev = RevHead
	}
	h, err := resolve(r, rev)
	if err != nil {
		return "", fmt.Errorf("%w: %s in %s", err, rev, path)
	}
	return h.String(), nil
}

func (g *GoGit) Checkout(ctx context.Context, path, ref string) error {
	r, err := open(ctx, path)
	if err != nil {
		return err
	}
	w, err := r.Worktree()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}

	opts, err := g.checkoutOptions(r, ref)
	if err != nil {
		return fmt.Errorf("%w: %s in %s", err, ref, path)
	}

	slog.Debug("checking out", "path", path, "ref", ref)
	if err := w.Checkout(opts); err != nil {
		return fmt.Errorf("%w: %s in %s: %w", ErrCheckoutFailed, ref, path, err)
	}
	return nil
}

// checkoutOptions prefers branches: a remote branch is materialized (or fast-forwarded)
// as the local branch of the same name. Anything else is checked out detached.
func (g *GoGit) checkoutOptions(r *git.Repository, ref string) (*git.CheckoutOptions, error) {
	if !strings.HasPrefix(ref, "refs/") && !plumbing.IsHash(ref) {
		local := plumbing.NewBranchReferenceName(ref)
		remote, remoteErr := r.Reference(plumbing.NewRemoteReferenceName(g.remoteName(), ref), true)
		_, localErr := r.Reference(local, true)

		switch {
		case remoteErr == nil:
			if err := r.Storer.SetReference(plumbing.NewHashReference(local, remote.Hash())); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
			}
			return &git.CheckoutOptions{Branch: local, Force: true}, nil
		case localErr == nil:
			return &git.CheckoutOptions{Branch: local, Force: true}, nil
		}
	}

	h, err := resolve(r, ref)
	if err != nil {
		return nil, err
	}
	return &git.CheckoutOptions{Hash: *h, Force: true}, nil
}

func (g *GoGit) Fetch(ctx context.Context, path string) error {
	r, err := open(ctx, path)
	if err != nil {
		return err
	}
	opts := &git.FetchOptions{
		RemoteName: g.remoteName(),
		Tags:       git.AllTags,
		Force:      true,
	}
	if remote, err := r.Remote(g.remoteName()); err == nil && g.Auth != nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			opts.Auth = g.Auth(urls[0])
		}
	}

	slog.Debug("fetching", "path", path)
	err = r.FetchContext(ctx, opts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("%w: %s: %w", ErrFetchFailed, path, err)
	}
	return nil
}

func (g *GoGit) Tags(ctx context.Context, path string) ([]string, error) {
	r, err := open(ctx, path)
	if err != nil {
		return nil, err
	}
	return tagNames(r, func(*plumbing.Reference) bool { return true })
}

func (g *GoGit) RemoteHead(ctx context.Context, path, branch string) (string, error) {
	r, err := open(ctx, path)
	if err != nil {
		return "", err
	}
	ref, err := r.Reference(plumbing.NewRemoteReferenceName(g.remoteName(), branch), true)
	if err != nil {
		return "", fmt.Errorf("%w: %s/%s in %s", ErrRefNotFound, g.remoteName(), branch, path)
	}
	return ref.Hash().String(), nil
}

func (g *GoGit) LogRange(ctx context.Context, path, from, to string) ([]string, error) {
	r, err := open(ctx, path)
	if err != nil {
		return nil, err
	}
	toCommit, err := commit(r, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %s in %s", err, to, path)
	}

	exclude := map[plumbing.Hash]bool{}
	if from != "" {
		fromCommit, err := commit(r, from)
		if err != nil {
			return nil, fmt.Errorf("%w: %s in %s", err, from, path)
		}
		err = object.NewCommitPreorderIter(fromCommit, nil, nil).ForEach(func(c *object.Commit) error {
			exclude[c.Hash] = true
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	var lines []string
	err = object.NewCommitIterCTime(toCommit, exclude, nil).ForEach(func(c *object.Commit) error {
		if exclude[c.Hash] {
			return nil
		}
		lines = append(lines, utils.ShortRevision(c.Hash.String())+" "+subject(c.Message))
		return nil
	})
	return lines, err
}

func (g *GoGit) TagsPointingAt(ctx context.Context, path, sha string) ([]string, error) {
	r, err := open(ctx, path)
	if err != nil {
		return nil, err
	}
	return tagNames(r, func(ref *plumbing.Reference) bool {
		h, err := r.ResolveRevision(plumbing.Revision(ref.Name().String()))
		return err == nil && h.String() == sha
	})
}

func open(ctx context.Context, path string) (*git.Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := git.PlainOpen(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrNotRepository, path, err)
	}
	return r, nil
}

func resolve(r *git.Repository, rev string) (*plumbing.Hash, error) {
	h, err := r.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefNotFound, err)
	}
	return h, nil
}

func commit(r *git.Repository, rev string) (*object.Commit, error) {
	h, err := resolve(r, rev)
	if err != nil {
		return nil, err
	}
	c, err := r.CommitObject(*h)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefNotFound, err)
	}
	return c, nil
}

func tagNames(r *git.Repository, keep func(*plumbing.Reference) bool) ([]string, error) {
	iter, err := r.Tags()
	if err != nil {
		return nil, err
	}
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if keep(ref) {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

func subject(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return strings.TrimSpace(line)
}
