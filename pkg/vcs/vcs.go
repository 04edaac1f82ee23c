// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package vcs is the version control boundary: every clone, fetch, checkout and
// history query the plugin manager performs goes through an Adapter.
package vcs

import (
	"context"
	"errors"
)

var (
	ErrNotRepository  = errors.New("not a repository")
	ErrRefNotFound    = errors.New("ref not found")
	ErrCloneFailed    = errors.New("clone failed")
	ErrFetchFailed    = errors.New("fetch failed")
	ErrCheckoutFailed = errors.New("checkout failed")
)

// RevHead is the revision spec naming the current checkout
const RevHead = "HEAD"

type Adapter interface {
	// Clone creates a working copy of source at dest
	Clone(ctx context.Context, source, dest string) error

	// Head resolves rev (HEAD, HEAD~N, a tag, a branch or a commit id) to a full commit id
	Head(ctx context.Context, path, rev string) (string, error)

	// Checkout moves the working copy to ref. A branch is checked out as a local branch
	// fast-forwarded to the remote's; tags and commit ids are checked out detached.
	Checkout(ctx context.Context, path, ref string) error

	// Fetch updates remote branches and all tags
	Fetch(ctx context.Context, path string) error

	Tags(ctx context.Context, path string) ([]string, error)

	// RemoteHead returns the commit the remote's branch pointed at as of the last fetch
	RemoteHead(ctx context.Context, path, branch string) (string, error)

	// LogRange summarizes the commits reachable from to but not from, newest first, one "sha subject" line each
	LogRange(ctx context.Context, path, from, to string) ([]string, error)

	// TagsPointingAt returns the tags that resolve to exactly sha
	TagsPointingAt(ctx context.Context, path, sha string) ([]string, error)
}
