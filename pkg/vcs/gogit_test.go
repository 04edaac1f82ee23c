package vcs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pim.dev/x/pim/pkg/testutil"
	"pim.dev/x/pim/pkg/vcs"
)

func cloneUpstream(t *testing.T, u *testutil.Upstream) (*vcs.GoGit, string) {
	g := vcs.NewGoGit("")
	dest := filepath.Join(t.TempDir(), "plugin")
	require.NoError(t, g.Clone(testutil.Context(t), u.Path, dest))
	return g, dest
}

func TestGoGitCloneAndHead(t *testing.T) {
	ctx := testutil.Context(t)
	u := testutil.NewUpstream(t, "upstream")
	second := u.Commit("second")

	g, dest := cloneUpstream(t, u)

	head, err := g.Head(ctx, dest, "")
	require.NoError(t, err)
	assert.Equal(t, second, head)

	parent, err := g.Head(ctx, dest, "HEAD~1")
	require.NoError(t, err)
	assert.NotEqual(t, second, parent)

	_, err = g.Head(ctx, dest, "no-such-ref")
	assert.True(t, errors.Is(err, vcs.ErrRefNotFound))

	_, err = g.Head(ctx, t.TempDir(), "")
	assert.True(t, errors.Is(err, vcs.ErrNotRepository))
}

func TestGoGitCloneFailureLeavesNothing(t *testing.T) {
	testutil.RequireGit(t)
	g := vcs.NewGoGit("")
	dest := filepath.Join(t.TempDir(), "plugin")

	err := g.Clone(testutil.Context(t), filepath.Join(t.TempDir(), "missing"), dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, vcs.ErrCloneFailed))

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGoGitTagsAndCheckout(t *testing.T) {
	ctx := testutil.Context(t)
	u := testutil.NewUpstream(t, "upstream")
	v1 := u.Commit("feat: one")
	u.Tag("v1.0.0", v1, "")
	v11 := u.Commit("feat: two")
	u.Tag("v1.1.0", v11, "release 1.1.0")
	u.Tag("nightly", v11, "")
	u.Commit("wip")

	g, dest := cloneUpstream(t, u)

	tags, err := g.Tags(ctx, dest)
	require.NoError(t, err)
	assert.Equal(t, []string{"nightly", "v1.0.0", "v1.1.0"}, tags)

	require.NoError(t, g.Checkout(ctx, dest, "refs/tags/v1.1.0"))
	head, err := g.Head(ctx, dest, "")
	require.NoError(t, err)
	assert.Equal(t, v11, head)

	pointing, err := g.TagsPointingAt(ctx, dest, v11)
	require.NoError(t, err)
	assert.Equal(t, []string{"nightly", "v1.1.0"}, pointing)

	require.NoError(t, g.Checkout(ctx, dest, v1))
	head, err = g.Head(ctx, dest, "")
	require.NoError(t, err)
	assert.Equal(t, v1, head)

	err = g.Checkout(ctx, dest, "v9.9.9")
	assert.True(t, errors.Is(err, vcs.ErrRefNotFound))
}

func TestGoGitFetchAndBranchCheckout(t *testing.T) {
	ctx := testutil.Context(t)
	u := testutil.NewUpstream(t, "upstream")
	u.Switch("dev")
	devOne := u.Commit("dev one")
	u.Switch("master")

	g, dest := cloneUpstream(t, u)

	require.NoError(t, g.Checkout(ctx, dest, "dev"))
	head, err := g.Head(ctx, dest, "")
	require.NoError(t, err)
	assert.Equal(t, devOne, head)

	u.Switch("dev")
	devTwo := u.Commit("dev two")
	u.Tag("v2.0.0", devTwo, "")
	u.Switch("master")

	require.NoError(t, g.Fetch(ctx, dest))
	require.NoError(t, g.Fetch(ctx, dest))

	remoteHead, err := g.RemoteHead(ctx, dest, "dev")
	require.NoError(t, err)
	assert.Equal(t, devTwo, remoteHead)

	_, err = g.RemoteHead(ctx, dest, "main")
	assert.True(t, errors.Is(err, vcs.ErrRefNotFound))

	// the local branch is fast-forwarded to the fetched remote branch
	require.NoError(t, g.Checkout(ctx, dest, "dev"))
	head, err = g.Head(ctx, dest, "")
	require.NoError(t, err)
	assert.Equal(t, devTwo, head)

	tags, err := g.Tags(ctx, dest)
	require.NoError(t, err)
	assert.Contains(t, tags, "v2.0.0")
}

func TestGoGitLogRange(t *testing.T) {
	ctx := testutil.Context(t)
	u := testutil.NewUpstream(t, "upstream")
	from := u.Commit("one")
	u.Commit("two")
	to := u.Commit("three\n\nlonger body")

	g, dest := cloneUpstream(t, u)

	lines, err := g.LogRange(ctx, dest, from, to)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, to[:7]+" three", lines[0])
	assert.Contains(t, lines[1], " two")

	lines, err = g.LogRange(ctx, dest, to, from)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
