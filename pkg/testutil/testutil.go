// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"pim.dev/x/pim/pkg/pimconfig"
	"pim.dev/x/pim/pkg/utils"
)

// TestdataPath gives absolute path within the common 'testdata'
func TestdataPath(t *testing.T, path ...string) string {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)

	p := []string{filepath.Dir(file), "testdata"}
	p = append(p, path...)
	return filepath.Join(p...)
}

type CommonSetupSuite struct {
	suite.Suite
}

func (suite *CommonSetupSuite) SetupTest() {
	// set PIM_HOME to a randomized temp dir before every test,
	// otherwise every test would share the default ~/.pim
	tmpHome, deleteFn, err := utils.MkdirTemp("", "")
	suite.Require().NoError(err)
	suite.T().Setenv(pimconfig.HomeEnvVar, tmpHome)
	for _, v := range []string{
		pimconfig.PluginsDirEnvVar,
		pimconfig.LockFileEnvVar,
		pimconfig.SpecsEnvVar,
		pimconfig.StrictDuplicatesEnvVar,
	} {
		// Setenv first so the original value is restored after the test
		suite.T().Setenv(v, "")
		suite.Require().NoError(os.Unsetenv(v))
	}
	suite.T().Setenv(pimconfig.NetrcEnvVar, filepath.Join(tmpHome, ".netrc"))
	suite.T().Cleanup(func() {
		_ = deleteFn()
	})
}

func Context(t *testing.T) context.Context {
	ctx, stopFn := context.WithCancel(context.Background())
	t.Cleanup(stopFn)
	return ctx
}

// RequireGit skips tests that go through go-git's file transport, which execs git-upload-pack
func RequireGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// Upstream is a real repository on local disk that plugins can be cloned from
type Upstream struct {
	t    *testing.T
	Path string
	repo *git.Repository
	seq  int
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewUpstream initializes a repository with a single commit on master
func NewUpstream(t *testing.T, name string) *Upstream {
	RequireGit(t)

	path := filepath.Join(t.TempDir(), name)
	repo, err := git.PlainInit(path, false)
	require.NoError(t, err)

	u := &Upstream{t: t, Path: path, repo: repo}
	u.Commit("initial commit")
	return u
}

func (u *Upstream) signature() *object.Signature {
	return &object.Signature{
		Name:  "pim",
		Email: "pim@example.com",
		When:  epoch.Add(time.Duration(u.seq) * time.Minute),
	}
}

// Commit adds a commit on the currently checked out branch and returns its id
func (u *Upstream) Commit(subject string) string {
	u.seq++
	w, err := u.repo.Worktree()
	require.NoError(u.t, err)

	file := filepath.Join(u.Path, "CHANGELOG")
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(u.t, err)
	_, err = f.WriteString(strconv.Itoa(u.seq) + " " + subject + "\n")
	require.NoError(u.t, err)
	require.NoError(u.t, f.Close())

	_, err = w.Add("CHANGELOG")
	require.NoError(u.t, err)
	h, err := w.Commit(subject, &git.CommitOptions{Author: u.signature(), Committer: u.signature()})
	require.NoError(u.t, err)
	return h.String()
}

// Tag creates a lightweight tag, or an annotated one when message is not empty
func (u *Upstream) Tag(name, sha, message string) {
	var opts *git.CreateTagOptions
	if message != "" {
		opts = &git.CreateTagOptions{Message: message, Tagger: u.signature()}
	}
	_, err := u.repo.CreateTag(name, plumbing.NewHash(sha), opts)
	require.NoError(u.t, err)
}

func (u *Upstream) DeleteTag(name string) {
	require.NoError(u.t, u.repo.DeleteTag(name))
}

// Switch checks out branch, creating it from the current HEAD if needed
func (u *Upstream) Switch(branch string) {
	w, err := u.repo.Worktree()
	require.NoError(u.t, err)

	ref := plumbing.NewBranchReferenceName(branch)
	_, err = u.repo.Reference(ref, true)
	require.NoError(u.t, w.Checkout(&git.CheckoutOptions{Branch: ref, Create: err != nil}))
}

// RenameDefaultBranch moves master to name, for repositories whose default branch is not master
func (u *Upstream) RenameDefaultBranch(name string) {
	head, err := u.repo.Head()
	require.NoError(u.t, err)
	u.Switch(name)
	require.NoError(u.t, u.repo.Storer.RemoveReference(head.Name()))
}

var OS = func() string {
	if runtime.GOOS == "windows" {
		return "windows"
	}
	return "unix"
}()
