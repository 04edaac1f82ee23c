package updater

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pim.dev/x/pim/pkg/installdir"
	"pim.dev/x/pim/pkg/lockstore"
	"pim.dev/x/pim/pkg/pluginspec"
	"pim.dev/x/pim/pkg/registry"
	"pim.dev/x/pim/pkg/testutil"
	"pim.dev/x/pim/pkg/vcs"
	"pim.dev/x/pim/pkg/vcs/vcstest"
)

const (
	idA pluginspec.Identity = "https://example.com/x/a"
	idB pluginspec.Identity = "https://example.com/x/b"
)

type env struct {
	t      *testing.T
	fake   *vcstest.Fake
	layout installdir.Layout
	lock   *lockstore.Store
}

func newEnv(t *testing.T) *env {
	root := t.TempDir()
	return &env{
		t:      t,
		fake:   vcstest.NewFake(),
		layout: installdir.Layout{Root: filepath.Join(root, "plugins")},
		lock:   lockstore.New(filepath.Join(root, "pim-lock.json")),
	}
}

// installAt clones id and locks it at rev
func (e *env) installAt(id pluginspec.Identity, rev string) {
	ctx := testutil.Context(e.t)
	require.NoError(e.t, e.fake.Clone(ctx, string(id), e.layout.Dir(id)))
	require.NoError(e.t, e.fake.Checkout(ctx, e.layout.Dir(id), rev))
	e.lock.Set(id, rev)
}

func (e *env) engine(specs ...*pluginspec.Spec) *Engine {
	reg, err := registry.Build([]registry.Source{registry.StaticSource{SourceName: "test", Declared: specs}}, registry.Options{})
	require.NoError(e.t, err)
	return New(e.fake, e.layout, reg, e.lock)
}

func bare(ids ...pluginspec.Identity) []*pluginspec.Spec {
	var specs []*pluginspec.Spec
	for _, id := range ids {
		specs = append(specs, pluginspec.Bare(id))
	}
	return specs
}

func TestCollectMinorUpdate(t *testing.T) {
	e := newEnv(t)
	remote := e.fake.NewRemote(string(idA), "master")
	v100 := remote.Commit("master", "feat: first release")
	remote.Tag("v1.0.0", v100)
	e.installAt(idA, v100)

	v110 := remote.Commit("master", "feat: second release")
	remote.Tag("v1.1.0", v110)

	infos, err := e.engine(bare(idA)...).Collect(testutil.Context(t))
	require.NoError(t, err)
	require.Len(t, infos, 1)

	info := infos[0]
	assert.Equal(t, "a", info.Name)
	assert.Equal(t, v100, info.OldRevision)
	assert.Equal(t, v110, info.NewRevision)
	assert.Equal(t, "v1.0.0", info.OldTag)
	assert.Equal(t, "v1.1.0", info.NewTag)
	assert.False(t, info.IsMajorBump)
	assert.Equal(t, []string{v110[:7] + " feat: second release"}, info.Commits)
}

func TestCollectMajorBump(t *testing.T) {
	e := newEnv(t)
	remote := e.fake.NewRemote(string(idA), "master")
	v150 := remote.Commit("master", "v1.5.0")
	remote.Tag("v1.5.0", v150)
	e.installAt(idA, v150)

	remote.Commit("master", "refactor!")
	remote.Tag("v2.0.0", remote.Commit("master", "v2.0.0"))

	infos, err := e.engine(bare(idA)...).Collect(testutil.Context(t))
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.True(t, infos[0].IsMajorBump)
	assert.Len(t, infos[0].Commits, 2)
}

func TestCollectSkipsEmptyRange(t *testing.T) {
	e := newEnv(t)
	remote := e.fake.NewRemote(string(idA), "master")
	tagged := remote.Commit("master", "tagged")
	head := remote.Commit("master", "after the tag")
	e.installAt(idA, head)
	remote.Tag("v1.0.0", tagged)

	infos, err := e.engine(bare(idA)...).Collect(testutil.Context(t))
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestCollectSkipsCurrent(t *testing.T) {
	e := newEnv(t)
	remote := e.fake.NewRemote(string(idA), "main")
	e.installAt(idA, remote.Branch("main"))

	infos, err := e.engine(bare(idA)...).Collect(testutil.Context(t))
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestCollectExcludesPinnedUnlockedAndMissing(t *testing.T) {
	e := newEnv(t)
	remote := e.fake.NewRemote(string(idA), "master")
	e.installAt(idA, remote.Branch("master"))
	remote.Tag("v1.0.0", remote.Commit("master", "release"))

	rb := e.fake.NewRemote(string(idB), "master")
	rb.Tag("v1.0.0", rb.Commit("master", "release"))

	pin, err := pluginspec.Branch("master")
	require.NoError(t, err)
	eng := e.engine(&pluginspec.Spec{Identity: idA, Pin: pin}, pluginspec.Bare(idB))

	infos, err := eng.Collect(testutil.Context(t))
	require.NoError(t, err)
	assert.Empty(t, infos)
	assert.Zero(t, e.fake.Count("fetch"))

	// locked but not installed
	e.lock.Set(idB, rb.Branch("master"))
	infos, err = eng.Collect(testutil.Context(t))
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestCollectRestrictedToIdentities(t *testing.T) {
	e := newEnv(t)
	for _, id := range []pluginspec.Identity{idA, idB} {
		remote := e.fake.NewRemote(string(id), "master")
		e.installAt(id, remote.Branch("master"))
		remote.Tag("v0.1.0", remote.Commit("master", "release"))
	}

	eng := e.engine(bare(idA, idB)...)
	infos, err := eng.Collect(testutil.Context(t))
	require.NoError(t, err)
	assert.Len(t, infos, 2)

	infos, err = eng.Collect(testutil.Context(t), idB)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, idB, infos[0].Identity)
}

func TestReview(t *testing.T) {
	infos := []UpdateInfo{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	decisions := map[string]Decision{"a": Approve, "b": Skip, "c": Abort, "d": Approve}

	approved := Review(infos, func(i UpdateInfo) Decision { return decisions[i.Name] })
	assert.Equal(t, []UpdateInfo{{Name: "a"}}, approved)

	all := Review(infos, func(UpdateInfo) Decision { return Approve })
	assert.Len(t, all, 4)
}

func TestApply(t *testing.T) {
	e := newEnv(t)
	remote := e.fake.NewRemote(string(idA), "master")
	old := remote.Branch("master")
	e.installAt(idA, old)
	next := remote.Commit("master", "next")
	remote.Tag("v1.0.0", next)

	eng := e.engine(bare(idA)...)
	ctx := testutil.Context(t)
	infos, err := eng.Collect(ctx)
	require.NoError(t, err)
	require.NoError(t, eng.Apply(ctx, infos))

	head, err := e.fake.Head(ctx, e.layout.Dir(idA), vcs.RevHead)
	require.NoError(t, err)
	assert.Equal(t, next, head)

	saved, err := lockstore.Read(e.lock.Path())
	require.NoError(t, err)
	rev, _ := saved.Get(idA)
	assert.Equal(t, next, rev)
}

func TestApplyWritesLockBeforeCheckout(t *testing.T) {
	e := newEnv(t)
	remote := e.fake.NewRemote(string(idA), "master")
	old := remote.Branch("master")
	e.installAt(idA, old)
	next := remote.Commit("master", "next")
	remote.Tag("v1.0.0", next)

	eng := e.engine(bare(idA)...)
	ctx := testutil.Context(t)
	infos, err := eng.Collect(ctx)
	require.NoError(t, err)

	e.fake.Errors["checkout"] = errors.New("worktree contains unstaged changes")
	err = eng.Apply(ctx, infos)
	require.Error(t, err)
	assert.True(t, errors.Is(err, vcs.ErrCheckoutFailed))

	saved, err := lockstore.Read(e.lock.Path())
	require.NoError(t, err)
	rev, _ := saved.Get(idA)
	assert.Equal(t, next, rev)

	head, err := e.fake.Head(ctx, e.layout.Dir(idA), vcs.RevHead)
	require.NoError(t, err)
	assert.Equal(t, old, head)
}

func TestFormat(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	info := UpdateInfo{
		Name:        "telescope",
		OldRevision: "1111111111111111111111111111111111111111",
		NewRevision: "2222222222222222222222222222222222222222",
		OldTag:      "v1.5.0",
		NewTag:      "v2.0.0",
		Commits:     []string{"2222222 feat!: new picker api", "3333333 fix: typo"},
		IsMajorBump: true,
	}
	assert.Equal(t,
		"telescope 2 commits (v1.5.0 -> v2.0.0) [BREAKING: major version bump]\n"+
			"    2222222 feat!: new picker api\n"+
			"    3333333 fix: typo\n",
		Format(info))

	info = UpdateInfo{
		Name:        "lualine",
		OldRevision: "1111111111111111111111111111111111111111",
		NewRevision: "2222222222222222222222222222222222222222",
		Commits:     []string{"2222222 docs"},
	}
	assert.Equal(t, "lualine 1 commit\n    2222222 docs\n", Format(info))
}
