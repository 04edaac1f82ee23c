package pluginspec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"
)

const sha = "0123456789abcdef0123456789abcdef01234567"

func TestNormalizeIdentity(t *testing.T) {
	tests := []struct {
		raw      string
		expected Identity
		name     string
	}{
		{"owner/repo", "https://github.com/owner/repo", "repo"},
		{"https://example.com/x/plug.nvim.git", "https://example.com/x/plug.nvim.git", "plug.nvim"},
		{" https://example.com/x/plug/ ", "https://example.com/x/plug", "plug"},
		{"git@example.com:x/plug.git", "git@example.com:x/plug.git", "plug"},
		{"/srv/git/local", "/srv/git/local", "local"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			id := NormalizeIdentity(tt.raw)
			assert.Equal(t, tt.expected, id)
			assert.Equal(t, tt.name, id.Name())
		})
	}
}

func TestParsePin(t *testing.T) {
	p, err := ParsePin("", "", "")
	require.NoError(t, err)
	assert.False(t, p.IsSet())

	p, err = ParsePin("0123456789ABCDEF0123456789ABCDEF01234567", "", "")
	require.NoError(t, err)
	assert.Equal(t, CommitPin, p.Kind())
	assert.Equal(t, sha, p.Value())

	p, err = ParsePin("", "v1.0.0", "")
	require.NoError(t, err)
	assert.Equal(t, "tag:v1.0.0", p.String())

	_, err = ParsePin("", "v1", "main")
	assert.Error(t, err)

	_, err = ParsePin("abc123", "", "")
	assert.Error(t, err)
}

func TestIsBare(t *testing.T) {
	assert.True(t, Bare("https://x/a").IsBare())
	assert.False(t, (&Spec{Identity: "https://x/a", Dependencies: []Identity{"https://x/b"}}).IsBare())
	assert.False(t, (&Spec{Identity: "https://x/a", Pin: MustCommit(sha)}).IsBare())
	assert.False(t, (&Spec{Identity: "https://x/a", PostLoadHook: "setup()"}).IsBare())
}

func TestParseDeclarationShapes(t *testing.T) {
	tests := []struct {
		name string
		data string
		ids  []Identity
	}{
		{"empty", "", nil},
		{"comments only", "# nothing here\n", nil},
		{"single", "url: owner/a\n", []Identity{"https://github.com/owner/a"}},
		{"sequence", "- url: owner/a\n- url: owner/b\n", []Identity{"https://github.com/owner/a", "https://github.com/owner/b"}},
		{"plugins mapping", "plugins:\n  - url: owner/b\n  - url: owner/a\n", []Identity{"https://github.com/owner/b", "https://github.com/owner/a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs, err := ParseDeclaration("test.yaml", []byte(tt.data))
			require.NoError(t, err)
			var ids []Identity
			for _, s := range specs {
				ids = append(ids, s.Identity)
				assert.Equal(t, "test.yaml", s.Source)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestParseDeclarationFields(t *testing.T) {
	data := `
url: https://example.com/x/telescope
tag: v0.1.0
dependencies:
  - owner/plenary
post-load:
  lua: require('telescope').setup()
triggers:
  - cmd: Telescope
`
	specs, err := ParseDeclaration("telescope.yaml", []byte(data))
	require.NoError(t, err)
	require.Len(t, specs, 1)

	s := specs[0]
	assert.Equal(t, Identity("https://example.com/x/telescope"), s.Identity)
	assert.Equal(t, TagPin, s.Pin.Kind())
	assert.Equal(t, "v0.1.0", s.Pin.Value())
	assert.Equal(t, []Identity{"https://github.com/owner/plenary"}, s.Dependencies)
	assert.Equal(t, map[string]any{"lua": "require('telescope').setup()"}, s.PostLoadHook)
	assert.NotNil(t, s.ActivationTriggers)
	assert.False(t, s.IsBare())
}

func TestParseDeclarationInvalid(t *testing.T) {
	tests := map[string]string{
		"missing url":    "tag: v1\n",
		"two pins":       "url: owner/a\ntag: v1\nbranch: main\n",
		"short commit":   "url: owner/a\ncommit: abc123\n",
		"unknown field":  "url: owner/a\nversion: 3\n",
		"scalar":         "just a string\n",
		"bad yaml":       "url: [owner/a\n",
		"bad dependency": "url: owner/a\ndependencies: owner/b\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDeclaration("bad.yaml", []byte(data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDeclaration))

			var ze *zerr.Error
			require.True(t, errors.As(err, &ze))
			assert.Equal(t, "bad.yaml", ze.Metadata()["source"])
		})
	}
}
