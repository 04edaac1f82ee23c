package lockstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pim.dev/x/pim/pkg/pluginspec"
)

const (
	revA = "1111111111111111111111111111111111111111"
	revB = "2222222222222222222222222222222222222222"
)

func TestMarshalIsOrderIndependent(t *testing.T) {
	first := map[pluginspec.Identity]string{}
	first["b"] = revB
	first["a"] = revA

	second := map[pluginspec.Identity]string{}
	second["a"] = revA
	second["b"] = revB

	x, err := Marshal(first)
	require.NoError(t, err)
	y, err := Marshal(second)
	require.NoError(t, err)

	assert.Equal(t, x, y)
	assert.Equal(t, "{\n  \"a\": \""+revA+"\",\n  \"b\": \""+revB+"\"\n}", string(x))
}

func TestMarshalEmpty(t *testing.T) {
	out, err := Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "{\n}", string(out))

	parsed, err := Unmarshal(out)
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestReadMissingFile(t *testing.T) {
	s, err := Read(filepath.Join(t.TempDir(), "pim-lock.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Exists())
	assert.False(t, s.Dirty())
}

func TestReadMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":     "not json",
		"bad revision": `{"https://x/a": "HEAD"}`,
		"wrong type":   `{"https://x/a": 3}`,
	}
	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pim-lock.json")
			require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

			s, err := Read(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedLock))
			require.NotNil(t, s)
			assert.Equal(t, 0, s.Len())
			assert.True(t, s.Exists())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pim-lock.json")
	s := New(path)

	assert.True(t, s.Set("https://x/b", revB))
	assert.True(t, s.Set("https://x/a", revA))
	assert.False(t, s.Set("https://x/a", revA))
	require.NoError(t, s.Save())
	assert.False(t, s.Dirty())

	reread, err := Read(path)
	require.NoError(t, err)
	assert.True(t, reread.Exists())
	assert.Equal(t, []pluginspec.Identity{"https://x/a", "https://x/b"}, reread.Identities())

	rev, ok := reread.Get("https://x/b")
	assert.True(t, ok)
	assert.Equal(t, revB, rev)

	assert.True(t, reread.Delete("https://x/b"))
	assert.False(t, reread.Delete("https://x/b"))
	require.NoError(t, reread.Save())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"https://x/a\": \""+revA+"\"\n}", string(contents))
}

func TestSaveSkipsCleanStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pim-lock.json")
	require.NoError(t, New(path).Save())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
