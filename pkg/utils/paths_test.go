package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "file.json")

	require.NoError(t, WriteFileAtomic(p, []byte("one"), 0644))
	require.NoError(t, WriteFileAtomic(p, []byte("two"), 0644))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestRemoveAllWithin(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "a")
	require.NoError(t, os.MkdirAll(filepath.Join(inside, "b"), 0755))

	require.Error(t, RemoveAllWithin(root, filepath.Join(root, "..")))
	require.Error(t, RemoveAllWithin(root, root))

	require.NoError(t, RemoveAllWithin(root, inside))
	exists, err := DirExists(inside)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWithInstallLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "locks", ".install.lock")

	called := false
	require.NoError(t, WithInstallLock(t.Context(), lockPath, func() error {
		called = true
		return nil
	}))
	assert.True(t, called)

	// lock is released afterwards
	require.NoError(t, WithInstallLock(t.Context(), lockPath, func() error { return nil }))
}

func TestShortRevision(t *testing.T) {
	assert.Equal(t, "0123456", ShortRevision("0123456789abcdef0123456789abcdef01234567"))
	assert.Equal(t, "abc", ShortRevision("abc"))
}
