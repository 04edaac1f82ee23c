package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pim.dev/x/pim/pkg/pimconfig"
	"pim.dev/x/pim/pkg/testutil"
)

func TestGenMarkdownDocs(t *testing.T) {
	t.Setenv(pimconfig.HomeEnvVar, t.TempDir())
	dir := filepath.Join(t.TempDir(), "reference")

	require.NoError(t, genDocs(testutil.Context(t), dir, formatMarkdown))

	for _, name := range []string{"pim.md", "pim_sync.md", "pim_update.md", "pim_list.md"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	data, err := os.ReadFile(filepath.Join(dir, "pim_update.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Pim Update")
	assert.Contains(t, string(data), "--yes")
}

func TestGenRSTDocs(t *testing.T) {
	t.Setenv(pimconfig.HomeEnvVar, t.TempDir())
	dir := t.TempDir()

	require.NoError(t, genDocs(testutil.Context(t), dir, formatRST))

	index, err := os.ReadFile(filepath.Join(dir, "index.rst"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "   pim_restore\n")
	assert.NotContains(t, string(index), "   index\n")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Pim Update", title("/out/pim_update.md"))
	assert.Equal(t, "Pim", title("pim.rst"))
}
