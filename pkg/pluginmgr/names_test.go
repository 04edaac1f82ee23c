package pluginmgr

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pim.dev/x/pim/pkg/pluginspec"
	"pim.dev/x/pim/pkg/registry"
)

func testRegistry(t *testing.T, declaration string) *registry.Registry {
	reg, err := registry.Build([]registry.Source{registry.BytesSource{SourceName: "test.yaml", Data: []byte(declaration)}}, registry.Options{})
	require.NoError(t, err)
	return reg
}

func TestSuggest(t *testing.T) {
	reg := testRegistry(t, "- url: owner/telescope\n- url: owner/lualine\n- url: owner/treesitter\n")
	require.Equal(t, []string{"telescope"}, Suggest(reg, "telscope"))
	require.Empty(t, Suggest(reg, "zzz"))

	ids, err := Resolve(reg, []string{"lualine", "https://github.com/owner/telescope", "lualine"})
	require.NoError(t, err)
	require.Equal(t, []pluginspec.Identity{"https://github.com/owner/lualine", "https://github.com/owner/telescope"}, ids)
}
