package builtincommand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBuiltinCommand(t *testing.T) {
	assert.True(t, IsBuiltinCommand([]string{"pim", "sync"}))
	assert.True(t, IsBuiltinCommand([]string{"pim", "list", "-o", "json"}))
	assert.False(t, IsBuiltinCommand([]string{"pim"}))
	assert.False(t, IsBuiltinCommand([]string{"pim", "telescope"}))
}

func TestIsMutatingCommand(t *testing.T) {
	assert.True(t, IsMutatingCommand([]string{"pim", "restore"}))
	assert.True(t, IsMutatingCommand([]string{"pim", "update", "--check"}))
	assert.False(t, IsMutatingCommand([]string{"pim", "list"}))
	assert.False(t, IsMutatingCommand([]string{"pim", "--help"}))
}
