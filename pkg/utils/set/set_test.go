package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := Of("b", "a")
	s.Add("c").Add("a")

	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("d"))
	assert.Equal(t, []string{"a", "b", "c"}, s.Sorted())

	s.Remove("b")
	assert.Equal(t, []string{"a", "c"}, s.Sorted())
}
