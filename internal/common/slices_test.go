package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceHelpers(t *testing.T) {
	assert.True(t, IsEmpty([]string{}))
	assert.False(t, IsEmpty([]int{1}))
	assert.True(t, IsSingle([]int{1}))
	assert.False(t, IsSingle([]int{1, 2}))

	v, ok := First([]string{"a", "b"})
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = First([]string(nil))
	assert.False(t, ok)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, Dedupe([]string{"b", "a", "b", "c", "a"}))
	assert.Empty(t, Dedupe([]int(nil)))
}
