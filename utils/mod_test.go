package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindIndex(t *testing.T) {
	require.Equal(t, 1, FindIndex([]int{4, 7, 7}, 7), "Should return the first match")
	require.Equal(t, -1, FindIndex([]string{"a"}, "b"))
	require.Equal(t, -1, FindIndex(nil, 3))
}

func TestContains(t *testing.T) {
	require.True(t, Contains([]int{1, 2}, 2))
	require.False(t, Contains([]int{}, 2))
}
