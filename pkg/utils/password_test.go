package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	h1, err := HashPassword("secret123")
	require.NoError(t, err)
	h2, err := HashPassword("secret123")
	require.NoError(t, err)

	require.NotEqual(t, "secret123", h1)
	require.NotEqual(t, h1, h2) // 随机盐

	require.True(t, CheckPassword("secret123", h1))
	require.False(t, CheckPassword("wrong", h1))
}
