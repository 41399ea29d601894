package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	plain := "messi10"
	hasher := NewBcryptHasher()

	hashed, err := hasher.Hash(plain)
	require.NoError(t, err)
	require.NotEqual(t, plain, hashed)

	require.True(t, hasher.Compare(hashed, plain))
	require.False(t, hasher.Compare(hashed, "wrong"))
}

func TestBcryptHasherDistinctSalts(t *testing.T) {
	hasher := NewBcryptHasher()

	first, err := hasher.Hash("same-secret")
	require.NoError(t, err)
	second, err := hasher.Hash("same-secret")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}
