package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := GenerateToken(0)
		require.Error(t, err)
		_, err = GenerateToken(-1)
		require.Error(t, err)
	})

	t.Run("128-bit token is 22 chars", func(t *testing.T) {
		tok, err := GenerateToken(TokenSize128)
		require.NoError(t, err)
		require.Len(t, tok, 22)
	})

	t.Run("256-bit token is 43 chars", func(t *testing.T) {
		tok, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.Len(t, tok, 43)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 100 {
			tok, err := GenerateToken(TokenSize256)
			require.NoError(t, err)
			_, dup := seen[tok]
			require.False(t, dup)
			seen[tok] = struct{}{}
		}
	})
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	a := FingerprintToken("session-token-a")
	b := FingerprintToken("session-token-b")

	require.Len(t, a, 43)
	require.NotEqual(t, a, b)
	require.Equal(t, a, FingerprintToken("session-token-a"), "fingerprint must be deterministic")
}
