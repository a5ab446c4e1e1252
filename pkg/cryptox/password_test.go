package cryptox_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rblessings/urlradar/pkg/cryptox"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := cryptox.HashPassword("password123")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	require.NotContains(t, hash, "password123")

	require.NoError(t, cryptox.VerifyPassword("password123", hash))
	require.ErrorIs(t, cryptox.VerifyPassword("password124", hash), cryptox.ErrPasswordMismatch)
}

func TestHashPasswordSaltsEveryCall(t *testing.T) {
	t.Parallel()

	first, err := cryptox.HashPassword("same-input")
	require.NoError(t, err)
	second, err := cryptox.HashPassword("same-input")
	require.NoError(t, err)

	require.NotEqual(t, first, second, "each hash must use a fresh salt")
	require.NoError(t, cryptox.VerifyPassword("same-input", first))
	require.NoError(t, cryptox.VerifyPassword("same-input", second))
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
	}
	for _, bad := range cases {
		require.Error(t, cryptox.VerifyPassword("anything", bad), "hash %q", bad)
	}
}
