package cryptopackage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateFromPassword_Format(t *testing.T) {
	hash, err := GenerateFromPassword("Sup3r$ecret")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.Contains(t, hash, "$m=65536,t=3,p=4$")
	assert.NotContains(t, hash, "Sup3r$ecret")
}

func TestGenerateFromPassword_Salted(t *testing.T) {
	hash1, err := GenerateFromPassword("samepassword123")
	require.NoError(t, err)
	hash2, err := GenerateFromPassword("samepassword123")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	passwords := []string{
		"Short1!x",
		"a very long password with many characters and symbols !@#$%^&*()",
		"කොළඹ-Pass1!",
	}

	for _, password := range passwords {
		hash, err := GenerateFromPassword(password)
		require.NoError(t, err, "password: %s", password)

		match, err := ComparePasswordAndHash(password, hash)
		require.NoError(t, err)
		assert.True(t, match)

		match, err = ComparePasswordAndHash(password+"wrong", hash)
		require.NoError(t, err)
		assert.False(t, match)
	}
}

func TestComparePasswordAndHash_InvalidFormat(t *testing.T) {
	invalidHashes := []string{
		"",
		"invalid",
		"$argon2i$v=19$m=65536,t=2,p=4$salt$hash",
		"$argon2id$v=19$m=65536,t=2,p=4$",
		"$argon2id$vx=19$m=65536,t=2,p=4$c2FsdA$hash",
		"$argon2id$v=19$invalid_params$c2FsdA$hash",
		"$argon2id$v=19$m=65536,t=2,p=4$!!!invalid!!!$!!!invalid!!!",
	}

	for _, hash := range invalidHashes {
		match, err := ComparePasswordAndHash("password", hash)
		assert.Error(t, err, "hash: %s", hash)
		assert.False(t, match, "hash: %s", hash)
	}
}

func TestVerifyPassword_Argon2(t *testing.T) {
	hash, err := GenerateFromPassword("Correct#Horse1")
	require.NoError(t, err)

	match, rehash, err := VerifyPassword("Correct#Horse1", hash)
	require.NoError(t, err)
	assert.True(t, match)
	assert.False(t, rehash)
}

func TestVerifyPassword_LegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("teacher123"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, IsLegacyHash(string(legacy)))

	match, rehash, err := VerifyPassword("teacher123", string(legacy))
	require.NoError(t, err)
	assert.True(t, match)
	assert.True(t, rehash)

	match, rehash, err = VerifyPassword("teacher124", string(legacy))
	require.NoError(t, err)
	assert.False(t, match)
	assert.False(t, rehash)
}

func BenchmarkGenerateFromPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := GenerateFromPassword("benchmarkpassword123"); err != nil {
			b.Fatal(err)
		}
	}
}
