package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateSecret(t *testing.T) {
	t.Run("Length and alphabet", func(t *testing.T) {
		secret, err := GenerateSecret(20)
		require.NoError(t, err)
		assert.Len(t, secret, 20)
		for _, r := range secret {
			assert.True(t, strings.ContainsRune(secretAlphabet, r), "unexpected rune %q", r)
		}
	})

	t.Run("Secrets differ", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			s, err := GenerateSecret(20)
			require.NoError(t, err)
			assert.False(t, seen[s])
			seen[s] = true
		}
	})
}

func TestLookupKey(t *testing.T) {
	key := []byte("server-key")

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, LookupKey("secret", key), LookupKey("secret", key))
	})

	t.Run("Depends on secret and key", func(t *testing.T) {
		assert.NotEqual(t, LookupKey("secret", key), LookupKey("secret2", key))
		assert.NotEqual(t, LookupKey("secret", key), LookupKey("secret", []byte("other-key")))
	})

	t.Run("Known HMAC-SHA256 vector", func(t *testing.T) {
		// RFC 4231 test case 2
		got := LookupKey("what do ya want for nothing?", []byte("Jefe"))
		assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", got)
	})

	t.Run("Does not contain the secret", func(t *testing.T) {
		assert.NotContains(t, LookupKey("plaintext", key), "plaintext")
		assert.Len(t, LookupKey("plaintext", key), 64)
	})
}

func TestHashAndVerify(t *testing.T) {
	hash, err := HashSecret("correct horse", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, VerifySecret(hash, "correct horse"))
	assert.False(t, VerifySecret(hash, "wrong horse"))
	assert.False(t, VerifySecret("not-a-hash", "correct horse"))

	again, err := HashSecret("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes must be salted")
}
