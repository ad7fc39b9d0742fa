package user

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"
	symbols = "~!#$%^&*()-_.,<>?/\\{}[]|:;"

	secretAlphabet = letters + digits + symbols
)

// SecretGenerator produces a fresh plaintext password of the given length.
type SecretGenerator func(length int) (string, error)

// GenerateSecret draws length characters from letters, digits and symbols using crypto/rand.
func GenerateSecret(length int) (string, error) {
	max := big.NewInt(int64(len(secretAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		buf[i] = secretAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// LookupKey is the deterministic index of a secret: hex(HMAC-SHA256(secret, key)).
// Without key it cannot be precomputed, so it is safe to store next to the hash.
func LookupKey(secret string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(secret))
	return hex.EncodeToString(mac.Sum(nil))
}

// HashSecret returns the salted bcrypt verifier of secret.
func HashSecret(secret string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifySecret reports whether secret matches the stored verifier.
func VerifySecret(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
