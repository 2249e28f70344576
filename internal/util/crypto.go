package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// CryptoRandomBytes generates cryptographically secure random bytes
func CryptoRandomBytes(length int64) ([]byte, error) {
	buf := make([]byte, length)
	_, err := rand.Read(buf)
	return buf, err
}

// RandomURLSafe returns a URL-safe base64 string (no padding) built from
// length cryptographically secure random bytes. Used for client IDs, client
// secrets, and opaque access tokens.
func RandomURLSafe(length int64) (string, error) {
	buf, err := CryptoRandomBytes(length)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// SHA256Hex returns the SHA-256 hash of s as a lowercase hex string.
// Intended for use with high-entropy, unguessable values (e.g., randomly
// generated tokens); for such inputs, a salt is not required for security.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashSecret returns the bcrypt digest of plain at the given cost.
func HashSecret(plain string, cost int) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifySecret reports whether plain matches the bcrypt digest. The
// comparison runs in constant time; a malformed or empty digest verifies
// false rather than erroring.
func VerifySecret(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
