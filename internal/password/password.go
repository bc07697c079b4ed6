// Package password wraps bcrypt hashing for credentials. The same hasher is
// applied to passwords and to refresh tokens before they are persisted.
package password

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// cost matches the work factor used for all stored credential hashes.
const cost = 10

// normalize folds inputs beyond bcrypt's 72-byte limit through sha256 so
// that long bearer strings (refresh tokens) can share the password hasher.
// Short inputs pass through untouched.
func normalize(plaintext string) []byte {
	if len(plaintext) <= 72 {
		return []byte(plaintext)
	}
	sum := sha256.Sum256([]byte(plaintext))
	return []byte(base64.RawStdEncoding.EncodeToString(sum[:]))
}

// Hash returns the bcrypt digest of plaintext.
func Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(normalize(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Compare reports whether plaintext matches digest.
func Compare(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), normalize(plaintext)) == nil
}
