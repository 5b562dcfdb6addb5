// Package password implements one-way password hashing with PBKDF2-HMAC-SHA256.
//
// The stored format is "<salt>$<key>" where both components are lowercase
// hex. A fresh 16-byte salt is drawn per Hash call, so hashing the same
// password twice yields different strings while Verify remains deterministic
// for a given stored value.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes  = 16
	keyBytes   = 32
	iterations = 100_000
	delimiter  = "$"
)

// Hash derives a salted PBKDF2 key from password and returns the combined
// salt$key string suitable for storage.
func Hash(password string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	hexSalt := hex.EncodeToString(salt)
	key := derive(password, hexSalt)
	return hexSalt + delimiter + hex.EncodeToString(key), nil
}

// Verify reports whether password matches the stored salt$key string.
// Malformed stored values fail closed: the function returns false rather
// than an error, so a corrupted hash can never be mistaken for a match.
func Verify(password, stored string) bool {
	salt, hexKey, ok := strings.Cut(stored, delimiter)
	if !ok || salt == "" || hexKey == "" {
		return false
	}
	want, err := hex.DecodeString(hexKey)
	if err != nil || len(want) != keyBytes {
		return false
	}
	got := derive(password, salt)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func derive(password, hexSalt string) []byte {
	return pbkdf2.Key([]byte(password), []byte(hexSalt), iterations, keyBytes, sha256.New)
}
