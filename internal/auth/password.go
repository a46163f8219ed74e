// Package auth provides password helpers for operator credentials.
package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost of 10 balances security and login latency.
const bcryptCost = 10

// HashPassword generates a bcrypt hash of the password, for storing operator
// credentials in the config file.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// IsHash reports whether a stored credential is a bcrypt hash rather than a
// plaintext password.
func IsHash(stored string) bool {
	return strings.HasPrefix(stored, "$2")
}

// VerifyPassword checks a candidate password against the stored credential,
// which may be either a bcrypt hash or plaintext.
func VerifyPassword(stored, candidate string) bool {
	if IsHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	return stored == candidate
}
