package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPIN hashes a customer PIN (or admin password) with bcrypt.
// Only the hash is ever stored.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}
	return string(hash), nil
}

// VerifyPIN checks a plain PIN against its stored bcrypt hash.
func VerifyPIN(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
