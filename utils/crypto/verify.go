package cryptopackage

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// IsLegacyHash reports a bcrypt hash carried over from the old document store
func IsLegacyHash(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$2a$") ||
		strings.HasPrefix(encodedHash, "$2b$") ||
		strings.HasPrefix(encodedHash, "$2y$")
}

// VerifyPassword checks password against an Argon2id or legacy bcrypt hash.
// needsRehash is true when the password matched a legacy hash.
func VerifyPassword(password, encodedHash string) (match bool, needsRehash bool, err error) {
	if IsLegacyHash(encodedHash) {
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, false, nil
		}
		if err != nil {
			return false, false, err
		}
		return true, true, nil
	}

	match, err = ComparePasswordAndHash(password, encodedHash)
	return match, false, err
}
