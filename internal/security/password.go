package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrSecretMismatch = errors.New("secret does not match")

// HashSecret hashes a plain text secret with bcrypt at the given cost.
// A cost of 0 selects bcrypt.DefaultCost.
func HashSecret(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckSecret compares a bcrypt hash with a plaintext secret.
func CheckSecret(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrSecretMismatch
	}

	return err
}
