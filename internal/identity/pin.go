package identity

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PINCost is the bcrypt work factor used for stored PINs.
const PINCost = 10

// PINHasher derives and checks one-way PIN hashes.
type PINHasher interface {
	Hash(pin string) (string, error)
	Matches(hash, pin string) (bool, error)
}

// BcryptHasher hashes PINs with bcrypt. Each hash carries its own random salt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher using PINCost.
func NewBcryptHasher() BcryptHasher {
	return BcryptHasher{Cost: PINCost}
}

// Hash returns the bcrypt hash of pin.
func (h BcryptHasher) Hash(pin string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = PINCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

// Matches reports whether pin hashes to hash. A malformed hash is an error,
// a plain mismatch is not.
func (h BcryptHasher) Matches(hash, pin string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare pin: %w", err)
	}
}
