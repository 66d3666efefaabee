package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and checks passwords with bcrypt at a fixed cost.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher. Tests pass bcrypt.MinCost to stay fast.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare reports whether password matches hash. A mismatch is not an error.
func (h *Hasher) Compare(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
