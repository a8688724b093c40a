package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the cost the Bin Buddy front-end accounts were created with
const DefaultBcryptCost = 10

// ErrPasswordTooLong is returned for passwords bcrypt would otherwise truncate
var ErrPasswordTooLong = errors.New("password must not exceed 72 bytes")

// PasswordHasher hashes and verifies passwords with bcrypt.
// Salt and cost are embedded in every hash, so changing the cost does not invalidate stored hashes.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a PasswordHasher. Costs outside bcrypt's range fall back to the default.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Cost returns the work factor new hashes are generated with
func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash generates a salted bcrypt hash of password
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash.
// A mismatch is (false, nil); an error means the stored hash itself is unusable.
func (h *PasswordHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to compare password hash: %w", err)
}
