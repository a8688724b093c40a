package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	password := "password123"
	hashedPassword, err := hasher.Hash(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hashedPassword)
	assert.NotEqual(t, password, hashedPassword)
}

func TestHashPassword_UniqueSalt(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("Secr3t!")
	assert.NoError(t, err)
	second, err := hasher.Hash("Secr3t!")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashPassword_CostEmbedded(t *testing.T) {
	hasher := NewPasswordHasher(5)
	hashedPassword, err := hasher.Hash("password123")
	assert.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hashedPassword))
	assert.NoError(t, err)
	assert.Equal(t, 5, cost)
}

func TestHashPassword_TooLong(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	_, err := hasher.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestNewPasswordHasher_InvalidCostFallsBack(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).Cost())
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(bcrypt.MaxCost+1).Cost())
	assert.Equal(t, 12, NewPasswordHasher(12).Cost())
}

func TestCheckPasswordHash(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	password := "password123"
	hashedPassword, _ := hasher.Hash(password)

	ok, err := hasher.Verify(password, hashedPassword)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("wrongpassword", hashedPassword)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPasswordHash_InvalidHash(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	ok, err := hasher.Verify("password123", "invalidhash")
	assert.Error(t, err)
	assert.False(t, ok)
}
