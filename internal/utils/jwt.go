package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenLifetime is how long an issued token stays valid
const DefaultTokenLifetime = time.Hour

// ErrInvalidToken wraps every token verification failure
var ErrInvalidToken = errors.New("invalid token")

// JWTClaims custom claims for JWT
type JWTClaims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTUtil provides JWT generation and validation
type JWTUtil struct {
	secretKey []byte
	lifetime  time.Duration
	now       func() time.Time
}

// NewJWTUtil creates a new JWTUtil. A zero lifetime means DefaultTokenLifetime.
func NewJWTUtil(secretKey string, lifetime time.Duration) *JWTUtil {
	if lifetime == 0 {
		lifetime = DefaultTokenLifetime
	}
	return &JWTUtil{secretKey: []byte(secretKey), lifetime: lifetime, now: time.Now}
}

// GenerateToken generates a new signed token for the given account
func (ju *JWTUtil) GenerateToken(userID uuid.UUID, role string) (string, error) {
	issuedAt := ju.now()
	claims := &JWTClaims{
		UserID: userID.String(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ju.lifetime)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ju.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates the JWT token.
// Any failure (malformed, wrong algorithm, bad signature, expired) wraps ErrInvalidToken.
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ju.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ju.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, fmt.Errorf("%w: malformed account id: %w", ErrInvalidToken, err)
	}
	return claims, nil
}
