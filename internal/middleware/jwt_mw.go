package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"binbuddy/internal/model"
	"binbuddy/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	AuthUserKey    = "authUser"
	AuthRoleKey    = "authRole"
	AuthAccountKey = "authAccount"
)

// Authenticator resolves a bearer token to the account it was issued for
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// JWTAuthMiddleware creates a middleware for JWT authentication.
// On success the account id, role and password-less account are stored in the context.
func JWTAuthMiddleware(auth Authenticator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided."})
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrAccountNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found."})
			case errors.Is(err, service.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized. Invalid token."})
			default:
				logger.ErrorContext(c.Request.Context(), "failed to authenticate request", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			}
			return
		}

		// Set user information in context
		c.Set(AuthUserKey, user.ID)
		c.Set(AuthRoleKey, user.Role)
		c.Set(AuthAccountKey, user)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
