package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/internal/service"
	"go.uber.org/zap"
)

const contextUserKey = "user"

// AuthMiddleware resolves the bearer token to an account and adds it to the context
func AuthMiddleware(gate service.SessionGate, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			writeError(c, logger, err)
			return
		}

		user, err := gate.Authenticate(c.Request.Context(), token)
		if err != nil {
			writeError(c, logger, err)
			return
		}

		c.Set(contextUserKey, user)
		c.Set("user_id", user.ID)

		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>"
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", domain.ErrNoToken
	}

	scheme, token, found := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", domain.ErrInvalidToken
	}
	if !found || strings.TrimSpace(token) == "" {
		return "", domain.ErrNoToken
	}

	return strings.TrimSpace(token), nil
}

// currentUser returns the account attached by AuthMiddleware
func currentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(contextUserKey); ok {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}
