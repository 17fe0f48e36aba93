package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/internal/dto"
	"go.uber.org/zap"
)

type errorMapping struct {
	err    error
	status int
	code   string
	title  string
}

// errorMappings is ordered; the first sentinel found in the chain wins
var errorMappings = []errorMapping{
	{domain.ErrValidation, http.StatusBadRequest, "VALIDATION", "Validation failed"},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Not found"},
	{domain.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS", "Conflict"},
	{domain.ErrInvalidOTP, http.StatusBadRequest, "INVALID_OTP", "Bad request"},
	{domain.ErrOTPExpired, http.StatusBadRequest, "OTP_EXPIRED", "Bad request"},
	{domain.ErrNotVerified, http.StatusForbidden, "NOT_VERIFIED", "Forbidden"},
	{domain.ErrWrongProvider, http.StatusBadRequest, "WRONG_PROVIDER", "Bad request"},
	{domain.ErrTooManyAttempts, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", "Too Many Requests"},
	{domain.ErrNoToken, http.StatusUnauthorized, "NO_TOKEN", "Unauthorized"},
	{domain.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED", "Unauthorized"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN", "Unauthorized"},
}

var internalError = errorMapping{domain.ErrDependencyFailure, http.StatusInternalServerError, "DEPENDENCY_FAILURE", "Internal server error"}

func mapError(err error) errorMapping {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m
		}
	}
	return internalError
}

// writeError renders err as an error response. Unmapped errors are logged and hidden.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	m := mapError(err)

	message := m.err.Error()
	switch m.code {
	case "VALIDATION":
		message = err.Error()
	case "DEPENDENCY_FAILURE":
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(m.status, dto.ErrorResponse{
		Error:   m.title,
		Code:    m.code,
		Message: message,
	})
}

// writeBindError reports a request body that failed to parse or validate
func writeBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Validation failed",
		Code:    "VALIDATION",
		Message: err.Error(),
	})
}
