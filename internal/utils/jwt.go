package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prperemyshlev/notes-service/internal/domain"
)

// accessClaims is the JWT payload of an access token
type accessClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies access tokens
type JWTManager struct {
	secret            []byte
	accessTokenExpiry time.Duration
	now               func() time.Time
}

// JWTOption configures a JWTManager
type JWTOption func(*JWTManager)

// WithJWTClock overrides the clock used for issuing and validating tokens
func WithJWTClock(now func() time.Time) JWTOption {
	return func(j *JWTManager) {
		j.now = now
	}
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, accessTokenExpiry time.Duration, opts ...JWTOption) *JWTManager {
	j := &JWTManager{
		secret:            []byte(secret),
		accessTokenExpiry: accessTokenExpiry,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// GenerateAccessToken generates a new access token bound to userID
func (j *JWTManager) GenerateAccessToken(userID string) (string, error) {
	now := j.now()

	claims := accessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(now.Add(j.accessTokenExpiry))),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ceilSecond rounds t up to the whole second the exp claim can carry, so a token
// is never rejected before its full lifetime has passed
func ceilSecond(t time.Time) time.Time {
	if truncated := t.Truncate(time.Second); !truncated.Equal(t) {
		return truncated.Add(time.Second)
	}
	return t
}

// ValidateToken validates an access token and returns its claims.
// Expired tokens yield domain.ErrTokenExpired; anything else wrong yields domain.ErrInvalidToken.
func (j *JWTManager) ValidateToken(tokenString string) (*domain.TokenClaims, error) {
	claims := &accessClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id", domain.ErrInvalidToken)
	}

	tokenClaims := &domain.TokenClaims{
		UserID: claims.UserID,
		ID:     claims.ID,
		Exp:    claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		tokenClaims.Iat = claims.IssuedAt.Time
	}

	return tokenClaims, nil
}
