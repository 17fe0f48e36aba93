package domain

import "time"

// TokenClaims represents access token claims
type TokenClaims struct {
	UserID string
	ID     string
	Exp    time.Time
	Iat    time.Time
}
