package service

import (
	"context"
	"errors"

	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/internal/repository"
)

// sessionGate implements SessionGate interface
type sessionGate struct {
	tokens   TokenIssuer
	userRepo repository.UserRepository
}

// NewSessionGate creates a gate that verifies tokens and loads their accounts
func NewSessionGate(tokens TokenIssuer, userRepo repository.UserRepository) SessionGate {
	return &sessionGate{tokens: tokens, userRepo: userRepo}
}

// Authenticate resolves token to exactly one account. It never writes.
func (g *sessionGate) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrNoToken
	}

	claims, err := g.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	user, err := g.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, dependencyError("load account", err)
	}

	return user, nil
}
