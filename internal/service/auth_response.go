package service

import (
	"context"

	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/internal/dto"
)

// issueSession mints an access token for user and builds the auth response
func (s *authService) issueSession(ctx context.Context, user *domain.User, flow string) (*dto.AuthResponse, error) {
	token, err := s.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, dependencyError("generate access token", err)
	}

	s.metrics.TokenIssued(ctx, flow)

	return &dto.AuthResponse{
		Token: token,
		User:  dto.NewUserInfo(user),
	}, nil
}
