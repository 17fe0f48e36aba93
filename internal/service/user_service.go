package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/internal/repository"
)

// userService implements UserService interface
type userService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewUserService creates a new profile service
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo, now: time.Now}
}

// GetProfile returns the account of userID
func (s *userService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, dependencyError("get profile", err)
	}
	return user, nil
}

// UpdateProfile changes name and date of birth; nil fields are left as they are
func (s *userService) UpdateProfile(ctx context.Context, userID string, name *string, dateOfBirth *time.Time) (*domain.User, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if l := len([]rune(trimmed)); l < 2 || l > 50 {
			return nil, validationError("name must be between 2 and 50 characters")
		}
		name = &trimmed
	}
	if dateOfBirth != nil && dateOfBirth.After(s.now()) {
		return nil, validationError("date of birth must be in the past")
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, name, dateOfBirth)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, dependencyError("update profile", err)
	}
	return user, nil
}
