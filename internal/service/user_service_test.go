package service

import (
	"context"
	"testing"
	"time"

	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Profile(t *testing.T) {
	repo := newMemoryUserRepo()
	ctx := context.Background()
	dob := time.Date(1990, 5, 4, 0, 0, 0, 0, time.UTC)

	stored, err := repo.UpsertPendingSignup(ctx, &domain.User{Name: "Alice", Email: aliceEmail, DateOfBirth: &dob})
	require.NoError(t, err)

	svc := NewUserService(repo)

	user, err := svc.GetProfile(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)

	name := "  Alicia "
	user, err = svc.UpdateProfile(ctx, stored.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", user.Name)
	assert.True(t, user.DateOfBirth.Equal(dob))

	short := "A"
	_, err = svc.UpdateProfile(ctx, stored.ID, &short, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	future := time.Now().Add(24 * time.Hour)
	_, err = svc.UpdateProfile(ctx, stored.ID, nil, &future)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
