package repository

import (
	"context"
	"time"

	"github.com/prperemyshlev/notes-service/internal/domain"
)

// UserRepository defines methods for user operations.
// Every mutating method is a single conditional statement; ErrConditionFailed means
// the row did not satisfy the condition and the caller decides why by reading it back.
type UserRepository interface {
	// UpsertPendingSignup creates the account or refreshes an unverified one with a new OTP.
	// Returns ErrConditionFailed when a verified account already owns the email.
	UpsertPendingSignup(ctx context.Context, user *domain.User) (*domain.User, error)
	// IssueOTP stores otp on the account. With forSignin the account must also be
	// verified and not firebase-only.
	IssueOTP(ctx context.Context, email string, otp domain.OTP, forSignin bool) (*domain.User, error)
	// ConsumeOTP clears a matching, unexpired code and optionally marks the email verified.
	ConsumeOTP(ctx context.Context, email, code string, now time.Time, markVerified bool) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// TouchBySubject bumps updated_at of the account linked to the provider subject id.
	TouchBySubject(ctx context.Context, provider domain.AuthProvider, subjectID string) (*domain.User, error)
	// UpsertFederated creates a verified account or links the subject id to the account owning the email.
	UpsertFederated(ctx context.Context, user *domain.User, provider domain.AuthProvider, subjectID string) (*domain.User, bool, error)
	UpdateProfile(ctx context.Context, id string, name *string, dateOfBirth *time.Time) (*domain.User, error)
}

// NoteRepository defines methods for note operations, always scoped to the owner
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	GetByID(ctx context.Context, userID, id string) (*domain.Note, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Note, error)
	Search(ctx context.Context, userID, query string) ([]*domain.Note, error)
	Update(ctx context.Context, userID, id string, update domain.NoteUpdate) (*domain.Note, error)
	Delete(ctx context.Context, userID, id string) error
}
