package service

import (
	"context"
	"time"

	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/internal/dto"
)

// AuthService defines the OTP and federated identity flows
type AuthService interface {
	Signup(ctx context.Context, req *SignupInput) (string, error)
	VerifySignup(ctx context.Context, email, code string) (*dto.AuthResponse, error)
	Signin(ctx context.Context, email string) (string, error)
	VerifySignin(ctx context.Context, email, code string) (*dto.AuthResponse, error)
	ResendOTP(ctx context.Context, email string) error
	FederatedSignin(ctx context.Context, req *FederatedInput) (*dto.AuthResponse, error)
}

// SessionGate resolves bearer tokens to accounts
type SessionGate interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// UserService defines profile operations
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, name *string, dateOfBirth *time.Time) (*domain.User, error)
}

// NoteService defines note operations scoped to the calling user
type NoteService interface {
	List(ctx context.Context, userID string) ([]*domain.Note, error)
	Search(ctx context.Context, userID, query string) ([]*domain.Note, error)
	Create(ctx context.Context, userID string, input *NoteInput) (*domain.Note, error)
	Get(ctx context.Context, userID, id string) (*domain.Note, error)
	Update(ctx context.Context, userID, id string, update domain.NoteUpdate) (*domain.Note, error)
	Delete(ctx context.Context, userID, id string) error
}

// Mailer delivers the identity flow emails
type Mailer interface {
	SendOTP(ctx context.Context, to, name, code string) error
	SendWelcome(ctx context.Context, to, name string) error
}

// OTPIssuer generates one-time codes
type OTPIssuer interface {
	Issue() (domain.OTP, error)
}

// TokenIssuer mints and verifies access tokens
type TokenIssuer interface {
	GenerateAccessToken(userID string) (string, error)
	ValidateToken(token string) (*domain.TokenClaims, error)
}

// AttemptLimiter caps OTP verification failures per email
type AttemptLimiter interface {
	Check(ctx context.Context, email string) error
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// SignupInput carries the fields of a signup
type SignupInput struct {
	Name        string
	Email       string
	DateOfBirth time.Time
}

// FederatedInput carries an identity asserted by a federated provider
type FederatedInput struct {
	Provider  domain.AuthProvider
	SubjectID string
	Email     string
	Name      string
	AvatarURL string
}

// NoteInput carries the fields of a new note
type NoteInput struct {
	Title    string
	Content  string
	Tags     []string
	IsPinned bool
}
