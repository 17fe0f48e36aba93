package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/pkg/database"
)

const pqUniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, auth_provider, google_subject_id, firebase_subject_id,
		is_email_verified, otp_code, otp_expires_at, date_of_birth, avatar_url, created_at, updated_at`

// subjectColumns maps a federated provider to the column holding its subject id
var subjectColumns = map[domain.AuthProvider]string{
	domain.ProviderGoogle:   "google_subject_id",
	domain.ProviderFirebase: "firebase_subject_id",
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, extra ...any) (*domain.User, error) {
	user := &domain.User{}
	var provider string

	dest := []any{
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&provider,
		&user.GoogleSubjectID,
		&user.FirebaseSubjectID,
		&user.IsEmailVerified,
		&user.OTPCode,
		&user.OTPExpiresAt,
		&user.DateOfBirth,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	}

	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	user.AuthProvider = domain.AuthProvider(provider)

	return user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// UpsertPendingSignup inserts a new unverified account or refreshes the name, date of
// birth and OTP of the existing unverified one in a single statement
func (r *userRepository) UpsertPendingSignup(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (id, name, email, auth_provider, date_of_birth, otp_code, otp_expires_at,
			is_email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			date_of_birth = EXCLUDED.date_of_birth,
			otp_code = EXCLUDED.otp_code,
			otp_expires_at = EXCLUDED.otp_expires_at,
			updated_at = NOW()
		WHERE users.is_email_verified = FALSE
		RETURNING ` + userColumns

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	stored, err := scanUser(r.db.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		string(domain.ProviderEmail),
		user.DateOfBirth,
		user.OTPCode,
		user.OTPExpiresAt,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verified user with email %s exists: %w", user.Email, ErrConditionFailed)
		}
		return nil, fmt.Errorf("failed to upsert pending signup: %w", err)
	}

	return stored, nil
}

// IssueOTP replaces any pending code on the account with otp
func (r *userRepository) IssueOTP(ctx context.Context, email string, otp domain.OTP, forSignin bool) (*domain.User, error) {
	query := `
		UPDATE users
		SET otp_code = $2, otp_expires_at = $3, updated_at = NOW()
		WHERE email = $1
			AND ($4 = FALSE OR (is_email_verified AND auth_provider <> 'firebase'))
		RETURNING ` + userColumns

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, email, otp.Code, otp.ExpiresAt, forSignin))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("issue otp for %s: %w", email, ErrConditionFailed)
		}
		return nil, fmt.Errorf("failed to issue otp: %w", err)
	}

	return user, nil
}

// ConsumeOTP clears the pending code when it matches and has not expired at now
func (r *userRepository) ConsumeOTP(ctx context.Context, email, code string, now time.Time, markVerified bool) (*domain.User, error) {
	query := `
		UPDATE users
		SET otp_code = NULL,
			otp_expires_at = NULL,
			is_email_verified = is_email_verified OR $4,
			updated_at = NOW()
		WHERE email = $1 AND otp_code = $2 AND otp_expires_at > $3
		RETURNING ` + userColumns

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, email, code, now, markVerified))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("consume otp for %s: %w", email, ErrConditionFailed)
		}
		return nil, fmt.Errorf("failed to consume otp: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// TouchBySubject bumps updated_at of the account linked to subjectID
func (r *userRepository) TouchBySubject(ctx context.Context, provider domain.AuthProvider, subjectID string) (*domain.User, error) {
	column, ok := subjectColumns[provider]
	if !ok {
		return nil, fmt.Errorf("provider %q has no subject column", provider)
	}

	query := `UPDATE users SET updated_at = NOW() WHERE ` + column + ` = $1 RETURNING ` + userColumns

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, subjectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with %s subject %s not found: %w", provider, subjectID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by subject: %w", err)
	}

	return user, nil
}

// UpsertFederated inserts a verified federated account, or links subjectID to the account
// already owning the email when that account has no subject for the provider yet.
// The returned bool reports whether a new account was created.
func (r *userRepository) UpsertFederated(ctx context.Context, user *domain.User, provider domain.AuthProvider, subjectID string) (*domain.User, bool, error) {
	column, ok := subjectColumns[provider]
	if !ok {
		return nil, false, fmt.Errorf("provider %q has no subject column", provider)
	}

	query := fmt.Sprintf(`
		INSERT INTO users (id, name, email, auth_provider, %[1]s, is_email_verified, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE SET
			%[1]s = COALESCE(users.%[1]s, EXCLUDED.%[1]s),
			auth_provider = CASE WHEN users.%[1]s IS NULL THEN EXCLUDED.auth_provider ELSE users.auth_provider END,
			avatar_url = CASE WHEN users.%[1]s IS NULL THEN COALESCE(users.avatar_url, EXCLUDED.avatar_url) ELSE users.avatar_url END,
			updated_at = NOW()
		RETURNING %[2]s, (xmax = 0) AS inserted`, column, userColumns)

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	var inserted bool
	stored, err := scanUser(r.db.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		string(provider),
		subjectID,
		user.AvatarURL,
	), &inserted)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, false, fmt.Errorf("%s subject %s: %w", provider, subjectID, ErrDuplicateSubject)
		}
		return nil, false, fmt.Errorf("failed to upsert federated user: %w", err)
	}

	return stored, inserted, nil
}

// UpdateProfile updates the editable profile fields; nil leaves a field unchanged
func (r *userRepository) UpdateProfile(ctx context.Context, id string, name *string, dateOfBirth *time.Time) (*domain.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
			date_of_birth = COALESCE($3, date_of_birth),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, id, name, dateOfBirth))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}
