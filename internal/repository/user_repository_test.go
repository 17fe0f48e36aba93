package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumnNames = []string{
	"id", "name", "email", "password_hash", "auth_provider", "google_subject_id", "firebase_subject_id",
	"is_email_verified", "otp_code", "otp_expires_at", "date_of_birth", "avatar_url", "created_at", "updated_at",
}

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*database.Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return &database.Postgres{DB: db}, mock
}

func userRow(id, email string, verified bool, otp any, otpExpires any) *sqlmock.Rows {
	return sqlmock.NewRows(userColumnNames).AddRow(
		id, "Alice", email, nil, "email", nil, nil,
		verified, otp, otpExpires, fixedNow, nil, fixedNow, fixedNow,
	)
}

func TestUserRepository_UpsertPendingSignup(t *testing.T) {
	pg, mock := newMockDB(t)
	repo := NewUserRepository(pg)

	code := "123456"
	expires := fixedNow.Add(10 * time.Minute)
	dob := time.Date(1990, 5, 4, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)INSERT INTO users .*ON CONFLICT \(email\) DO UPDATE SET.*WHERE users.is_email_verified = FALSE\s+RETURNING`).
		WithArgs(sqlmock.AnyArg(), "Alice", "alice@x.com", "email", &dob, &code, &expires).
		WillReturnRows(userRow("u-1", "alice@x.com", false, code, expires))

	user, err := repo.UpsertPendingSignup(context.Background(), &domain.User{
		Name:         "Alice",
		Email:        "alice@x.com",
		DateOfBirth:  &dob,
		OTPCode:      &code,
		OTPExpiresAt: &expires,
	})
	require.NoError(t, err)

	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, domain.ProviderEmail, user.AuthProvider)
	assert.False(t, user.IsEmailVerified)
	require.NotNil(t, user.OTPCode)
	assert.Equal(t, code, *user.OTPCode)
	assert.Nil(t, user.PasswordHash)
}

func TestUserRepository_UpsertPendingSignup_VerifiedExists(t *testing.T) {
	pg, mock := newMockDB(t)
	repo := NewUserRepository(pg)

	mock.ExpectQuery(`(?s)INSERT INTO users`).WillReturnRows(sqlmock.NewRows(userColumnNames))

	_, err := repo.UpsertPendingSignup(context.Background(), &domain.User{Name: "Alice", Email: "alice@x.com"})
	assert.ErrorIs(t, err, ErrConditionFailed)
}

func TestUserRepository_IssueOTP(t *testing.T) {
	pg, mock := newMockDB(t)
	repo := NewUserRepository(pg)

	otp := domain.OTP{Code: "654321", ExpiresAt: fixedNow.Add(10 * time.Minute)}

	mock.ExpectQuery(`(?s)UPDATE users\s+SET otp_code = \$2, otp_expires_at = \$3.*auth_provider <> 'firebase'`).
		WithArgs("alice@x.com", otp.Code, otp.ExpiresAt, true).
		WillReturnRows(userRow("u-1", "alice@x.com", true, otp.Code, otp.ExpiresAt))

	user, err := repo.IssueOTP(context.Background(), "alice@x.com", otp, true)
	require.NoError(t, err)
	assert.Equal(t, otp.Code, *user.OTPCode)

	mock.ExpectQuery(`(?s)UPDATE users`).
		WithArgs("bob@x.com", otp.Code, otp.ExpiresAt, true).
		WillReturnRows(sqlmock.NewRows(userColumnNames))

	_, err = repo.IssueOTP(context.Background(), "bob@x.com", otp, true)
	assert.ErrorIs(t, err, ErrConditionFailed)
}

func TestUserRepository_ConsumeOTP(t *testing.T) {
	pg, mock := newMockDB(t)
	repo := NewUserRepository(pg)

	mock.ExpectQuery(`(?s)UPDATE users\s+SET otp_code = NULL,.*is_email_verified = is_email_verified OR \$4.*WHERE email = \$1 AND otp_code = \$2 AND otp_expires_at > \$3`).
		WithArgs("alice@x.com", "123456", fixedNow, true).
		WillReturnRows(userRow("u-1", "alice@x.com", true, nil, nil))

	user, err := repo.ConsumeOTP(context.Background(), "alice@x.com", "123456", fixedNow, true)
	require.NoError(t, err)
	assert.True(t, user.IsEmailVerified)
	assert.False(t, user.HasPendingOTP())

	mock.ExpectQuery(`(?s)UPDATE users`).
		WithArgs("alice@x.com", "123456", fixedNow, false).
		WillReturnRows(sqlmock.NewRows(userColumnNames))

	_, err = repo.ConsumeOTP(context.Background(), "alice@x.com", "123456", fixedNow, false)
	assert.ErrorIs(t, err, ErrConditionFailed)
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	pg, mock := newMockDB(t)
	repo := NewUserRepository(pg)

	mock.ExpectQuery(`(?s)SELECT .* FROM users WHERE email = \$1`).
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_GetByID_DBError(t *testing.T) {
	pg, mock := newMockDB(t)
	repo := NewUserRepository(pg)

	mock.ExpectQuery(`(?s)SELECT .* FROM users WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnError(errors.New("db down"))

	_, err := repo.GetByID(context.Background(), "u-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "db down")
}

func TestUserRepository_TouchBySubject(t *testing.T) {
	pg, mock := newMockDB(t)
	repo := NewUserRepository(pg)

	mock.ExpectQuery(`(?s)UPDATE users SET updated_at = NOW\(\) WHERE firebase_subject_id = \$1`).
		WithArgs("fb-1").
		WillReturnRows(userRow("u-1", "alice@x.com", true, nil, nil))

	user, err := repo.TouchBySubject(context.Background(), domain.ProviderFirebase, "fb-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)

	mock.ExpectQuery(`(?s)WHERE google_subject_id = \$1`).
		WithArgs("g-1").
		WillReturnRows(sqlmock.NewRows(userColumnNames))

	_, err = repo.TouchBySubject(context.Background(), domain.ProviderGoogle, "g-1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.TouchBySubject(context.Background(), domain.ProviderEmail, "x")
	assert.Error(t, err)
}

func TestUserRepository_UpsertFederated(t *testing.T) {
	pg, mock := newMockDB(t)
	repo := NewUserRepository(pg)

	columns := append(append([]string{}, userColumnNames...), "inserted")
	avatar := "https://img/a.png"

	mock.ExpectQuery(`(?s)INSERT INTO users \(id, name, email, auth_provider, firebase_subject_id,.*ON CONFLICT \(email\) DO UPDATE SET\s+firebase_subject_id = COALESCE\(users.firebase_subject_id, EXCLUDED.firebase_subject_id\).*\(xmax = 0\) AS inserted`).
		WithArgs(sqlmock.AnyArg(), "Alice", "alice@x.com", "firebase", "fb-1", &avatar).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"u-1", "Alice", "alice@x.com", nil, "firebase", nil, "fb-1",
			true, nil, nil, nil, avatar, fixedNow, fixedNow, true,
		))

	user, created, err := repo.UpsertFederated(context.Background(), &domain.User{
		Name:      "Alice",
		Email:     "alice@x.com",
		AvatarURL: &avatar,
	}, domain.ProviderFirebase, "fb-1")
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, domain.ProviderFirebase, user.AuthProvider)
	require.NotNil(t, user.FirebaseSubjectID)
	assert.Equal(t, "fb-1", *user.FirebaseSubjectID)
	assert.True(t, user.IsEmailVerified)
}

func TestUserRepository_UpsertFederated_SubjectTaken(t *testing.T) {
	pg, mock := newMockDB(t)
	repo := NewUserRepository(pg)

	mock.ExpectQuery(`(?s)INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_google_subject_id_key"})

	_, _, err := repo.UpsertFederated(context.Background(), &domain.User{Name: "Alice", Email: "alice@x.com"}, domain.ProviderGoogle, "g-1")
	assert.ErrorIs(t, err, ErrDuplicateSubject)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	pg, mock := newMockDB(t)
	repo := NewUserRepository(pg)

	dob := time.Date(1991, 1, 2, 0, 0, 0, 0, time.UTC)
	name := "Alicia"

	mock.ExpectQuery(`(?s)UPDATE users\s+SET name = COALESCE\(\$2, name\),\s+date_of_birth = COALESCE\(\$3, date_of_birth\)`).
		WithArgs("u-1", "Alicia", &dob).
		WillReturnRows(userRow("u-1", "alice@x.com", true, nil, nil))

	_, err := repo.UpdateProfile(context.Background(), "u-1", &name, &dob)
	require.NoError(t, err)

	mock.ExpectQuery(`(?s)UPDATE users`).
		WithArgs("u-2", nil, nil).
		WillReturnRows(sqlmock.NewRows(userColumnNames))

	_, err = repo.UpdateProfile(context.Background(), "u-2", nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
