package domain

import "time"

// AuthProvider records how an account was created or last linked
type AuthProvider string

const (
	ProviderEmail    AuthProvider = "email"
	ProviderGoogle   AuthProvider = "google"
	ProviderFirebase AuthProvider = "firebase"
)

// IsFederated reports whether the provider asserts identity on its own
func (p AuthProvider) IsFederated() bool {
	return p == ProviderGoogle || p == ProviderFirebase
}

// User represents a user account in the credential store
type User struct {
	ID                string       `json:"id" db:"id"`
	Name              string       `json:"name" db:"name"`
	Email             string       `json:"email" db:"email"`
	PasswordHash      *string      `json:"-" db:"password_hash"`
	AuthProvider      AuthProvider `json:"auth_provider" db:"auth_provider"`
	GoogleSubjectID   *string      `json:"-" db:"google_subject_id"`
	FirebaseSubjectID *string      `json:"-" db:"firebase_subject_id"`
	IsEmailVerified   bool         `json:"is_email_verified" db:"is_email_verified"`
	OTPCode           *string      `json:"-" db:"otp_code"`
	OTPExpiresAt      *time.Time   `json:"-" db:"otp_expires_at"`
	DateOfBirth       *time.Time   `json:"date_of_birth" db:"date_of_birth"`
	AvatarURL         *string      `json:"avatar_url" db:"avatar_url"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
}

// OTP is a one-time code together with the instant it stops being accepted
type OTP struct {
	Code      string
	ExpiresAt time.Time
}

// HasPendingOTP reports whether a code is waiting to be verified
func (u *User) HasPendingOTP() bool {
	return u.OTPCode != nil && u.OTPExpiresAt != nil
}

// CheckOTP classifies a verification attempt against the stored code.
// The code must match exactly and now must be strictly before the expiry.
func (u *User) CheckOTP(code string, now time.Time) error {
	if !u.HasPendingOTP() || *u.OTPCode != code {
		return ErrInvalidOTP
	}
	if !now.Before(*u.OTPExpiresAt) {
		return ErrOTPExpired
	}
	return nil
}

// CanRequestSigninOTP checks whether the account may sign in with an emailed code
func (u *User) CanRequestSigninOTP() error {
	if !u.IsEmailVerified {
		return ErrNotVerified
	}
	if u.AuthProvider == ProviderFirebase {
		return ErrWrongProvider
	}
	return nil
}

// SubjectID returns the federated subject id stored for the provider
func (u *User) SubjectID(provider AuthProvider) *string {
	switch provider {
	case ProviderGoogle:
		return u.GoogleSubjectID
	case ProviderFirebase:
		return u.FirebaseSubjectID
	}
	return nil
}
