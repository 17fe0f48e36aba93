package domain

import "errors"

// Errors surfaced by the identity, session and notes flows.
// Each maps to one caller-visible code.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("user already exists with this email")
	ErrInvalidOTP        = errors.New("invalid OTP")
	ErrOTPExpired        = errors.New("OTP has expired")
	ErrNotVerified       = errors.New("please complete your signup first")
	ErrWrongProvider     = errors.New("please use Google sign-in for this account")
	ErrTooManyAttempts   = errors.New("too many verification attempts, request a new OTP")
	ErrNoToken           = errors.New("access denied, no token provided")
	ErrTokenExpired      = errors.New("token expired, please sign in again")
	ErrInvalidToken      = errors.New("invalid token")
	ErrDependencyFailure = errors.New("internal server error")
)
