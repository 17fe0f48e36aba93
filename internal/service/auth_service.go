package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/internal/dto"
	"github.com/prperemyshlev/notes-service/internal/repository"
	"github.com/prperemyshlev/notes-service/internal/utils"
	"github.com/prperemyshlev/notes-service/pkg/observability"
	"go.uber.org/zap"
)

const (
	flowSignup    = "signup"
	flowSignin    = "signin"
	flowResend    = "resend"
	flowFederated = "federated"

	defaultFederatedName = "Google User"

	minNameLength = 2
	maxNameLength = 50
)

// authService implements AuthService interface
type authService struct {
	userRepo repository.UserRepository
	otp      OTPIssuer
	tokens   TokenIssuer
	mailer   Mailer
	attempts AttemptLimiter
	metrics  *observability.AuthMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// AuthServiceDeps groups the collaborators of the identity flows
type AuthServiceDeps struct {
	Users    repository.UserRepository
	OTP      OTPIssuer
	Tokens   TokenIssuer
	Mailer   Mailer
	Attempts AttemptLimiter
	Metrics  *observability.AuthMetrics
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(deps AuthServiceDeps) AuthService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &authService{
		userRepo: deps.Users,
		otp:      deps.OTP,
		tokens:   deps.Tokens,
		mailer:   deps.Mailer,
		attempts: deps.Attempts,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		now:      deps.Now,
	}
}

func dependencyError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrDependencyFailure, err)
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}

func normalizeEmail(email string) (string, error) {
	email = utils.SanitizeEmail(email)
	if !utils.ValidateEmail(email) {
		return "", validationError("invalid email format")
	}
	return email, nil
}

// Signup creates or refreshes an unverified account and mails it a code
func (s *authService) Signup(ctx context.Context, req *SignupInput) (string, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(req.Name)
	if l := len([]rune(name)); l < minNameLength || l > maxNameLength {
		return "", validationError("name must be between 2 and 50 characters")
	}
	if req.DateOfBirth.IsZero() || req.DateOfBirth.After(s.now()) {
		return "", validationError("date of birth must be in the past")
	}

	otp, err := s.otp.Issue()
	if err != nil {
		return "", dependencyError("issue otp", err)
	}

	dob := req.DateOfBirth
	user, err := s.userRepo.UpsertPendingSignup(ctx, &domain.User{
		Name:         name,
		Email:        email,
		DateOfBirth:  &dob,
		OTPCode:      &otp.Code,
		OTPExpiresAt: &otp.ExpiresAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return "", domain.ErrAlreadyExists
		}
		return "", dependencyError("store signup", err)
	}

	if err := s.dispatchOTP(ctx, user, otp, flowSignup); err != nil {
		return "", err
	}

	return user.Email, nil
}

// VerifySignup completes a signup: the code is consumed and the email marked verified
func (s *authService) VerifySignup(ctx context.Context, email, code string) (*dto.AuthResponse, error) {
	user, err := s.consumeOTP(ctx, email, code, true, flowSignup)
	if err != nil {
		return nil, err
	}

	s.sendWelcome(ctx, user)

	return s.issueSession(ctx, user, flowSignup)
}

// Signin mails a fresh code to a verified, non-firebase account
func (s *authService) Signin(ctx context.Context, email string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}

	otp, err := s.otp.Issue()
	if err != nil {
		return "", dependencyError("issue otp", err)
	}

	user, err := s.userRepo.IssueOTP(ctx, email, otp, true)
	if err != nil {
		if !errors.Is(err, repository.ErrConditionFailed) {
			return "", dependencyError("store otp", err)
		}
		return "", s.classifySigninRefusal(ctx, email)
	}

	if err := s.dispatchOTP(ctx, user, otp, flowSignin); err != nil {
		return "", err
	}

	return user.Email, nil
}

// VerifySignin consumes the code and issues a token without touching verification state
func (s *authService) VerifySignin(ctx context.Context, email, code string) (*dto.AuthResponse, error) {
	user, err := s.consumeOTP(ctx, email, code, false, flowSignin)
	if err != nil {
		return nil, err
	}

	return s.issueSession(ctx, user, flowSignin)
}

// ResendOTP replaces any pending code of the account and mails the new one
func (s *authService) ResendOTP(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	otp, err := s.otp.Issue()
	if err != nil {
		return dependencyError("issue otp", err)
	}

	user, err := s.userRepo.IssueOTP(ctx, email, otp, false)
	if err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return domain.ErrNotFound
		}
		return dependencyError("store otp", err)
	}

	return s.dispatchOTP(ctx, user, otp, flowResend)
}

// FederatedSignin resolves a provider assertion by subject id, then by email, else creates a
// verified account. Repeated calls only bump updated_at and mint a new token.
func (s *authService) FederatedSignin(ctx context.Context, req *FederatedInput) (*dto.AuthResponse, error) {
	if !req.Provider.IsFederated() {
		return nil, validationError("unsupported provider")
	}
	subjectID := strings.TrimSpace(req.SubjectID)
	if subjectID == "" {
		return nil, validationError("subject id and email are required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, validationError("subject id and email are required")
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.TouchBySubject(ctx, req.Provider, subjectID)
	if err == nil {
		return s.issueSession(ctx, user, flowFederated)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, dependencyError("lookup subject", err)
	}

	candidate := &domain.User{Name: federatedName(req.Name), Email: email}
	if avatar := strings.TrimSpace(req.AvatarURL); avatar != "" {
		candidate.AvatarURL = &avatar
	}

	user, created, err := s.userRepo.UpsertFederated(ctx, candidate, req.Provider, subjectID)
	if errors.Is(err, repository.ErrDuplicateSubject) {
		// another request linked the subject first
		user, err = s.userRepo.TouchBySubject(ctx, req.Provider, subjectID)
	}
	if err != nil {
		return nil, dependencyError("link federated account", err)
	}
	if linked := user.SubjectID(req.Provider); linked != nil && *linked != subjectID {
		s.logger.Warn("email already linked to another subject",
			zap.String("user_id", user.ID),
			zap.String("provider", string(req.Provider)),
		)
	}

	if created {
		s.logger.Info("federated account created",
			zap.String("user_id", user.ID),
			zap.String("provider", string(req.Provider)),
		)
		s.sendWelcome(ctx, user)
	}

	return s.issueSession(ctx, user, flowFederated)
}

// federatedName fits a provider display name into the stored name bounds.
// Names too short to keep fall back to defaultFederatedName.
func federatedName(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) > maxNameLength {
		runes = []rune(strings.TrimSpace(string(runes[:maxNameLength])))
	}
	if len(runes) < minNameLength {
		return defaultFederatedName
	}
	return string(runes)
}

// consumeOTP clears a matching, unexpired code in one conditional update and
// classifies the refusal by reading the account back when it does not apply
func (s *authService) consumeOTP(ctx context.Context, email, code string, markVerified bool, flow string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if !utils.ValidateOTP(code) {
		return nil, validationError("otp must be 6 digits")
	}

	if err := s.attempts.Check(ctx, email); err != nil {
		if errors.Is(err, domain.ErrTooManyAttempts) {
			s.metrics.OTPVerifyFailed(ctx, flow, "too_many_attempts")
			return nil, err
		}
		return nil, dependencyError("check otp attempts", err)
	}

	now := s.now()
	user, err := s.userRepo.ConsumeOTP(ctx, email, code, now, markVerified)
	if err == nil {
		if err := s.attempts.Reset(ctx, email); err != nil {
			s.logger.Warn("failed to reset otp attempts", zap.String("email", email), zap.Error(err))
		}
		return user, nil
	}
	if !errors.Is(err, repository.ErrConditionFailed) {
		return nil, dependencyError("consume otp", err)
	}

	current, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, dependencyError("load account", err)
	}

	reason := current.CheckOTP(code, now)
	if reason == nil {
		// consumed concurrently between the update and the read
		reason = domain.ErrInvalidOTP
	}

	if err := s.attempts.RecordFailure(ctx, email); err != nil {
		return nil, dependencyError("record otp attempt", err)
	}

	label := "invalid"
	if errors.Is(reason, domain.ErrOTPExpired) {
		label = "expired"
	}
	s.metrics.OTPVerifyFailed(ctx, flow, label)

	return nil, reason
}

func (s *authService) classifySigninRefusal(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return dependencyError("load account", err)
	}
	if err := user.CanRequestSigninOTP(); err != nil {
		return err
	}
	return dependencyError("issue signin otp", errors.New("account changed concurrently"))
}

// dispatchOTP resets the attempt budget for the new code and mails it.
// A delivery failure fails the request; the stored code stays valid.
func (s *authService) dispatchOTP(ctx context.Context, user *domain.User, otp domain.OTP, flow string) error {
	if err := s.attempts.Reset(ctx, user.Email); err != nil {
		return dependencyError("reset otp attempts", err)
	}

	if err := s.mailer.SendOTP(ctx, user.Email, user.Name, otp.Code); err != nil {
		s.logger.Error("failed to send otp email",
			zap.String("user_id", user.ID),
			zap.String("flow", flow),
			zap.Error(err),
		)
		return dependencyError("send otp email", err)
	}

	s.metrics.OTPIssued(ctx, flow)
	return nil
}

// sendWelcome never fails the surrounding flow
func (s *authService) sendWelcome(ctx context.Context, user *domain.User) {
	if err := s.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
		s.logger.Warn("failed to send welcome email",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}
