package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/internal/repository"
)

// memoryUserRepo mirrors the conditional statements of the postgres repository
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User)}
}

func clone(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *memoryUserRepo) byEmail(email string) *domain.User {
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// checkName mirrors the users.name CHECK constraint
func checkName(name string) error {
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return fmt.Errorf("pq: new row violates check constraint \"users_name_check\" (%d runes)", n)
	}
	return nil
}

func (r *memoryUserRepo) bySubject(provider domain.AuthProvider, subjectID string) *domain.User {
	for _, u := range r.users {
		if s := u.SubjectID(provider); s != nil && *s == subjectID {
			return u
		}
	}
	return nil
}

func (r *memoryUserRepo) UpsertPendingSignup(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if err := checkName(user.Name); err != nil {
		return nil, err
	}

	if existing := r.byEmail(user.Email); existing != nil {
		if existing.IsEmailVerified {
			return nil, repository.ErrConditionFailed
		}
		existing.Name = user.Name
		existing.DateOfBirth = user.DateOfBirth
		existing.OTPCode = user.OTPCode
		existing.OTPExpiresAt = user.OTPExpiresAt
		existing.UpdatedAt = time.Now()
		return clone(existing), nil
	}

	stored := clone(user)
	stored.ID = uuid.New().String()
	stored.AuthProvider = domain.ProviderEmail
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.users[stored.ID] = stored
	return clone(stored), nil
}

func (r *memoryUserRepo) IssueOTP(_ context.Context, email string, otp domain.OTP, forSignin bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}

	u := r.byEmail(email)
	if u == nil {
		return nil, repository.ErrConditionFailed
	}
	if forSignin && (!u.IsEmailVerified || u.AuthProvider == domain.ProviderFirebase) {
		return nil, repository.ErrConditionFailed
	}
	code, expiresAt := otp.Code, otp.ExpiresAt
	u.OTPCode = &code
	u.OTPExpiresAt = &expiresAt
	return clone(u), nil
}

func (r *memoryUserRepo) ConsumeOTP(_ context.Context, email, code string, now time.Time, markVerified bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}

	u := r.byEmail(email)
	if u == nil || u.OTPCode == nil || *u.OTPCode != code || !u.OTPExpiresAt.After(now) {
		return nil, repository.ErrConditionFailed
	}
	u.OTPCode = nil
	u.OTPExpiresAt = nil
	u.IsEmailVerified = u.IsEmailVerified || markVerified
	return clone(u), nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.byEmail(email); u != nil {
		return clone(u), nil
	}
	return nil, repository.ErrNotFound
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if u, ok := r.users[id]; ok {
		return clone(u), nil
	}
	return nil, repository.ErrNotFound
}

func (r *memoryUserRepo) TouchBySubject(_ context.Context, provider domain.AuthProvider, subjectID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.bySubject(provider, subjectID); u != nil {
		u.UpdatedAt = time.Now()
		return clone(u), nil
	}
	return nil, repository.ErrNotFound
}

func (r *memoryUserRepo) UpsertFederated(_ context.Context, user *domain.User, provider domain.AuthProvider, subjectID string) (*domain.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := checkName(user.Name); err != nil {
		return nil, false, err
	}

	if owner := r.bySubject(provider, subjectID); owner != nil && owner.Email != user.Email {
		return nil, false, repository.ErrDuplicateSubject
	}

	subject := subjectID
	if existing := r.byEmail(user.Email); existing != nil {
		if existing.SubjectID(provider) == nil {
			setSubject(existing, provider, &subject)
			existing.AuthProvider = provider
			if existing.AvatarURL == nil {
				existing.AvatarURL = user.AvatarURL
			}
		}
		existing.UpdatedAt = time.Now()
		return clone(existing), false, nil
	}

	stored := clone(user)
	stored.ID = uuid.New().String()
	stored.AuthProvider = provider
	stored.IsEmailVerified = true
	setSubject(stored, provider, &subject)
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.users[stored.ID] = stored
	return clone(stored), true, nil
}

func setSubject(u *domain.User, provider domain.AuthProvider, subjectID *string) {
	switch provider {
	case domain.ProviderGoogle:
		u.GoogleSubjectID = subjectID
	case domain.ProviderFirebase:
		u.FirebaseSubjectID = subjectID
	}
}

func (r *memoryUserRepo) UpdateProfile(_ context.Context, id string, name *string, dateOfBirth *time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if name != nil {
		u.Name = *name
	}
	if dateOfBirth != nil {
		u.DateOfBirth = dateOfBirth
	}
	return clone(u), nil
}

func (r *memoryUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *memoryUserRepo) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

// recordingMailer keeps the last code sent to each address
type recordingMailer struct {
	mu         sync.Mutex
	codes      map[string]string
	welcomed   []string
	otpErr     error
	welcomeErr error
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{codes: make(map[string]string)}
}

func (m *recordingMailer) SendOTP(_ context.Context, to, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.otpErr != nil {
		return m.otpErr
	}
	m.codes[to] = code
	return nil
}

func (m *recordingMailer) SendWelcome(_ context.Context, to, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.welcomeErr != nil {
		return m.welcomeErr
	}
	m.welcomed = append(m.welcomed, to)
	return nil
}

func (m *recordingMailer) lastCode(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

// testClock is a manually advanced clock
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryNoteRepo is an in-memory NoteRepository
type memoryNoteRepo struct {
	notes map[string]*domain.Note
	err   error
}

func newMemoryNoteRepo() *memoryNoteRepo {
	return &memoryNoteRepo{notes: make(map[string]*domain.Note)}
}

func (r *memoryNoteRepo) Create(_ context.Context, note *domain.Note) error {
	if r.err != nil {
		return r.err
	}
	note.ID = uuid.New().String()
	c := *note
	r.notes[note.ID] = &c
	return nil
}

func (r *memoryNoteRepo) GetByID(_ context.Context, userID, id string) (*domain.Note, error) {
	if n, ok := r.notes[id]; ok && n.UserID == userID {
		c := *n
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memoryNoteRepo) ListByUser(_ context.Context, userID string) ([]*domain.Note, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := []*domain.Note{}
	for _, n := range r.notes {
		if n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memoryNoteRepo) Search(ctx context.Context, userID, _ string) ([]*domain.Note, error) {
	return r.ListByUser(ctx, userID)
}

func (r *memoryNoteRepo) Update(_ context.Context, userID, id string, update domain.NoteUpdate) (*domain.Note, error) {
	n, ok := r.notes[id]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if update.Title != nil {
		n.Title = *update.Title
	}
	if update.Content != nil {
		n.Content = *update.Content
	}
	if update.Tags != nil {
		n.Tags = *update.Tags
	}
	if update.IsPinned != nil {
		n.IsPinned = *update.IsPinned
	}
	c := *n
	return &c, nil
}

func (r *memoryNoteRepo) Delete(_ context.Context, userID, id string) error {
	n, ok := r.notes[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.notes, id)
	return nil
}

var errStoreDown = errors.New("connection refused")
