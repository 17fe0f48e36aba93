package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/internal/repository"
)

const (
	maxTitleLength   = 200
	maxContentLength = 10000
	maxTags          = 10
	maxTagLength     = 30
)

// noteService implements NoteService interface
type noteService struct {
	noteRepo repository.NoteRepository
}

// NewNoteService creates a new note service
func NewNoteService(noteRepo repository.NoteRepository) NoteService {
	return &noteService{noteRepo: noteRepo}
}

func validateTitle(title string) error {
	if n := utf8.RuneCountInString(title); n < 1 || n > maxTitleLength {
		return validationError(fmt.Sprintf("title must be between 1 and %d characters", maxTitleLength))
	}
	return nil
}

func validateContent(content string) error {
	if utf8.RuneCountInString(content) > maxContentLength {
		return validationError(fmt.Sprintf("content must be at most %d characters", maxContentLength))
	}
	return nil
}

func validateTags(tags []string) error {
	if len(tags) > maxTags {
		return validationError(fmt.Sprintf("at most %d tags are allowed", maxTags))
	}
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > maxTagLength {
			return validationError(fmt.Sprintf("tags must be at most %d characters", maxTagLength))
		}
	}
	return nil
}

// noteError maps repository failures to domain errors
func noteError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrNotFound
	}
	return dependencyError(op, err)
}

// validNoteID reports whether id can name a note; anything else cannot exist
func validNoteID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// List returns the user's notes, pinned first then most recently updated
func (s *noteService) List(ctx context.Context, userID string) ([]*domain.Note, error) {
	notes, err := s.noteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, dependencyError("list notes", err)
	}
	return notes, nil
}

// Search finds the user's notes whose title, content or a tag contains query
func (s *noteService) Search(ctx context.Context, userID, query string) ([]*domain.Note, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationError("search query is required")
	}

	notes, err := s.noteRepo.Search(ctx, userID, query)
	if err != nil {
		return nil, dependencyError("search notes", err)
	}
	return notes, nil
}

// Create stores a new note owned by userID
func (s *noteService) Create(ctx context.Context, userID string, input *NoteInput) (*domain.Note, error) {
	title := strings.TrimSpace(input.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateContent(input.Content); err != nil {
		return nil, err
	}
	if err := validateTags(input.Tags); err != nil {
		return nil, err
	}

	note := &domain.Note{
		UserID:   userID,
		Title:    title,
		Content:  input.Content,
		Tags:     input.Tags,
		IsPinned: input.IsPinned,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, dependencyError("create note", err)
	}
	return note, nil
}

// Get returns one of the user's notes
func (s *noteService) Get(ctx context.Context, userID, id string) (*domain.Note, error) {
	if !validNoteID(id) {
		return nil, domain.ErrNotFound
	}

	note, err := s.noteRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, noteError("get note", err)
	}
	return note, nil
}

// Update applies a partial update to one of the user's notes
func (s *noteService) Update(ctx context.Context, userID, id string, update domain.NoteUpdate) (*domain.Note, error) {
	if !validNoteID(id) {
		return nil, domain.ErrNotFound
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		update.Title = &title
	}
	if update.Content != nil {
		if err := validateContent(*update.Content); err != nil {
			return nil, err
		}
	}
	if update.Tags != nil {
		if err := validateTags(*update.Tags); err != nil {
			return nil, err
		}
	}

	if update.Empty() {
		return s.Get(ctx, userID, id)
	}

	note, err := s.noteRepo.Update(ctx, userID, id, update)
	if err != nil {
		return nil, noteError("update note", err)
	}
	return note, nil
}

// Delete removes one of the user's notes
func (s *noteService) Delete(ctx context.Context, userID, id string) error {
	if !validNoteID(id) {
		return domain.ErrNotFound
	}

	if err := s.noteRepo.Delete(ctx, userID, id); err != nil {
		return noteError("delete note", err)
	}
	return nil
}
