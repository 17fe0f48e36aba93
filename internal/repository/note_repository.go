package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/pkg/database"
)

const noteColumns = `id, user_id, title, content, tags, is_pinned, created_at, updated_at`

const noteOrder = `ORDER BY is_pinned DESC, updated_at DESC`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// noteRepository implements NoteRepository interface
type noteRepository struct {
	db *database.Postgres
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *database.Postgres) NoteRepository {
	return &noteRepository{db: db}
}

func scanNote(row rowScanner) (*domain.Note, error) {
	note := &domain.Note{}
	var tags pq.StringArray

	err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Content,
		&tags,
		&note.IsPinned,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	note.Tags = []string(tags)
	if note.Tags == nil {
		note.Tags = []string{}
	}

	return note, nil
}

func (r *noteRepository) queryNotes(ctx context.Context, query string, args ...any) ([]*domain.Note, error) {
	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]*domain.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

// Create creates a new note
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	query := `
		INSERT INTO notes (id, user_id, title, content, tags, is_pinned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if note.ID == "" {
		note.ID = uuid.New().String()
	}

	now := time.Now()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = now
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		pq.Array(note.Tags),
		note.IsPinned,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// GetByID retrieves a note owned by userID
func (r *noteRepository) GetByID(ctx context.Context, userID, id string) (*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1 AND user_id = $2`

	note, err := scanNote(r.db.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("note %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

// ListByUser returns the user's notes, pinned first then most recently updated
func (r *noteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = $1 ` + noteOrder

	notes, err := r.queryNotes(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, nil
}

// Search matches query case-insensitively as a substring of title, content or any tag
func (r *noteRepository) Search(ctx context.Context, userID, query string) ([]*domain.Note, error) {
	sqlQuery := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE user_id = $1
			AND (title ILIKE $2
				OR content ILIKE $2
				OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE $2))
		` + noteOrder

	pattern := "%" + likeEscaper.Replace(query) + "%"

	notes, err := r.queryNotes(ctx, sqlQuery, userID, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}

	return notes, nil
}

// Update applies the non-nil fields of update to a note owned by userID
func (r *noteRepository) Update(ctx context.Context, userID, id string, update domain.NoteUpdate) (*domain.Note, error) {
	query := `
		UPDATE notes
		SET title = COALESCE($3, title),
			content = COALESCE($4, content),
			tags = COALESCE($5::text[], tags),
			is_pinned = COALESCE($6, is_pinned),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + noteColumns

	var tags any
	if update.Tags != nil {
		tags = pq.Array(*update.Tags)
	}

	note, err := scanNote(r.db.DB.QueryRowContext(ctx, query,
		id,
		userID,
		update.Title,
		update.Content,
		tags,
		update.IsPinned,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("note %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	return note, nil
}

// Delete removes a note owned by userID
func (r *noteRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("note %s not found: %w", id, ErrNotFound)
	}

	return nil
}
