package repository

import (
	"github.com/prperemyshlev/notes-service/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User UserRepository
	Note NoteRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User: NewUserRepository(db),
		Note: NewNoteRepository(db),
	}
}
