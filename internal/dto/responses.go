package dto

import (
	"time"

	"github.com/prperemyshlev/notes-service/internal/domain"
)

// DateLayout is the wire format of calendar dates such as dateOfBirth
const DateLayout = "2006-01-02"

// NewUserInfo builds the public profile of user
func NewUserInfo(user *domain.User) UserInfo {
	info := UserInfo{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Avatar:       user.AvatarURL,
		AuthProvider: string(user.AuthProvider),
	}
	if user.DateOfBirth != nil {
		dob := user.DateOfBirth.Format(DateLayout)
		info.DateOfBirth = &dob
	}
	return info
}

// NewUserResponse builds the profile view of user, without credentials or OTP state
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserInfo:        NewUserInfo(user),
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       user.UpdatedAt.Format(time.RFC3339),
	}
}

// NewNoteResponse converts a note for the wire
func NewNoteResponse(note *domain.Note) NoteResponse {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	return NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		Tags:      tags,
		IsPinned:  note.IsPinned,
		CreatedAt: note.CreatedAt.Format(time.RFC3339),
		UpdatedAt: note.UpdatedAt.Format(time.RFC3339),
	}
}

// NewNoteResponses converts a list of notes, never returning nil
func NewNoteResponses(notes []*domain.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, note := range notes {
		out = append(out, NewNoteResponse(note))
	}
	return out
}
