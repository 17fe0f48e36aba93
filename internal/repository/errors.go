package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateSubject is returned when a federated subject id is already linked to another user
	ErrDuplicateSubject = errors.New("federated subject already linked to another user")

	// ErrConditionFailed is returned when a conditional write matched no row
	ErrConditionFailed = errors.New("conditional update matched no row")
)
