package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique key is already taken.
	ErrAlreadyExists = errors.New("already exists")
)

// ValidationError reports missing or malformed input fields.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

// Invalid builds a ValidationError for the given fields.
func Invalid(message string, fields ...string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// NotFoundError names the entity that could not be resolved.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound returns an error matching ErrNotFound with a readable message.
func NotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// ConflictError carries a client-facing message for a duplicate key.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return ErrAlreadyExists }

// Conflict returns an error matching ErrAlreadyExists.
func Conflict(message string) error {
	return &ConflictError{Message: message}
}
