package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates a referenced node, plan or keyword does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is the parent of every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrHasChildren is returned when deleting a node with descendants
	// without requesting a subtree delete.
	ErrHasChildren = errors.New("node has children")

	// ErrInvalidMove is returned when a move would place a node under
	// itself or one of its descendants.
	ErrInvalidMove = errors.New("invalid move")
)

// ValidationError reports a rejected field. It blocks persistence and is
// never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", strings.ToLower(e.Field), e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
