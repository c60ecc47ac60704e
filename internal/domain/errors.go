package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSessionID is returned when a session id is not a valid object id.
	ErrInvalidSessionID = errors.New("invalid session id")
	// ErrSessionNotFound is returned when a well-formed id matches no session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrValidation is returned when a document fails schema validation.
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable marks failed reads and health checks.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStoreWriteFailed marks failed inserts.
	ErrStoreWriteFailed = errors.New("store write failed")
)

// ValidationError lists the schema violations found on a document.
type ValidationError struct {
	Collection string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s document: %s", e.Collection, strings.Join(e.Violations, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// StoreError wraps a backend failure with the operation that hit it.
// Kind is ErrStoreUnavailable or ErrStoreWriteFailed.
type StoreError struct {
	Kind       error
	Op         string // "insert", "find", "ping", "list_collections"
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%v: %s %s: %v", e.Kind, e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// ReadError builds a StoreError for a failed read.
func ReadError(op, collection string, err error) error {
	return &StoreError{Kind: ErrStoreUnavailable, Op: op, Collection: collection, Err: err}
}

// WriteError builds a StoreError for a failed write.
func WriteError(op, collection string, err error) error {
	return &StoreError{Kind: ErrStoreWriteFailed, Op: op, Collection: collection, Err: err}
}
