package errors

import (
	"errors"
	"fmt"
)

// SourceUnavailableError represents a remote source that could not be reached
// or answered with a non-success status.
type SourceUnavailableError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *SourceUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s unavailable (HTTP %d): %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// NewSourceUnavailableError wraps err as a SourceUnavailableError for source.
func NewSourceUnavailableError(source string, statusCode int, err error) *SourceUnavailableError {
	if err == nil {
		err = errors.New("unexpected response")
	}
	return &SourceUnavailableError{Source: source, StatusCode: statusCode, Err: err}
}

// IsSourceUnavailableError reports whether err is a SourceUnavailableError (even when wrapped).
func IsSourceUnavailableError(err error) bool {
	var target *SourceUnavailableError
	return errors.As(err, &target)
}

// NotFoundError means the source answered but nothing matched the query.
type NotFoundError struct {
	Source string
	Query  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: nothing found for %q", e.Source, e.Query)
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(source, query string) *NotFoundError {
	return &NotFoundError{Source: source, Query: query}
}

// IsNotFoundError reports whether err is a NotFoundError (even when wrapped).
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
