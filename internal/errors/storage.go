package errors

import (
	"errors"
	"fmt"
)

// CacheIOError represents a failed read or write of a cache namespace.
type CacheIOError struct {
	Namespace string
	Op        string
	Err       error
}

func (e *CacheIOError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Namespace, e.Op, e.Err)
}

func (e *CacheIOError) Unwrap() error {
	return e.Err
}

// NewCacheIOError creates a CacheIOError for the given namespace and operation.
func NewCacheIOError(namespace, op string, err error) *CacheIOError {
	return &CacheIOError{Namespace: namespace, Op: op, Err: err}
}

// IsCacheIOError reports whether err is a CacheIOError (even when wrapped).
func IsCacheIOError(err error) bool {
	var target *CacheIOError
	return errors.As(err, &target)
}

// PosterIOError represents a failure to fetch, decode or store a poster image.
type PosterIOError struct {
	MovieID string
	Op      string
	Err     error
}

func (e *PosterIOError) Error() string {
	if e.MovieID == "" {
		return fmt.Sprintf("poster %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("poster %s for %s: %v", e.Op, e.MovieID, e.Err)
}

func (e *PosterIOError) Unwrap() error {
	return e.Err
}

// NewPosterIOError creates a PosterIOError.
func NewPosterIOError(movieID, op string, err error) *PosterIOError {
	return &PosterIOError{MovieID: movieID, Op: op, Err: err}
}

// IsPosterIOError reports whether err is a PosterIOError (even when wrapped).
func IsPosterIOError(err error) bool {
	var target *PosterIOError
	return errors.As(err, &target)
}
