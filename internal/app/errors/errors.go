package errors

import (
	"fmt"
)

// Common error values for the pipeline
var (
	// Request validation errors
	ErrMissingChunkKey  = New("chunk key is required")
	ErrMissingSessionID = New("session id is required")
	ErrMissingKey       = New("key is required")

	// Chunk processing errors
	ErrDownloadFailed      = New("chunk download failed")
	ErrInvalidAudio        = New("audio file is invalid and could not be repaired")
	ErrTranscodeFailed     = New("audio transcode failed")
	ErrTranscriptionFailed = New("transcription failed")

	// Session errors
	ErrNoResults           = New("no results found for this session")
	ErrSummarizationFailed = New("summary generation failed")
	ErrPersistenceFailed   = New("failed to persist result")

	// Record store errors
	ErrRecordNotFound = New("recording not found")
)

// Error is a message with an optional cause, comparable by message.
type Error struct {
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message
}

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Newf("%s is required", field)
}

// NotFound returns an error for items that were not found
func NotFound(itemType string, identifier string) error {
	return Newf("%s not found: %s", itemType, identifier)
}
