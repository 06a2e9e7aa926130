package domain

import "fmt"

// ValidationError rejects input locally, before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError for field.
func Invalid(field string, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// CaptureError reports a media capability failure (microphone, recogniser, playback).
type CaptureError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *CaptureError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// DomainError is a failure reported inside an otherwise successful response.
type DomainError struct {
	Feature Feature
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}
