// Package apperr defines the error taxonomy shared by the edge API and its clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"
)

// ValidationError reports malformed or missing client input (400).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Validation returns a ValidationError for field.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a missing resource (404).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.Resource == "" {
		return "Not Found"
	}
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// UpstreamError reports a failing dependency: storage, vector index, inference
// or the chat completions API (500).
type UpstreamError struct {
	Dependency string
	StatusCode int // upstream HTTP status when known
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := e.Dependency
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg + " failed"
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err as a failure of dependency. An err that already is an
// UpstreamError is returned unchanged.
func Upstream(dependency string, err error) error {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Dependency: dependency, Err: err}
}

// StreamParseError reports one malformed SSE line. It is recovered locally by
// skipping the line and never reaches the user.
type StreamParseError struct {
	Line string
	Err  error
}

func (e *StreamParseError) Error() string {
	return fmt.Sprintf("malformed stream chunk %q: %v", e.Line, e.Err)
}

func (e *StreamParseError) Unwrap() error { return e.Err }

// HTTPStatus maps err onto the status code the edge API responds with.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		ne *NotFoundError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ne):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

const redactedPlaceholder = "•••redacted•••"

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9_\-]{20,}`)

// Redact masks every token-like run (20+ alphanumerics, hyphens or underscores)
// so keys echoed by upstream error text never reach a response body.
func Redact(s string) string {
	return tokenPattern.ReplaceAllString(s, redactedPlaceholder)
}

// Envelope is the JSON body of every error response.
type Envelope struct {
	Error         string `json:"error"`
	Status        int    `json:"status"`
	Timestamp     string `json:"timestamp"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// NewEnvelope builds the error body for err with a redacted message.
func NewEnvelope(err error, status int, correlationID string, now time.Time) Envelope {
	msg := "Unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Envelope{
		Error:         Redact(msg),
		Status:        status,
		Timestamp:     now.UTC().Format("2006-01-02T15:04:05.000Z"),
		CorrelationID: correlationID,
	}
}
