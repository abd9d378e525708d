package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthenticated is returned when an action needs a session and none is present.
	ErrUnauthenticated = errors.New("sign in required")
	// ErrNotAuthor is returned when an author-only action is attempted by someone else.
	ErrNotAuthor = errors.New("you are not authorized to edit this project")
	// ErrValidation is returned when a form fails its required-field checks.
	ErrValidation = errors.New("validation failed")
	// ErrEmptyComment is returned when a comment has no text after trimming.
	ErrEmptyComment = errors.New("comment text is empty")
	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("action cancelled")
	// ErrNotLoaded is returned when an action needs state that has not been fetched yet.
	ErrNotLoaded = errors.New("nothing loaded")
)

// Kind classifies a failure the way screens react to it.
type Kind int

const (
	// KindUnknown is any failure not covered by the other kinds.
	KindUnknown Kind = iota
	// KindAuthRequired means no request was issued and a sign-in prompt is due.
	KindAuthRequired
	// KindValidation means the submitted data was rejected, locally or by the server.
	KindValidation
	// KindNotFound means the server had nothing under the requested id.
	KindNotFound
	// KindServer means the request failed in transport or with a 5xx.
	KindServer
)

// ErrorResponse is the error body the API returns.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// APIError represents a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// NewAPIError creates a new API error.
func NewAPIError(statusCode int, message, method, path string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Method:     method,
		Path:       path,
	}
}

// FromResponse builds an APIError from a decoded error body.
func FromResponse(statusCode int, body ErrorResponse, method, path string) *APIError {
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	return NewAPIError(statusCode, strings.TrimSpace(msg), method, path)
}

// ValidationError lists the fields that failed the required-field checks.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid: " + strings.Join(e.Fields, ", ")
}

// Unwrap lets callers match ErrValidation with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Classify maps an error onto a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrUnauthenticated) {
		return KindAuthRequired
	}
	if errors.Is(err, ErrValidation) {
		return KindValidation
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized:
			return KindAuthRequired
		case apiErr.StatusCode == http.StatusNotFound:
			return KindNotFound
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			return KindValidation
		}
	}
	return KindServer
}

// UserMessage returns the text to show for err: the server-provided message
// when there is one, the validation detail for local checks, otherwise fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	return fallback
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }
