package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidCredential means the upstream rejected the API key.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrRateLimited means the upstream throttled the request.
	ErrRateLimited = errors.New("rate limited")
	// ErrUpstream covers every other upstream failure.
	ErrUpstream = errors.New("upstream error")

	ErrUnknownService = errors.New("unknown generative service")
)

// Error is a classified upstream failure. errors.Is matches Kind.
type Error struct {
	Kind    error
	Service string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Service, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

// ErrorClass is a short label for logs and metrics.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUnknownService):
		return "unknown_service"
	default:
		return "upstream"
	}
}

// classify maps an HTTP status and upstream message to an error kind.
// Gemini reports bad keys as 400 INVALID_ARGUMENT, so the message is
// consulted for that case.
func classify(service string, status int, message string, err error) error {
	kind := ErrUpstream
	msg := strings.ToLower(message)
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		kind = ErrInvalidCredential
	case (status == http.StatusBadRequest || status == 0) && mentionsBadKey(msg):
		kind = ErrInvalidCredential
	case status == http.StatusTooManyRequests:
		kind = ErrRateLimited
	}
	return &Error{Kind: kind, Service: service, Status: status, Err: err}
}

func mentionsBadKey(msg string) bool {
	return strings.Contains(msg, "api key not valid") ||
		strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "invalid x-api-key") ||
		strings.Contains(msg, "incorrect api key") ||
		strings.Contains(msg, "api_key_invalid")
}
