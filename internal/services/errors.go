package services

import (
	"errors"

	"github.com/yungbote/skillpath-backend/internal/platform/llm"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrActivityNotFound   = errors.New("activity not found")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrMissingCredential  = errors.New("no api key configured for this service")
	ErrUnsupportedService = errors.New("unsupported generative service")
	ErrInvalidInput       = errors.New("invalid input")
)

// GenerationMessage turns a generative-content failure into text that can be
// shown to the user.
func GenerationMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return "No API key is configured. Add one in settings to use AI features."
	case errors.Is(err, llm.ErrInvalidCredential):
		return "The API key was rejected. Check the key in settings and try again."
	case errors.Is(err, llm.ErrRateLimited):
		return "The AI service is rate limiting requests. Please try again in a moment."
	case errors.Is(err, llm.ErrUnknownService), errors.Is(err, ErrUnsupportedService):
		return "That AI service is not supported."
	default:
		return "The AI service failed to respond. Please try again later."
	}
}
