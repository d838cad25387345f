// Package llm is the generative-content client. Each call carries the
// caller's credential and builds a fresh SDK client from it, so nothing is
// pooled between users. The client never retries and sets no timeout of its
// own; callers decide both.
package llm

import (
	"context"
	"strings"
)

const (
	ServiceGemini    = "gemini"
	ServiceOpenAI    = "openai"
	ServiceAnthropic = "anthropic"
)

// Request is a single-turn text generation request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

type Response struct {
	Text  string
	Model string
	Usage Usage
}

// Provider talks to one upstream service.
type Provider interface {
	Service() string
	Model() string
	Generate(ctx context.Context, apiKey string, req Request) (*Response, error)
}

// NormalizeService lowercases and trims a service name.
func NormalizeService(service string) string {
	s := strings.ToLower(strings.TrimSpace(service))
	switch s {
	case "google", "google-gemini":
		return ServiceGemini
	case "claude":
		return ServiceAnthropic
	}
	return s
}

const defaultMaxTokens = 1024
