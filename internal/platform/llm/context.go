package llm

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	callerKey  contextKey = "llm_caller"
)

// WithPurpose labels the calls made with ctx for the call log.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// WithCaller attributes the calls made with ctx to a user.
func WithCaller(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, callerKey, userID)
}

func CallerFrom(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(callerKey).(uuid.UUID)
	if !ok || v == uuid.Nil {
		return uuid.Nil, false
	}
	return v, true
}
