// Package ctxutil carries per-request values through context.Context.
package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type (
	requestDataKey struct{}
	traceDataKey   struct{}
)

// RequestData is the authenticated caller attached by the auth middleware.
type RequestData struct {
	UserID uuid.UUID
	Admin  bool
}

// TraceData correlates log lines for one request.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	rd, _ := ctx.Value(requestDataKey{}).(*RequestData)
	return rd
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	td, _ := ctx.Value(traceDataKey{}).(*TraceData)
	return td
}
