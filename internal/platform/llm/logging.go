package llm

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

// CallRecord describes one upstream generation for the call log.
// Prompt and response bodies are not kept, only their sizes.
type CallRecord struct {
	UserID        *uuid.UUID
	Service       string
	Model         string
	Purpose       string
	PromptChars   int
	ResponseChars int
	Latency       time.Duration
	Success       bool
	ErrorClass    string
}

// CallRecorder persists call records.
type CallRecorder interface {
	RecordCall(ctx context.Context, rec CallRecord) error
}

// CallObserver receives per-call outcomes, typically for metrics.
type CallObserver interface {
	ObserveLLMCall(service, outcome string, latency time.Duration)
}

// LoggingProvider records every call made through the wrapped provider.
type LoggingProvider struct {
	inner    Provider
	recorder CallRecorder
	observer CallObserver
	log      *logger.Logger
}

// WithLogging wraps p. recorder and observer may be nil.
func WithLogging(p Provider, recorder CallRecorder, observer CallObserver, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{
		inner:    p,
		recorder: recorder,
		observer: observer,
		log:      log.With("component", "llm", "service", p.Service()),
	}
}

func (l *LoggingProvider) Service() string { return l.inner.Service() }
func (l *LoggingProvider) Model() string   { return l.inner.Model() }

func (l *LoggingProvider) Generate(ctx context.Context, apiKey string, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, apiKey, req)
	latency := time.Since(start)

	rec := CallRecord{
		Service:     l.inner.Service(),
		Model:       l.inner.Model(),
		Purpose:     PurposeFrom(ctx),
		PromptChars: len(req.System) + len(req.Prompt),
		Latency:     latency,
		Success:     err == nil,
		ErrorClass:  ErrorClass(err),
	}
	if uid, ok := CallerFrom(ctx); ok {
		rec.UserID = &uid
	}
	if resp != nil {
		rec.ResponseChars = len(resp.Text)
		if resp.Model != "" {
			rec.Model = resp.Model
		}
	}

	outcome := "success"
	if err != nil {
		outcome = rec.ErrorClass
		l.log.Warn("llm call failed", "purpose", rec.Purpose, "error_class", rec.ErrorClass, "latency_ms", latency.Milliseconds())
	} else {
		l.log.Debug("llm call", "purpose", rec.Purpose, "model", rec.Model, "latency_ms", latency.Milliseconds())
	}
	if l.observer != nil {
		l.observer.ObserveLLMCall(rec.Service, outcome, latency)
	}
	if l.recorder != nil {
		// The call log must never fail the request it describes.
		if logErr := l.recorder.RecordCall(context.WithoutCancel(ctx), rec); logErr != nil {
			l.log.Warn("failed to record llm call", "error", logErr)
		}
	}
	return resp, err
}
