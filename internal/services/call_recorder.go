package services

import (
	"context"

	"github.com/yungbote/skillpath-backend/internal/data/repos"
	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/llm"
)

// CallLogRecorder persists llm call records to ai_call_log.
type CallLogRecorder struct {
	repo repos.AICallLogRepo
}

func NewCallLogRecorder(repo repos.AICallLogRepo) *CallLogRecorder {
	return &CallLogRecorder{repo: repo}
}

func (r *CallLogRecorder) RecordCall(ctx context.Context, rec llm.CallRecord) error {
	_, err := r.repo.Create(dbctx.New(ctx), []*types.AICallLog{{
		UserID:        rec.UserID,
		Service:       rec.Service,
		Model:         rec.Model,
		Purpose:       rec.Purpose,
		PromptChars:   rec.PromptChars,
		ResponseChars: rec.ResponseChars,
		LatencyMS:     rec.Latency.Milliseconds(),
		Success:       rec.Success,
		ErrorClass:    rec.ErrorClass,
	}})
	return err
}
