package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skillpath-backend/internal/data/repos"
	"github.com/yungbote/skillpath-backend/internal/grading"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

type SubmissionResult struct {
	Result   grading.Result
	XPGained int
	NewLevel int
	NewXP    int
	Attempts int
}

// SubmissionObserver receives graded outcomes, typically for metrics.
type SubmissionObserver interface {
	ObserveSubmission(activityType string, passed bool)
}

// SubmissionService runs grade, ledger and proficiency for one submission.
type SubmissionService interface {
	Submit(ctx context.Context, userID, activityID uuid.UUID, submission json.RawMessage) (*SubmissionResult, error)
}

type submissionService struct {
	db          *gorm.DB
	log         *logger.Logger
	activities  repos.ActivityRepo
	profiles    ProfileService
	ledger      ProgressLedger
	proficiency ProficiencyUpdater
	observer    SubmissionObserver
}

func NewSubmissionService(
	db *gorm.DB,
	log *logger.Logger,
	activities repos.ActivityRepo,
	profiles ProfileService,
	ledger ProgressLedger,
	proficiency ProficiencyUpdater,
	observer SubmissionObserver,
) SubmissionService {
	return &submissionService{
		db:          db,
		log:         log.With("service", "SubmissionService"),
		activities:  activities,
		profiles:    profiles,
		ledger:      ledger,
		proficiency: proficiency,
		observer:    observer,
	}
}

func (s *submissionService) Submit(ctx context.Context, userID, activityID uuid.UUID, submission json.RawMessage) (*SubmissionResult, error) {
	activity, err := s.activities.GetByID(dbctx.New(ctx), activityID)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}

	result, err := grading.Grade(activity.Type, submission, json.RawMessage(activity.Content))
	if err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.ObserveSubmission(grading.NormalizeType(activity.Type), result.Passed)
	}

	// Profiles are provisioned on first contact; the ledger itself never creates one.
	if _, err := s.profiles.Ensure(ctx, userID); err != nil {
		return nil, err
	}

	xp := XPForResult(activity.XPReward, result.Passed)
	ledger, err := s.ledger.ApplyResult(ctx, userID, activityID, xp, result.Score, result.Passed)
	if err != nil {
		return nil, err
	}

	if result.Passed {
		if err := s.proficiency.UpdateProficiency(ctx, userID, activityID, result.Passed, result.Score); err != nil {
			s.log.Error("proficiency update failed after ledger commit", "user_id", userID, "activity_id", activityID, "error", err)
		}
	}

	out := &SubmissionResult{
		Result:   result,
		XPGained: xp,
		NewLevel: ledger.NewLevel,
		NewXP:    ledger.NewXP,
	}
	if ledger.Attempt != nil {
		out.Attempts = ledger.Attempt.Attempts
	}
	return out, nil
}
