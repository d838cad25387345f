package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skillpath-backend/internal/data/aggregates"
	"github.com/yungbote/skillpath-backend/internal/data/repos"
	"github.com/yungbote/skillpath-backend/internal/data/repos/learning"
	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

const (
	// XPPerLevel scales the level-up threshold: level L needs L*XPPerLevel XP.
	XPPerLevel = 100
	// ConsolationPercent of the reward is granted for a failed attempt.
	ConsolationPercent = 10

	maxLedgerCASAttempts = 5
)

// LevelPolicy decides how many levels one submission may grant.
type LevelPolicy string

const (
	// LevelPolicySingle grants at most one level per submission.
	LevelPolicySingle LevelPolicy = "single"
	// LevelPolicyCascade keeps levelling while the threshold is met.
	LevelPolicyCascade LevelPolicy = "cascade"
)

// CompletionPolicy decides what an attempt's completed flag means.
type CompletionPolicy string

const (
	// CompletionLatest mirrors the latest verdict, so a failing retry clears it.
	CompletionLatest CompletionPolicy = "latest"
	// CompletionSticky keeps completed once any attempt has passed.
	CompletionSticky CompletionPolicy = "sticky"
)

func ParseLevelPolicy(s string) (LevelPolicy, error) {
	switch LevelPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", LevelPolicySingle:
		return LevelPolicySingle, nil
	case LevelPolicyCascade:
		return LevelPolicyCascade, nil
	}
	return "", fmt.Errorf("unknown level policy %q", s)
}

func ParseCompletionPolicy(s string) (CompletionPolicy, error) {
	switch CompletionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CompletionLatest:
		return CompletionLatest, nil
	case CompletionSticky:
		return CompletionSticky, nil
	}
	return "", fmt.Errorf("unknown completion policy %q", s)
}

// XPForResult is the full reward for a pass and a floor-rounded consolation
// share otherwise.
func XPForResult(reward int, passed bool) int {
	if reward <= 0 {
		return 0
	}
	if passed {
		return reward
	}
	return reward * ConsolationPercent / 100
}

// NextLevel applies the level-up rule against the pre-update level.
func NextLevel(level, xp, gained int, policy LevelPolicy) int {
	if level < 1 {
		level = 1
	}
	total := xp + gained
	if policy == LevelPolicyCascade {
		for total >= level*XPPerLevel {
			level++
		}
		return level
	}
	if total >= level*XPPerLevel {
		return level + 1
	}
	return level
}

type LedgerResult struct {
	NewLevel int
	NewXP    int
	Attempt  *types.UserActivityProgress
}

type LedgerConfig struct {
	LevelPolicy      LevelPolicy
	CompletionPolicy CompletionPolicy
}

// ProgressLedger owns XP, level and attempt bookkeeping.
type ProgressLedger interface {
	// ApplyResult records one graded submission atomically. The profile must
	// already exist.
	ApplyResult(ctx context.Context, userID, activityID uuid.UUID, xpGained, score int, passed bool) (*LedgerResult, error)
	GetAttempt(ctx context.Context, userID, activityID uuid.UUID) (*types.UserActivityProgress, error)
}

type progressLedger struct {
	db         *gorm.DB
	log        *logger.Logger
	tx         aggregates.TxRunner
	cas        aggregates.CASGuard
	profiles   repos.UserProfileRepo
	activities repos.ActivityRepo
	progress   repos.UserActivityProgressRepo
	cfg        LedgerConfig
	now        func() time.Time
}

func NewProgressLedger(
	db *gorm.DB,
	log *logger.Logger,
	profiles repos.UserProfileRepo,
	activities repos.ActivityRepo,
	progress repos.UserActivityProgressRepo,
	cfg LedgerConfig,
) ProgressLedger {
	if cfg.LevelPolicy == "" {
		cfg.LevelPolicy = LevelPolicySingle
	}
	if cfg.CompletionPolicy == "" {
		cfg.CompletionPolicy = CompletionLatest
	}
	return &progressLedger{
		db:         db,
		log:        log.With("service", "ProgressLedger"),
		tx:         aggregates.NewGormTxRunner(db),
		cas:        aggregates.NewCASGuard(db),
		profiles:   profiles,
		activities: activities,
		progress:   progress,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (l *progressLedger) ApplyResult(ctx context.Context, userID, activityID uuid.UUID, xpGained, score int, passed bool) (*LedgerResult, error) {
	if userID == uuid.Nil || activityID == uuid.Nil {
		return nil, fmt.Errorf("%w: user and activity are required", ErrInvalidInput)
	}
	if xpGained < 0 {
		xpGained = 0
	}
	var out *LedgerResult
	err := l.tx.InTx(ctx, func(dbc dbctx.Context) error {
		profile, err := l.profiles.GetByUserID(dbc, userID)
		if err != nil {
			return aggregates.MapError("ledger.load_profile", err)
		}
		if profile == nil {
			return ErrProfileNotFound
		}
		activity, err := l.activities.GetByID(dbc, activityID)
		if err != nil {
			return aggregates.MapError("ledger.load_activity", err)
		}

		now := l.now()
		newLevel, newXP := profile.Level, profile.XP
		for attempt := 1; ; attempt++ {
			newLevel = NextLevel(profile.Level, profile.XP, xpGained, l.cfg.LevelPolicy)
			newXP = profile.XP + xpGained
			updates := map[string]any{"xp": newXP, "level": newLevel, "updated_at": now}
			if activity != nil {
				updates["current_module_id"] = activity.ModuleID
			}
			ok, err := l.cas.UpdateIfMatch(dbc, "user_profile", profile.ID,
				map[string]any{"xp": profile.XP, "level": profile.Level},
				updates,
			)
			if err != nil {
				return aggregates.MapError("ledger.update_profile", err)
			}
			if ok {
				break
			}
			if attempt >= maxLedgerCASAttempts {
				return aggregates.RequireCASSuccess(false, "profile changed concurrently")
			}
			l.log.Debug("profile changed concurrently, retrying", "user_id", userID, "attempt", attempt)
			if profile, err = l.profiles.GetByID(dbc, profile.ID); err != nil {
				return aggregates.MapError("ledger.reload_profile", err)
			}
			if profile == nil {
				return ErrProfileNotFound
			}
		}

		row, err := l.progress.RecordAttempt(dbc, learning.AttemptInput{
			UserID:          userID,
			ActivityID:      activityID,
			Score:           score,
			Completed:       passed,
			StickyCompleted: l.cfg.CompletionPolicy == CompletionSticky,
			At:              now,
		})
		if err != nil {
			return aggregates.MapError("ledger.record_attempt", err)
		}
		out = &LedgerResult{NewLevel: newLevel, NewXP: newXP, Attempt: row}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Debug("ledger applied", "user_id", userID, "activity_id", activityID, "xp", out.NewXP, "level", out.NewLevel)
	return out, nil
}

func (l *progressLedger) GetAttempt(ctx context.Context, userID, activityID uuid.UUID) (*types.UserActivityProgress, error) {
	return l.progress.Get(dbctx.New(ctx), userID, activityID)
}
