package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

// AttemptInput is the verdict being recorded for one submission.
type AttemptInput struct {
	UserID     uuid.UUID
	ActivityID uuid.UUID
	Score      int
	Completed  bool
	// StickyCompleted keeps completed=true once any attempt has passed.
	StickyCompleted bool
	At              time.Time
}

type UserActivityProgressRepo interface {
	// RecordAttempt inserts the first attempt or bumps attempts by one and
	// overwrites the verdict, in a single statement.
	RecordAttempt(dbc dbctx.Context, in AttemptInput) (*types.UserActivityProgress, error)
	Get(dbc dbctx.Context, userID, activityID uuid.UUID) (*types.UserActivityProgress, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserActivityProgress, error)
}

type userActivityProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserActivityProgressRepo(db *gorm.DB, baseLog *logger.Logger) UserActivityProgressRepo {
	return &userActivityProgressRepo{db: db, log: baseLog.With("repo", "UserActivityProgressRepo")}
}

func (r *userActivityProgressRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *userActivityProgressRepo) RecordAttempt(dbc dbctx.Context, in AttemptInput) (*types.UserActivityProgress, error) {
	at := in.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	row := &types.UserActivityProgress{
		UserID:      in.UserID,
		ActivityID:  in.ActivityID,
		Score:       in.Score,
		Completed:   in.Completed,
		Attempts:    1,
		LastAttempt: at,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	completed := gorm.Expr("excluded.completed")
	if in.StickyCompleted {
		completed = gorm.Expr("(user_activity_progress.completed OR excluded.completed)")
	}
	if err := r.tx(dbc).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "activity_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"attempts":     gorm.Expr("user_activity_progress.attempts + 1"),
				"score":        gorm.Expr("excluded.score"),
				"completed":    completed,
				"last_attempt": gorm.Expr("excluded.last_attempt"),
				"updated_at":   gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, in.UserID, in.ActivityID)
}

func (r *userActivityProgressRepo) Get(dbc dbctx.Context, userID, activityID uuid.UUID) (*types.UserActivityProgress, error) {
	if userID == uuid.Nil || activityID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.UserActivityProgress
	if err := r.tx(dbc).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *userActivityProgressRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserActivityProgress, error) {
	var out []*types.UserActivityProgress
	if userID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).
		Where("user_id = ?", userID).
		Order("last_attempt DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
