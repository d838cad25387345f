package ai

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

type AICallLogRepo interface {
	Create(dbc dbctx.Context, rows []*types.AICallLog) ([]*types.AICallLog, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.AICallLog, error)
}

type aiCallLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAICallLogRepo(db *gorm.DB, baseLog *logger.Logger) AICallLogRepo {
	return &aiCallLogRepo{db: db, log: baseLog.With("repo", "AICallLogRepo")}
}

func (r *aiCallLogRepo) Create(dbc dbctx.Context, rows []*types.AICallLog) ([]*types.AICallLog, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.AICallLog{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *aiCallLogRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.AICallLog, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.AICallLog
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
