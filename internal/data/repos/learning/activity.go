package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

type ActivityRepo interface {
	Create(dbc dbctx.Context, rows []*types.Activity) ([]*types.Activity, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Activity, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Activity, error)
	ListByModule(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.Activity, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (r *activityRepo) Create(dbc dbctx.Context, rows []*types.Activity) ([]*types.Activity, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Activity{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *activityRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Activity, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Activity
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Activity, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *activityRepo) ListByModule(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.Activity, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Activity
	if moduleID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("module_id = ?", moduleID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
