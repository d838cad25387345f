package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

type ModuleRepo interface {
	Create(dbc dbctx.Context, rows []*types.Module) ([]*types.Module, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Module, error)
	List(dbc dbctx.Context) ([]*types.Module, error)
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

func (r *moduleRepo) Create(dbc dbctx.Context, rows []*types.Module) ([]*types.Module, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Module{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *moduleRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Module, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var rows []*types.Module
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *moduleRepo) List(dbc dbctx.Context) ([]*types.Module, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Module
	if err := t.WithContext(dbc.Ctx).Order("position ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
