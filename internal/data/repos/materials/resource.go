package materials

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

type ResourceRepo interface {
	Create(dbc dbctx.Context, rows []*types.Resource) ([]*types.Resource, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Resource, error)
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Resource, error)
	// SaveExplanation marks the resource processed. Concurrent writers race
	// and the last write wins.
	SaveExplanation(dbc dbctx.Context, id uuid.UUID, explanation string, at time.Time) error
}

type resourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResourceRepo(db *gorm.DB, baseLog *logger.Logger) ResourceRepo {
	return &resourceRepo{db: db, log: baseLog.With("repo", "ResourceRepo")}
}

func (r *resourceRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *resourceRepo) Create(dbc dbctx.Context, rows []*types.Resource) ([]*types.Resource, error) {
	if len(rows) == 0 {
		return []*types.Resource{}, nil
	}
	if err := r.tx(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *resourceRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Resource, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var rows []*types.Resource
	if err := r.tx(dbc).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *resourceRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Resource, error) {
	var out []*types.Resource
	if ownerID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).
		Where("owner_user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resourceRepo) SaveExplanation(dbc dbctx.Context, id uuid.UUID, explanation string, at time.Time) error {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	res := r.tx(dbc).
		Model(&types.Resource{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"ai_processed":    true,
			"ai_explanation":  explanation,
			"ai_processed_at": at,
			"updated_at":      at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
