package materials

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

type ConceptExplanationRepo interface {
	Get(dbc dbctx.Context, conceptID string, userID uuid.UUID) (*types.ConceptExplanation, error)
	Upsert(dbc dbctx.Context, row *types.ConceptExplanation) (*types.ConceptExplanation, error)
}

type conceptExplanationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptExplanationRepo(db *gorm.DB, baseLog *logger.Logger) ConceptExplanationRepo {
	return &conceptExplanationRepo{db: db, log: baseLog.With("repo", "ConceptExplanationRepo")}
}

func (r *conceptExplanationRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *conceptExplanationRepo) Get(dbc dbctx.Context, conceptID string, userID uuid.UUID) (*types.ConceptExplanation, error) {
	conceptID = strings.TrimSpace(conceptID)
	if conceptID == "" || userID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.ConceptExplanation
	if err := r.tx(dbc).
		Where("concept_id = ? AND user_id = ?", conceptID, userID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *conceptExplanationRepo) Upsert(dbc dbctx.Context, row *types.ConceptExplanation) (*types.ConceptExplanation, error) {
	if row == nil {
		return nil, nil
	}
	row.UpdatedAt = time.Now().UTC()
	if err := r.tx(dbc).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "concept_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"concept", "explanation", "updated_at"}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, row.ConceptID, row.UserID)
}
