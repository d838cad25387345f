package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

type SkillRepo interface {
	Create(dbc dbctx.Context, rows []*types.Skill) ([]*types.Skill, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Skill, error)
	// SkillIDsForActivity returns the ids of skills tagged to the activity.
	SkillIDsForActivity(dbc dbctx.Context, activityID uuid.UUID) ([]uuid.UUID, error)
	Tag(dbc dbctx.Context, activityID uuid.UUID, skillIDs []uuid.UUID) error
}

type skillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillRepo(db *gorm.DB, baseLog *logger.Logger) SkillRepo {
	return &skillRepo{db: db, log: baseLog.With("repo", "SkillRepo")}
}

func (r *skillRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *skillRepo) Create(dbc dbctx.Context, rows []*types.Skill) ([]*types.Skill, error) {
	if len(rows) == 0 {
		return []*types.Skill{}, nil
	}
	if err := r.tx(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *skillRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Skill, error) {
	var out []*types.Skill
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *skillRepo) SkillIDsForActivity(dbc dbctx.Context, activityID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if activityID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).
		Model(&types.ActivitySkill{}).
		Where("activity_id = ?", activityID).
		Order("skill_id ASC").
		Pluck("skill_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *skillRepo) Tag(dbc dbctx.Context, activityID uuid.UUID, skillIDs []uuid.UUID) error {
	if activityID == uuid.Nil || len(skillIDs) == 0 {
		return nil
	}
	rows := make([]*types.ActivitySkill, 0, len(skillIDs))
	for _, id := range skillIDs {
		rows = append(rows, &types.ActivitySkill{ActivityID: activityID, SkillID: id})
	}
	return r.tx(dbc).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}
