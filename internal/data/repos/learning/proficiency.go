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

// ProficiencyBump describes one passing result applied to a skill.
type ProficiencyBump struct {
	ProfileID uuid.UUID
	SkillID   uuid.UUID
	Baseline  int
	Gain      int
	Max       int
	Score     int
}

type SkillProficiencyRepo interface {
	// Bump creates the row at Baseline or raises it by Gain, capped at Max.
	Bump(dbc dbctx.Context, in ProficiencyBump) error
	Get(dbc dbctx.Context, profileID, skillID uuid.UUID) (*types.SkillProficiency, error)
	ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.SkillProficiency, error)
}

type skillProficiencyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillProficiencyRepo(db *gorm.DB, baseLog *logger.Logger) SkillProficiencyRepo {
	return &skillProficiencyRepo{db: db, log: baseLog.With("repo", "SkillProficiencyRepo")}
}

func (r *skillProficiencyRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *skillProficiencyRepo) Bump(dbc dbctx.Context, in ProficiencyBump) error {
	baseline := in.Baseline
	if baseline > in.Max {
		baseline = in.Max
	}
	now := time.Now().UTC()
	row := &types.SkillProficiency{
		UserProfileID: in.ProfileID,
		SkillID:       in.SkillID,
		Proficiency:   baseline,
		Attempts:      1,
		LastScore:     in.Score,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	t := r.tx(dbc)
	return t.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_profile_id"}, {Name: "skill_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"proficiency": capExpr(t, in.Max, in.Gain),
				"attempts":    gorm.Expr("skill_proficiency.attempts + 1"),
				"last_score":  gorm.Expr("excluded.last_score"),
				"updated_at":  gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(row).Error
}

// capExpr is min(max, proficiency + gain) in the connected dialect.
func capExpr(t *gorm.DB, max, gain int) clause.Expr {
	fn := "LEAST"
	if t.Dialector != nil && t.Dialector.Name() == "sqlite" {
		fn = "MIN"
	}
	return gorm.Expr(fn+"(?, skill_proficiency.proficiency + ?)", max, gain)
}

func (r *skillProficiencyRepo) Get(dbc dbctx.Context, profileID, skillID uuid.UUID) (*types.SkillProficiency, error) {
	var rows []*types.SkillProficiency
	if err := r.tx(dbc).
		Where("user_profile_id = ? AND skill_id = ?", profileID, skillID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *skillProficiencyRepo) ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.SkillProficiency, error) {
	var out []*types.SkillProficiency
	if profileID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).
		Preload("Skill").
		Where("user_profile_id = ?", profileID).
		Order("proficiency DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
