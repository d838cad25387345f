package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/yungbote/skillpath-backend/internal/data/repos"
	"github.com/yungbote/skillpath-backend/internal/data/repos/learning"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

const (
	BaselineProficiency = 10
	MaxGainPerPass      = 10
	MaxProficiency      = 100
)

// GainForScore is ceil(score*MaxGainPerPass/100) for a score clamped to
// 0..100. It is monotonic in score and never exceeds MaxGainPerPass.
func GainForScore(score int) int {
	if score <= 0 {
		return 0
	}
	if score > 100 {
		score = 100
	}
	return (score*MaxGainPerPass + 99) / 100
}

// ProficiencyUpdater raises per-skill proficiency after a passing result.
// It runs after the ledger has committed and its failures never undo XP.
type ProficiencyUpdater interface {
	UpdateProficiency(ctx context.Context, userID, activityID uuid.UUID, passed bool, score int) error
}

type proficiencyUpdater struct {
	db          *gorm.DB
	log         *logger.Logger
	profiles    repos.UserProfileRepo
	skills      repos.SkillRepo
	proficiency repos.SkillProficiencyRepo
}

func NewProficiencyUpdater(db *gorm.DB, log *logger.Logger, profiles repos.UserProfileRepo, skills repos.SkillRepo, proficiency repos.SkillProficiencyRepo) ProficiencyUpdater {
	return &proficiencyUpdater{
		db:          db,
		log:         log.With("service", "ProficiencyUpdater"),
		profiles:    profiles,
		skills:      skills,
		proficiency: proficiency,
	}
}

func (u *proficiencyUpdater) UpdateProficiency(ctx context.Context, userID, activityID uuid.UUID, passed bool, score int) error {
	if !passed {
		return nil
	}
	dbc := dbctx.New(ctx)
	profile, err := u.profiles.GetByUserID(dbc, userID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return ErrProfileNotFound
	}
	skillIDs, err := u.skills.SkillIDsForActivity(dbc, activityID)
	if err != nil {
		return fmt.Errorf("resolve activity skills: %w", err)
	}
	gain := GainForScore(score)
	var errs []error
	for _, skillID := range lo.Uniq(skillIDs) {
		err := u.proficiency.Bump(dbc, learning.ProficiencyBump{
			ProfileID: profile.ID,
			SkillID:   skillID,
			Baseline:  BaselineProficiency,
			Gain:      gain,
			Max:       MaxProficiency,
			Score:     score,
		})
		if err != nil {
			u.log.Warn("proficiency update failed", "user_id", userID, "skill_id", skillID, "error", err)
			errs = append(errs, fmt.Errorf("skill %s: %w", skillID, err))
		}
	}
	return errors.Join(errs...)
}
