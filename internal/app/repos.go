package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/skillpath-backend/internal/data/repos"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

type Repos struct {
	UserProfile          repos.UserProfileRepo
	UserAPIKey           repos.UserAPIKeyRepo
	Activity             repos.ActivityRepo
	Module               repos.ModuleRepo
	UserActivityProgress repos.UserActivityProgressRepo
	Skill                repos.SkillRepo
	SkillProficiency     repos.SkillProficiencyRepo
	Resource             repos.ResourceRepo
	ConceptExplanation   repos.ConceptExplanationRepo
	AICallLog            repos.AICallLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		UserProfile:          repos.NewUserProfileRepo(db, log),
		UserAPIKey:           repos.NewUserAPIKeyRepo(db, log),
		Activity:             repos.NewActivityRepo(db, log),
		Module:               repos.NewModuleRepo(db, log),
		UserActivityProgress: repos.NewUserActivityProgressRepo(db, log),
		Skill:                repos.NewSkillRepo(db, log),
		SkillProficiency:     repos.NewSkillProficiencyRepo(db, log),
		Resource:             repos.NewResourceRepo(db, log),
		ConceptExplanation:   repos.NewConceptExplanationRepo(db, log),
		AICallLog:            repos.NewAICallLogRepo(db, log),
	}
}
