package repos

import (
	"github.com/yungbote/skillpath-backend/internal/data/repos/ai"
	"github.com/yungbote/skillpath-backend/internal/data/repos/learning"
	"github.com/yungbote/skillpath-backend/internal/data/repos/materials"
	"github.com/yungbote/skillpath-backend/internal/data/repos/user"
)

type UserProfileRepo = user.UserProfileRepo
type UserAPIKeyRepo = user.UserAPIKeyRepo

type ModuleRepo = learning.ModuleRepo
type ActivityRepo = learning.ActivityRepo
type SkillRepo = learning.SkillRepo
type UserActivityProgressRepo = learning.UserActivityProgressRepo
type SkillProficiencyRepo = learning.SkillProficiencyRepo

type ResourceRepo = materials.ResourceRepo
type ConceptExplanationRepo = materials.ConceptExplanationRepo

type AICallLogRepo = ai.AICallLogRepo

var (
	NewUserProfileRepo          = user.NewUserProfileRepo
	NewUserAPIKeyRepo           = user.NewUserAPIKeyRepo
	NewModuleRepo               = learning.NewModuleRepo
	NewActivityRepo             = learning.NewActivityRepo
	NewSkillRepo                = learning.NewSkillRepo
	NewUserActivityProgressRepo = learning.NewUserActivityProgressRepo
	NewSkillProficiencyRepo     = learning.NewSkillProficiencyRepo
	NewResourceRepo             = materials.NewResourceRepo
	NewConceptExplanationRepo   = materials.NewConceptExplanationRepo
	NewAICallLogRepo            = ai.NewAICallLogRepo
)
