package domain

import (
	"github.com/yungbote/skillpath-backend/internal/domain/ai"
	"github.com/yungbote/skillpath-backend/internal/domain/learning"
	"github.com/yungbote/skillpath-backend/internal/domain/materials"
	"github.com/yungbote/skillpath-backend/internal/domain/user"
)

// Learning
type Module = learning.Module
type Activity = learning.Activity
type Skill = learning.Skill
type ActivitySkill = learning.ActivitySkill
type SkillProficiency = learning.SkillProficiency
type UserActivityProgress = learning.UserActivityProgress

// User
type UserProfile = user.UserProfile
type UserAPIKey = user.UserAPIKey

// Materials
type Resource = materials.Resource
type ConceptExplanation = materials.ConceptExplanation

// AI
type AICallLog = ai.CallLog

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&UserProfile{},
		&UserAPIKey{},
		&Module{},
		&Activity{},
		&Skill{},
		&ActivitySkill{},
		&SkillProficiency{},
		&UserActivityProgress{},
		&Resource{},
		&ConceptExplanation{},
		&AICallLog{},
	}
}
