package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Skill struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Skill) TableName() string { return "skill" }

func (s *Skill) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ActivitySkill tags an activity with a skill it exercises.
type ActivitySkill struct {
	ActivityID uuid.UUID `gorm:"type:uuid;primaryKey" json:"activity_id"`
	SkillID    uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"skill_id"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ActivitySkill) TableName() string { return "activity_skill" }
