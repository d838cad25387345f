package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SkillProficiency struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_skill_proficiency_profile_skill,priority:1" json:"user_profile_id"`
	SkillID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_skill_proficiency_profile_skill,priority:2;index" json:"skill_id"`
	Skill         *Skill    `gorm:"constraint:OnDelete:CASCADE;foreignKey:SkillID;references:ID" json:"skill,omitempty"`
	Proficiency   int       `gorm:"column:proficiency;not null;default:0" json:"proficiency"`
	Attempts      int       `gorm:"column:attempts;not null;default:0" json:"attempts"`
	LastScore     int       `gorm:"column:last_score;not null;default:0" json:"last_score"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (SkillProficiency) TableName() string { return "skill_proficiency" }

func (p *SkillProficiency) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
