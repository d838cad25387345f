package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProfile carries gamification state for a user. XP and Level are only
// written by the progress ledger.
type UserProfile struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Level           int        `gorm:"column:level;not null;default:1" json:"level"`
	XP              int        `gorm:"column:xp;not null;default:0" json:"xp"`
	CurrentModuleID *uuid.UUID `gorm:"type:uuid;column:current_module_id;index" json:"current_module_id,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profile" }

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Level < 1 {
		p.Level = 1
	}
	return nil
}
