package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity is a gradable unit inside a module. Content is opaque JSON whose
// shape depends on Type and is interpreted by the grading package.
type Activity struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_activity_module_position,priority:1" json:"module_id"`
	Module    *Module        `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Position  int            `gorm:"column:position;not null;default:0;index:idx_activity_module_position,priority:2" json:"position"`
	Type      string         `gorm:"column:type;not null" json:"type"`
	Title     string         `gorm:"column:title;not null" json:"title"`
	Content   datatypes.JSON `gorm:"type:jsonb;column:content" json:"content"`
	XPReward  int            `gorm:"column:xp_reward;not null" json:"xp_reward"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Activity) TableName() string { return "activity" }

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
