package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Module is an ordered group of activities.
type Module struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	Position  int       `gorm:"column:position;not null;default:0;index" json:"position"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Module) TableName() string { return "module" }

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
