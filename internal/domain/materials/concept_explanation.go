package materials

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConceptExplanation caches generated text for a book concept, per user.
type ConceptExplanation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConceptID   string    `gorm:"column:concept_id;not null;size:128;uniqueIndex:idx_concept_explanation_concept_user,priority:1" json:"concept_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_concept_explanation_concept_user,priority:2;index" json:"user_id"`
	Concept     string    `gorm:"column:concept;not null" json:"concept"`
	Explanation string    `gorm:"column:explanation;type:text;not null" json:"explanation"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ConceptExplanation) TableName() string { return "concept_explanation" }

func (c *ConceptExplanation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
