package materials

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resource is an uploaded document. AIProcessed/AIExplanation form a one-way
// cache: once processed it stays processed, forced regeneration only
// overwrites the explanation.
type Resource struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerUserID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Title         string     `gorm:"column:title;not null" json:"title"`
	FileName      string     `gorm:"column:file_name" json:"file_name"`
	MimeType      string     `gorm:"column:mime_type" json:"mime_type"`
	SizeBytes     int64      `gorm:"column:size_bytes;not null;default:0" json:"size_bytes"`
	StorageKey    string     `gorm:"column:storage_key;not null" json:"storage_key"`
	AIProcessed   bool       `gorm:"column:ai_processed;not null;default:false" json:"ai_processed"`
	AIExplanation *string    `gorm:"column:ai_explanation;type:text" json:"ai_explanation"`
	AIProcessedAt *time.Time `gorm:"column:ai_processed_at" json:"ai_processed_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Resource) TableName() string { return "resource" }

func (r *Resource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// HasCachedExplanation reports whether an explanation can be served without
// generating a new one.
func (r *Resource) HasCachedExplanation() bool {
	return r != nil && r.AIProcessed && r.AIExplanation != nil
}
