package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserAPIKey holds a third-party credential in encrypted form only.
type UserAPIKey struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_api_key_profile_service,priority:1" json:"user_profile_id"`
	Service       string    `gorm:"column:service;not null;uniqueIndex:idx_user_api_key_profile_service,priority:2" json:"service"`
	EncryptedKey  string    `gorm:"column:encrypted_key;type:text;not null" json:"-"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (UserAPIKey) TableName() string { return "user_api_key" }

func (k *UserAPIKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}
