package ai

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CallLog records one generative-content call. Prompts and responses are not
// stored, only their sizes.
type CallLog struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Service       string     `gorm:"column:service;not null;index" json:"service"`
	Model         string     `gorm:"column:model;not null" json:"model"`
	Purpose       string     `gorm:"column:purpose;not null" json:"purpose"`
	PromptChars   int        `gorm:"column:prompt_chars;not null;default:0" json:"prompt_chars"`
	ResponseChars int        `gorm:"column:response_chars;not null;default:0" json:"response_chars"`
	LatencyMS     int64      `gorm:"column:latency_ms;not null;default:0" json:"latency_ms"`
	Success       bool       `gorm:"column:success;not null" json:"success"`
	ErrorClass    string     `gorm:"column:error_class" json:"error_class,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (CallLog) TableName() string { return "ai_call_log" }

func (l *CallLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
