package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserActivityProgress is the attempt record for one (user, activity) pair.
// Attempts only ever grows by one per submission.
type UserActivityProgress struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_activity_progress_user_activity,priority:1" json:"user_id"`
	ActivityID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_activity_progress_user_activity,priority:2;index" json:"activity_id"`
	Score       int       `gorm:"column:score;not null;default:0" json:"score"`
	Completed   bool      `gorm:"column:completed;not null;default:false" json:"completed"`
	Attempts    int       `gorm:"column:attempts;not null;default:0" json:"attempts"`
	LastAttempt time.Time `gorm:"column:last_attempt;not null" json:"last_attempt"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (UserActivityProgress) TableName() string { return "user_activity_progress" }

func (p *UserActivityProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
