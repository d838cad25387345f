package user

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

type UserProfileRepo interface {
	Ensure(dbc dbctx.Context, userID uuid.UUID) (*types.UserProfile, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserProfile, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.UserProfile, error)
	SetCurrentModule(dbc dbctx.Context, id uuid.UUID, moduleID uuid.UUID) error
}

type userProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	return &userProfileRepo{db: db, log: baseLog.With("repo", "UserProfileRepo")}
}

func (r *userProfileRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

// Ensure returns the profile for userID, creating a level 1 profile if none
// exists. Concurrent callers converge on the same row.
func (r *userProfileRepo) Ensure(dbc dbctx.Context, userID uuid.UUID) (*types.UserProfile, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user id required")
	}
	row := &types.UserProfile{UserID: userID, Level: 1, XP: 0}
	if err := r.tx(dbc).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByUserID(dbc, userID)
}

func (r *userProfileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserProfile, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.UserProfile
	if err := r.tx(dbc).Where("user_id = ?", userID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *userProfileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.UserProfile, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var rows []*types.UserProfile
	if err := r.tx(dbc).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *userProfileRepo) SetCurrentModule(dbc dbctx.Context, id uuid.UUID, moduleID uuid.UUID) error {
	if id == uuid.Nil || moduleID == uuid.Nil {
		return nil
	}
	return r.tx(dbc).
		Model(&types.UserProfile{}).
		Where("id = ?", id).
		Update("current_module_id", moduleID).Error
}
