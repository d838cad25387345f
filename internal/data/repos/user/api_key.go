package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

type UserAPIKeyRepo interface {
	Upsert(dbc dbctx.Context, profileID uuid.UUID, service, encryptedKey string) (*types.UserAPIKey, error)
	Get(dbc dbctx.Context, profileID uuid.UUID, service string) (*types.UserAPIKey, error)
	ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.UserAPIKey, error)
	ListAfter(dbc dbctx.Context, afterID uuid.UUID, limit int) ([]*types.UserAPIKey, error)
	UpdateEncryptedKey(dbc dbctx.Context, id uuid.UUID, encryptedKey string) error
	Delete(dbc dbctx.Context, profileID uuid.UUID, service string) (bool, error)
}

type userAPIKeyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAPIKeyRepo(db *gorm.DB, baseLog *logger.Logger) UserAPIKeyRepo {
	return &userAPIKeyRepo{db: db, log: baseLog.With("repo", "UserAPIKeyRepo")}
}

func (r *userAPIKeyRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

// Upsert keeps at most one credential per (profile, service).
func (r *userAPIKeyRepo) Upsert(dbc dbctx.Context, profileID uuid.UUID, service, encryptedKey string) (*types.UserAPIKey, error) {
	service = strings.ToLower(strings.TrimSpace(service))
	row := &types.UserAPIKey{
		UserProfileID: profileID,
		Service:       service,
		EncryptedKey:  encryptedKey,
		UpdatedAt:     time.Now().UTC(),
	}
	if err := r.tx(dbc).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_profile_id"}, {Name: "service"}},
			DoUpdates: clause.AssignmentColumns([]string{"encrypted_key", "updated_at"}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, profileID, service)
}

func (r *userAPIKeyRepo) Get(dbc dbctx.Context, profileID uuid.UUID, service string) (*types.UserAPIKey, error) {
	if profileID == uuid.Nil || service == "" {
		return nil, nil
	}
	var rows []*types.UserAPIKey
	if err := r.tx(dbc).
		Where("user_profile_id = ? AND service = ?", profileID, strings.ToLower(strings.TrimSpace(service))).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *userAPIKeyRepo) ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.UserAPIKey, error) {
	var out []*types.UserAPIKey
	if profileID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).
		Where("user_profile_id = ?", profileID).
		Order("service ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListAfter pages through every stored key ordered by id.
func (r *userAPIKeyRepo) ListAfter(dbc dbctx.Context, afterID uuid.UUID, limit int) ([]*types.UserAPIKey, error) {
	if limit <= 0 {
		limit = 100
	}
	q := r.tx(dbc).Order("id ASC").Limit(limit)
	if afterID != uuid.Nil {
		q = q.Where("id > ?", afterID)
	}
	var out []*types.UserAPIKey
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userAPIKeyRepo) UpdateEncryptedKey(dbc dbctx.Context, id uuid.UUID, encryptedKey string) error {
	return r.tx(dbc).
		Model(&types.UserAPIKey{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"encrypted_key": encryptedKey,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (r *userAPIKeyRepo) Delete(dbc dbctx.Context, profileID uuid.UUID, service string) (bool, error) {
	res := r.tx(dbc).
		Where("user_profile_id = ? AND service = ?", profileID, strings.ToLower(strings.TrimSpace(service))).
		Delete(&types.UserAPIKey{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
