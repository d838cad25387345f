package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skillpath-backend/internal/data/repos"
	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

// ProfileService provisions and reads gamification profiles.
type ProfileService interface {
	// Ensure returns the user's profile, creating it at level 1 with no XP.
	Ensure(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	Get(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	// CurrentModule returns nil when the profile has not reached any module yet.
	CurrentModule(ctx context.Context, p *types.UserProfile) (*types.Module, error)
	ListSkills(ctx context.Context, userID uuid.UUID) ([]*types.SkillProficiency, error)
	ListProgress(ctx context.Context, userID uuid.UUID) ([]*types.UserActivityProgress, error)
}

type profileService struct {
	db           *gorm.DB
	log          *logger.Logger
	profiles     repos.UserProfileRepo
	modules      repos.ModuleRepo
	proficiency  repos.SkillProficiencyRepo
	progressRepo repos.UserActivityProgressRepo
}

func NewProfileService(db *gorm.DB, log *logger.Logger, profiles repos.UserProfileRepo, modules repos.ModuleRepo, proficiency repos.SkillProficiencyRepo, progressRepo repos.UserActivityProgressRepo) ProfileService {
	return &profileService{
		db:           db,
		log:          log.With("service", "ProfileService"),
		profiles:     profiles,
		modules:      modules,
		proficiency:  proficiency,
		progressRepo: progressRepo,
	}
}

func (s *profileService) Ensure(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidInput)
	}
	p, err := s.profiles.Ensure(dbctx.New(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	return p, nil
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	p, err := s.profiles.GetByUserID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

func (s *profileService) CurrentModule(ctx context.Context, p *types.UserProfile) (*types.Module, error) {
	if p == nil || p.CurrentModuleID == nil {
		return nil, nil
	}
	m, err := s.modules.GetByID(dbctx.New(ctx), *p.CurrentModuleID)
	if err != nil {
		return nil, fmt.Errorf("load module: %w", err)
	}
	return m, nil
}

func (s *profileService) ListSkills(ctx context.Context, userID uuid.UUID) ([]*types.SkillProficiency, error) {
	p, err := s.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.proficiency.ListByProfile(dbctx.New(ctx), p.ID)
}

func (s *profileService) ListProgress(ctx context.Context, userID uuid.UUID) ([]*types.UserActivityProgress, error) {
	return s.progressRepo.ListByUser(dbctx.New(ctx), userID)
}
