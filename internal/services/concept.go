package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skillpath-backend/internal/data/repos"
	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/llm"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

type ConceptRequest struct {
	ConceptID string
	Concept   string
	Context   string
	Service   string
	Force     bool
}

// ConceptService explains book concepts, caching one explanation per
// (concept, user).
type ConceptService interface {
	Explain(ctx context.Context, userID uuid.UUID, req ConceptRequest) (*types.ConceptExplanation, bool, error)
}

type conceptService struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.ConceptExplanationRepo
	profiles repos.UserProfileRepo
	keys     APIKeyService
	client   *llm.Client
}

func NewConceptService(db *gorm.DB, log *logger.Logger, repo repos.ConceptExplanationRepo, profiles repos.UserProfileRepo, keys APIKeyService, client *llm.Client) ConceptService {
	return &conceptService{
		db:       db,
		log:      log.With("service", "ConceptService"),
		repo:     repo,
		profiles: profiles,
		keys:     keys,
		client:   client,
	}
}

// Explain returns the explanation and whether it came from the cache.
func (s *conceptService) Explain(ctx context.Context, userID uuid.UUID, req ConceptRequest) (*types.ConceptExplanation, bool, error) {
	req.ConceptID = strings.TrimSpace(req.ConceptID)
	req.Concept = strings.TrimSpace(req.Concept)
	if req.ConceptID == "" || len(req.ConceptID) > 128 {
		return nil, false, fmt.Errorf("%w: concept id must be 1-128 characters", ErrInvalidInput)
	}
	if req.Concept == "" {
		req.Concept = req.ConceptID
	}
	dbc := dbctx.New(ctx)
	if !req.Force {
		cached, err := s.repo.Get(dbc, req.ConceptID, userID)
		if err != nil {
			return nil, false, fmt.Errorf("load concept explanation: %w", err)
		}
		if cached != nil {
			return cached, true, nil
		}
	}

	level := 0
	if p, err := s.profiles.GetByUserID(dbc, userID); err == nil && p != nil {
		level = p.Level
	}
	service, key, err := s.keys.Resolve(ctx, userID, req.Service)
	if err != nil {
		return nil, false, err
	}
	text, err := s.client.ElaborateConcept(llm.WithCaller(ctx, userID), service, key, req.Concept, req.Context, level)
	if err != nil {
		return nil, false, err
	}
	row, err := s.repo.Upsert(dbc, &types.ConceptExplanation{
		ConceptID:   req.ConceptID,
		UserID:      userID,
		Concept:     req.Concept,
		Explanation: text,
	})
	if err != nil {
		return nil, false, fmt.Errorf("save concept explanation: %w", err)
	}
	return row, false, nil
}
