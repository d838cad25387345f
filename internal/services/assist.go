package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/skillpath-backend/internal/platform/llm"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

const maxAssistInputChars = 20000

// AssistService wraps the prompt helpers with credential resolution.
type AssistService interface {
	ExplainCode(ctx context.Context, userID uuid.UUID, service, code, language string) (string, error)
	SuggestAlternative(ctx context.Context, userID uuid.UUID, service, code, language, goal string) (string, error)
	BookContent(ctx context.Context, userID uuid.UUID, service, topic, chapter string) (string, error)
}

type assistService struct {
	log      *logger.Logger
	keys     APIKeyService
	profiles ProfileService
	client   *llm.Client
}

func NewAssistService(log *logger.Logger, keys APIKeyService, profiles ProfileService, client *llm.Client) AssistService {
	return &assistService{
		log:      log.With("service", "AssistService"),
		keys:     keys,
		profiles: profiles,
		client:   client,
	}
}

func requireText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if len(v) > maxAssistInputChars {
		return "", fmt.Errorf("%w: %s is too long", ErrInvalidInput, field)
	}
	return v, nil
}

func (s *assistService) ExplainCode(ctx context.Context, userID uuid.UUID, service, code, language string) (string, error) {
	code, err := requireText("code", code)
	if err != nil {
		return "", err
	}
	svc, key, err := s.keys.Resolve(ctx, userID, service)
	if err != nil {
		return "", err
	}
	return s.client.ExplainCode(llm.WithCaller(ctx, userID), svc, key, code, language)
}

func (s *assistService) SuggestAlternative(ctx context.Context, userID uuid.UUID, service, code, language, goal string) (string, error) {
	code, err := requireText("code", code)
	if err != nil {
		return "", err
	}
	svc, key, err := s.keys.Resolve(ctx, userID, service)
	if err != nil {
		return "", err
	}
	return s.client.SuggestAlternative(llm.WithCaller(ctx, userID), svc, key, code, language, goal)
}

func (s *assistService) BookContent(ctx context.Context, userID uuid.UUID, service, topic, chapter string) (string, error) {
	topic, err := requireText("topic", topic)
	if err != nil {
		return "", err
	}
	svc, key, err := s.keys.Resolve(ctx, userID, service)
	if err != nil {
		return "", err
	}
	level := 0
	if p, err := s.profiles.Get(ctx, userID); err == nil {
		level = p.Level
	}
	return s.client.BookContent(llm.WithCaller(ctx, userID), svc, key, topic, chapter, level)
}
