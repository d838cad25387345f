package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skillpath-backend/internal/data/repos"
	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/jobs"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/llm"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
	"github.com/yungbote/skillpath-backend/internal/platform/objectstore"
)

const (
	JobTypeAnnotateResource = "annotate_resource"

	// ExtractionPlaceholder is stored when a document yields no usable text.
	ExtractionPlaceholder = "We couldn't extract readable text from this document, so no AI explanation is available. " +
		"It may be a scanned image or a protected file."

	defaultMaxPromptChars = 12000
	defaultMaxFileBytes   = 32 << 20
	minUsableLetters      = 40
)

type AnnotationConfig struct {
	// MaxPromptChars bounds the document text sent for summarization.
	MaxPromptChars int
	// MaxFileBytes bounds how much of a stored file is read.
	MaxFileBytes int64
}

// AnnotationService attaches AI summaries to uploaded resources.
type AnnotationService interface {
	// Annotate returns the cached explanation unless force is set, otherwise
	// generates and persists a new one.
	Annotate(ctx context.Context, resourceID uuid.UUID, force bool) (*types.Resource, error)
	// AnnotateForUser is Annotate restricted to the resource owner.
	AnnotateForUser(ctx context.Context, userID, resourceID uuid.UUID, force bool) (*types.Resource, error)
	// Enqueue schedules Annotate on the background queue.
	Enqueue(ctx context.Context, userID, resourceID uuid.UUID, force bool) (string, error)
}

type annotationPayload struct {
	ResourceID uuid.UUID `json:"resource_id"`
	Force      bool      `json:"force"`
}

type annotationService struct {
	db        *gorm.DB
	log       *logger.Logger
	resources repos.ResourceRepo
	store     objectstore.Store
	extractor TextExtractor
	keys      APIKeyService
	client    *llm.Client
	queue     jobs.Queue
	cfg       AnnotationConfig
	now       func() time.Time
}

func NewAnnotationService(
	db *gorm.DB,
	log *logger.Logger,
	resources repos.ResourceRepo,
	store objectstore.Store,
	extractor TextExtractor,
	keys APIKeyService,
	client *llm.Client,
	queue jobs.Queue,
	cfg AnnotationConfig,
) AnnotationService {
	if cfg.MaxPromptChars <= 0 {
		cfg.MaxPromptChars = defaultMaxPromptChars
	}
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = defaultMaxFileBytes
	}
	if extractor == nil {
		extractor = NewTextExtractor()
	}
	return &annotationService{
		db:        db,
		log:       log.With("service", "AnnotationService"),
		resources: resources,
		store:     store,
		extractor: extractor,
		keys:      keys,
		client:    client,
		queue:     queue,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *annotationService) load(ctx context.Context, resourceID uuid.UUID) (*types.Resource, error) {
	res, err := s.resources.GetByID(dbctx.New(ctx), resourceID)
	if err != nil {
		return nil, fmt.Errorf("load resource: %w", err)
	}
	if res == nil {
		return nil, ErrResourceNotFound
	}
	return res, nil
}

func (s *annotationService) AnnotateForUser(ctx context.Context, userID, resourceID uuid.UUID, force bool) (*types.Resource, error) {
	res, err := s.load(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	// Other users' resources are reported as missing.
	if res.OwnerUserID != userID {
		return nil, ErrResourceNotFound
	}
	return s.annotate(ctx, res, force)
}

func (s *annotationService) Annotate(ctx context.Context, resourceID uuid.UUID, force bool) (*types.Resource, error) {
	res, err := s.load(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, res, force)
}

func (s *annotationService) annotate(ctx context.Context, res *types.Resource, force bool) (*types.Resource, error) {
	if res.HasCachedExplanation() && !force {
		return res, nil
	}

	explanation, err := s.explain(ctx, res)
	if err != nil {
		return nil, err
	}

	at := s.now()
	if err := s.resources.SaveExplanation(dbctx.New(ctx), res.ID, explanation, at); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("save explanation: %w", err)
	}
	res.AIProcessed = true
	res.AIExplanation = &explanation
	res.AIProcessedAt = &at
	return res, nil
}

// explain returns the text to store. Extraction problems become the
// placeholder; generation problems are returned to the caller.
func (s *annotationService) explain(ctx context.Context, res *types.Resource) (string, error) {
	data, err := objectstore.ReadAll(ctx, s.store, res.StorageKey, s.cfg.MaxFileBytes)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			s.log.Warn("resource file missing from storage", "resource_id", res.ID, "storage_key", res.StorageKey)
			return ExtractionPlaceholder, nil
		}
		return "", fmt.Errorf("read resource file: %w", err)
	}
	text, err := s.extractor.Extract(res.FileName, res.MimeType, data)
	if err != nil {
		s.log.Warn("text extraction failed", "resource_id", res.ID, "error", err)
		return ExtractionPlaceholder, nil
	}
	if !usableText(text, minUsableLetters) {
		s.log.Info("no usable text in resource", "resource_id", res.ID, "chars", len(text))
		return ExtractionPlaceholder, nil
	}

	service, key, err := s.keys.Resolve(ctx, res.OwnerUserID, "")
	if err != nil {
		return "", err
	}
	ctx = llm.WithCaller(ctx, res.OwnerUserID)
	summary, err := s.client.SummarizeResource(ctx, service, key, res.Title, truncateRunes(text, s.cfg.MaxPromptChars))
	if err != nil {
		return "", err
	}
	return summary, nil
}

func (s *annotationService) Enqueue(ctx context.Context, userID, resourceID uuid.UUID, force bool) (string, error) {
	res, err := s.load(ctx, resourceID)
	if err != nil {
		return "", err
	}
	if res.OwnerUserID != userID {
		return "", ErrResourceNotFound
	}
	if s.queue == nil {
		return "", fmt.Errorf("annotation queue not configured")
	}
	job, err := jobs.NewJob(JobTypeAnnotateResource, annotationPayload{ResourceID: resourceID, Force: force})
	if err != nil {
		return "", err
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return "", fmt.Errorf("enqueue annotation: %w", err)
	}
	s.log.Debug("annotation queued", "resource_id", resourceID, "job_id", job.ID)
	return job.ID, nil
}

// AnnotationJobHandler runs queued annotations on the worker pool.
type AnnotationJobHandler struct {
	svc AnnotationService
}

func NewAnnotationJobHandler(svc AnnotationService) *AnnotationJobHandler {
	return &AnnotationJobHandler{svc: svc}
}

func (h *AnnotationJobHandler) Type() string { return JobTypeAnnotateResource }

func (h *AnnotationJobHandler) Handle(ctx context.Context, job jobs.Job) error {
	var p annotationPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		return jobs.Permanent(fmt.Errorf("decode payload: %w", err))
	}
	_, err := h.svc.Annotate(ctx, p.ResourceID, p.Force)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrResourceNotFound),
		errors.Is(err, ErrMissingCredential),
		errors.Is(err, llm.ErrInvalidCredential),
		errors.Is(err, llm.ErrUnknownService):
		return jobs.Permanent(err)
	default:
		return err
	}
}
