package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/skillpath-backend/internal/jobs"
	"github.com/yungbote/skillpath-backend/internal/observability"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
	"github.com/yungbote/skillpath-backend/internal/services"
)

type Services struct {
	Profiles    services.ProfileService
	Ledger      services.ProgressLedger
	Proficiency services.ProficiencyUpdater
	Submissions services.SubmissionService
	APIKeys     services.APIKeyService
	Annotations services.AnnotationService
	Concepts    services.ConceptService
	Assist      services.AssistService

	Jobs *jobs.Registry
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	profiles := services.NewProfileService(db, log, reposet.UserProfile, reposet.Module, reposet.SkillProficiency, reposet.UserActivityProgress)
	ledger := services.NewProgressLedger(db, log, reposet.UserProfile, reposet.Activity, reposet.UserActivityProgress, cfg.Ledger)
	proficiency := services.NewProficiencyUpdater(db, log, reposet.UserProfile, reposet.Skill, reposet.SkillProficiency)
	submissions := services.NewSubmissionService(db, log, reposet.Activity, profiles, ledger, proficiency, metrics)

	keys := services.NewAPIKeyService(db, log, reposet.UserProfile, reposet.UserAPIKey, clients.Cipher, clients.LLM, services.APIKeyConfig{
		DefaultService: cfg.LLMDefaultService,
		DefaultKeys:    cfg.DefaultKeys(),
	})
	annotations := services.NewAnnotationService(db, log, reposet.Resource, clients.Store, nil, keys, clients.LLM, clients.Queue, services.AnnotationConfig{})
	concepts := services.NewConceptService(db, log, reposet.ConceptExplanation, reposet.UserProfile, keys, clients.LLM)
	assist := services.NewAssistService(log, keys, profiles, clients.LLM)

	registry := jobs.NewRegistry()
	if err := registry.Register(services.NewAnnotationJobHandler(annotations)); err != nil {
		return Services{}, fmt.Errorf("register annotation job: %w", err)
	}

	return Services{
		Profiles:    profiles,
		Ledger:      ledger,
		Proficiency: proficiency,
		Submissions: submissions,
		APIKeys:     keys,
		Annotations: annotations,
		Concepts:    concepts,
		Assist:      assist,
		Jobs:        registry,
	}, nil
}
