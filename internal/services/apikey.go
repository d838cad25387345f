package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/yungbote/skillpath-backend/internal/data/repos"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"github.com/yungbote/skillpath-backend/internal/platform/llm"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

// KeyCipher protects stored credentials.
type KeyCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
	Reencrypt(ciphertext string) (string, bool, error)
}

// KeyValidation is the outcome of saving a key. Rejected keys are reported
// here, never as an error.
type KeyValidation struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type KeyStatus struct {
	Service    string `json:"service"`
	Configured bool   `json:"configured"`
}

type KeyMigrationReport struct {
	Scanned  int
	Migrated int
	Failed   int
}

type APIKeyConfig struct {
	// DefaultService is used when a caller does not name one.
	DefaultService string
	// DefaultKeys are server-owned credentials keyed by service, used when a
	// user has none of their own.
	DefaultKeys map[string]string
}

type APIKeyService interface {
	Save(ctx context.Context, userID uuid.UUID, service, apiKey string) (KeyValidation, error)
	List(ctx context.Context, userID uuid.UUID) ([]KeyStatus, error)
	Delete(ctx context.Context, userID uuid.UUID, service string) (bool, error)
	// Resolve returns a usable plaintext credential for the user, preferring
	// their own key for service and falling back to the server default.
	Resolve(ctx context.Context, userID uuid.UUID, service string) (string, string, error)
	MigrateLegacy(ctx context.Context, batchSize int) (KeyMigrationReport, error)
}

type apiKeyService struct {
	db       *gorm.DB
	log      *logger.Logger
	profiles repos.UserProfileRepo
	keys     repos.UserAPIKeyRepo
	cipher   KeyCipher
	client   *llm.Client
	cfg      APIKeyConfig
}

func NewAPIKeyService(db *gorm.DB, log *logger.Logger, profiles repos.UserProfileRepo, keys repos.UserAPIKeyRepo, cipher KeyCipher, client *llm.Client, cfg APIKeyConfig) APIKeyService {
	cfg.DefaultService = llm.NormalizeService(cfg.DefaultService)
	if cfg.DefaultService == "" {
		cfg.DefaultService = llm.ServiceGemini
	}
	defaults := make(map[string]string, len(cfg.DefaultKeys))
	for svc, key := range cfg.DefaultKeys {
		if strings.TrimSpace(key) != "" {
			defaults[llm.NormalizeService(svc)] = strings.TrimSpace(key)
		}
	}
	cfg.DefaultKeys = defaults
	return &apiKeyService{
		db:       db,
		log:      log.With("service", "APIKeyService"),
		profiles: profiles,
		keys:     keys,
		cipher:   cipher,
		client:   client,
		cfg:      cfg,
	}
}

func (s *apiKeyService) Save(ctx context.Context, userID uuid.UUID, service, apiKey string) (KeyValidation, error) {
	service = llm.NormalizeService(service)
	apiKey = strings.TrimSpace(apiKey)
	if service == "" || apiKey == "" {
		return KeyValidation{Valid: false, Error: "Both service and apiKey are required."}, nil
	}
	if !s.client.Supports(service) {
		return KeyValidation{Valid: false, Error: GenerationMessage(ErrUnsupportedService)}, nil
	}

	if err := s.client.ValidateKey(llm.WithCaller(ctx, userID), service, apiKey); err != nil {
		s.log.Info("api key rejected", "user_id", userID, "service", service, "error_class", llm.ErrorClass(err))
		return KeyValidation{Valid: false, Error: GenerationMessage(err)}, nil
	}

	ct, err := s.cipher.Encrypt(apiKey)
	if err != nil {
		return KeyValidation{}, fmt.Errorf("encrypt api key: %w", err)
	}
	dbc := dbctx.New(ctx)
	profile, err := s.profiles.Ensure(dbc, userID)
	if err != nil {
		return KeyValidation{}, fmt.Errorf("ensure profile: %w", err)
	}
	if _, err := s.keys.Upsert(dbc, profile.ID, service, ct); err != nil {
		return KeyValidation{}, fmt.Errorf("store api key: %w", err)
	}
	s.log.Info("api key saved", "user_id", userID, "service", service)
	return KeyValidation{Valid: true}, nil
}

func (s *apiKeyService) List(ctx context.Context, userID uuid.UUID) ([]KeyStatus, error) {
	dbc := dbctx.New(ctx)
	configured := map[string]bool{}
	profile, err := s.profiles.GetByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile != nil {
		rows, err := s.keys.ListByProfile(dbc, profile.ID)
		if err != nil {
			return nil, fmt.Errorf("list api keys: %w", err)
		}
		for _, r := range rows {
			configured[r.Service] = true
		}
	}
	services := lo.Uniq(append(s.client.Services(), lo.Keys(configured)...))
	sort.Strings(services)
	return lo.Map(services, func(svc string, _ int) KeyStatus {
		return KeyStatus{Service: svc, Configured: configured[svc]}
	}), nil
}

func (s *apiKeyService) Delete(ctx context.Context, userID uuid.UUID, service string) (bool, error) {
	dbc := dbctx.New(ctx)
	profile, err := s.profiles.GetByUserID(dbc, userID)
	if err != nil {
		return false, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return false, nil
	}
	return s.keys.Delete(dbc, profile.ID, llm.NormalizeService(service))
}

func (s *apiKeyService) Resolve(ctx context.Context, userID uuid.UUID, service string) (string, string, error) {
	service = llm.NormalizeService(service)
	dbc := dbctx.New(ctx)
	if userID != uuid.Nil {
		profile, err := s.profiles.GetByUserID(dbc, userID)
		if err != nil {
			return "", "", fmt.Errorf("load profile: %w", err)
		}
		if profile != nil {
			svc, key, err := s.userKey(dbc, profile.ID, service)
			if err != nil {
				return "", "", err
			}
			if key != "" {
				return svc, key, nil
			}
		}
	}
	if service == "" {
		service = s.cfg.DefaultService
	}
	if key := s.cfg.DefaultKeys[service]; key != "" {
		return service, key, nil
	}
	return "", "", ErrMissingCredential
}

// userKey picks the user's key for service, or for any supported service
// when service is empty, trying the default service first.
func (s *apiKeyService) userKey(dbc dbctx.Context, profileID uuid.UUID, service string) (string, string, error) {
	rows, err := s.keys.ListByProfile(dbc, profileID)
	if err != nil {
		return "", "", fmt.Errorf("list api keys: %w", err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Service == s.cfg.DefaultService && rows[j].Service != s.cfg.DefaultService
	})
	for _, row := range rows {
		if service != "" && row.Service != service {
			continue
		}
		if !s.client.Supports(row.Service) {
			continue
		}
		plain, err := s.cipher.Decrypt(row.EncryptedKey)
		if err != nil {
			s.log.Warn("stored api key could not be decrypted", "profile_id", profileID, "service", row.Service, "error", err)
			continue
		}
		s.upgradeKey(dbc, row.ID, row.EncryptedKey)
		return row.Service, plain, nil
	}
	return "", "", nil
}

// upgradeKey rewrites a legacy ciphertext in the current format. Failures
// only log; the caller already holds a usable plaintext.
func (s *apiKeyService) upgradeKey(dbc dbctx.Context, keyID uuid.UUID, ciphertext string) {
	ct, changed, err := s.cipher.Reencrypt(ciphertext)
	if err != nil {
		s.log.Warn("api key re-encryption failed", "key_id", keyID, "error", err)
		return
	}
	if !changed {
		return
	}
	if err := s.keys.UpdateEncryptedKey(dbc, keyID, ct); err != nil {
		s.log.Warn("api key update failed", "key_id", keyID, "error", err)
		return
	}
	s.log.Debug("legacy api key re-encrypted", "key_id", keyID)
}

func (s *apiKeyService) MigrateLegacy(ctx context.Context, batchSize int) (KeyMigrationReport, error) {
	if batchSize <= 0 {
		batchSize = 200
	}
	var report KeyMigrationReport
	dbc := dbctx.New(ctx)
	after := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rows, err := s.keys.ListAfter(dbc, after, batchSize)
		if err != nil {
			return report, fmt.Errorf("list api keys: %w", err)
		}
		if len(rows) == 0 {
			break
		}
		for _, row := range rows {
			report.Scanned++
			after = row.ID
			ct, changed, err := s.cipher.Reencrypt(row.EncryptedKey)
			if err != nil {
				report.Failed++
				s.log.Warn("api key re-encryption failed", "key_id", row.ID, "error", err)
				continue
			}
			if !changed {
				continue
			}
			if err := s.keys.UpdateEncryptedKey(dbc, row.ID, ct); err != nil {
				if errors.Is(err, context.Canceled) {
					return report, err
				}
				report.Failed++
				s.log.Warn("api key update failed", "key_id", row.ID, "error", err)
				continue
			}
			report.Migrated++
		}
		if len(rows) < batchSize {
			break
		}
	}
	s.log.Info("api key migration finished", "scanned", report.Scanned, "migrated", report.Migrated, "failed", report.Failed)
	return report, nil
}
