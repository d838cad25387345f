package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/skillpath-backend/internal/jobs"
	"github.com/yungbote/skillpath-backend/internal/observability"
	"github.com/yungbote/skillpath-backend/internal/platform/db"
	"github.com/yungbote/skillpath-backend/internal/platform/envutil"
	"github.com/yungbote/skillpath-backend/internal/platform/llm"
	"github.com/yungbote/skillpath-backend/internal/platform/objectstore"
	"github.com/yungbote/skillpath-backend/internal/services"
)

type Config struct {
	Port            string
	LogMode         string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	MetricsAddr     string

	JWTSecretKey string

	DB db.Config

	EncryptionPassphrase string
	EncryptionSalt       string
	EncryptionIV         string

	LLMDefaultService   string
	DefaultGeminiAPIKey string
	GeminiModel         string
	OpenAIModel         string
	OpenAIBaseURL       string
	AnthropicModel      string

	Storage objectstore.Config

	QueueMode             string
	Redis                 jobs.RedisQueueConfig
	Worker                jobs.PoolConfig
	AnnotationMaxAttempts int

	Ledger services.LedgerConfig

	Otel observability.OtelConfig
}

// LoadConfig reads the environment. It fails only on values that cannot be
// parsed or on secrets required outside development.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		LogMode:         envutil.String("LOG_MODE", "development"),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		AllowedOrigins:  splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		MetricsAddr:     envutil.String("METRICS_ADDR", ""),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),

		DB: db.Config{
			Driver:          envutil.String("DB_DRIVER", "postgres"),
			Host:            envutil.String("POSTGRES_HOST", "localhost"),
			Port:            envutil.String("POSTGRES_PORT", "5432"),
			User:            envutil.String("POSTGRES_USER", "postgres"),
			Password:        envutil.String("POSTGRES_PASSWORD", ""),
			Name:            envutil.String("POSTGRES_NAME", "skillpath"),
			SSLMode:         envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:      envutil.String("SQLITE_PATH", "skillpath.db"),
			MaxOpenConns:    envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    envutil.Int("POSTGRES_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: envutil.Duration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
			SlowThreshold:   envutil.Duration("DB_SLOW_QUERY_THRESHOLD", 500*time.Millisecond),
		},

		EncryptionPassphrase: envutil.String("ENCRYPTION_PASSPHRASE", ""),
		EncryptionSalt:       envutil.String("ENCRYPTION_SALT", ""),
		EncryptionIV:         envutil.String("ENCRYPTION_IV", ""),

		LLMDefaultService:   envutil.String("LLM_DEFAULT_SERVICE", llm.ServiceGemini),
		DefaultGeminiAPIKey: envutil.String("DEFAULT_GEMINI_API_KEY", ""),
		GeminiModel:         envutil.String("GEMINI_MODEL", ""),
		OpenAIModel:         envutil.String("OPENAI_MODEL", ""),
		OpenAIBaseURL:       envutil.String("OPENAI_BASE_URL", ""),
		AnthropicModel:      envutil.String("ANTHROPIC_MODEL", ""),

		Storage: objectstore.Config{
			Mode:            objectstore.Mode(envutil.String("STORAGE_MODE", string(objectstore.ModeLocal))),
			LocalRoot:       envutil.String("STORAGE_LOCAL_ROOT", "./data/uploads"),
			GCSBucket:       envutil.String("GCS_BUCKET", ""),
			GCSEmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", ""),
			S3Bucket:        envutil.String("S3_BUCKET", ""),
			S3Region:        envutil.String("S3_REGION", "us-east-1"),
			S3Endpoint:      envutil.String("S3_ENDPOINT", ""),
			S3AccessKey:     envutil.String("S3_ACCESS_KEY_ID", ""),
			S3SecretKey:     envutil.String("S3_SECRET_ACCESS_KEY", ""),
		},

		QueueMode: strings.ToLower(envutil.String("QUEUE_MODE", "memory")),
		Redis: jobs.RedisQueueConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Name:     envutil.String("REDIS_QUEUE_NAME", "skillpath:jobs"),
		},
		Worker: jobs.PoolConfig{
			Concurrency: envutil.Int("WORKER_CONCURRENCY", 2),
			BaseBackoff: envutil.Duration("WORKER_BASE_BACKOFF", 2*time.Second),
			MaxBackoff:  envutil.Duration("WORKER_MAX_BACKOFF", 5*time.Minute),
		},
		AnnotationMaxAttempts: envutil.Int("ANNOTATION_MAX_ATTEMPTS", 5),

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "skillpath-backend"),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development"),
			Version:     envutil.String("OTEL_SERVICE_VERSION", "dev"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		},
	}
	cfg.Worker.MaxAttempts = cfg.AnnotationMaxAttempts

	ratio, err := parseRatio(envutil.String("OTEL_SAMPLE_RATIO", ""))
	if err != nil {
		return Config{}, err
	}
	cfg.Otel.SampleRatio = ratio

	if cfg.Ledger.LevelPolicy, err = services.ParseLevelPolicy(envutil.String("LEVEL_POLICY", "")); err != nil {
		return Config{}, err
	}
	if cfg.Ledger.CompletionPolicy, err = services.ParseCompletionPolicy(envutil.String("COMPLETION_POLICY", "")); err != nil {
		return Config{}, err
	}

	switch cfg.QueueMode {
	case "memory", "redis":
	default:
		return Config{}, fmt.Errorf("unsupported QUEUE_MODE %q", cfg.QueueMode)
	}

	if !isDevelopment(cfg.LogMode) {
		if cfg.JWTSecretKey == "" {
			return Config{}, fmt.Errorf("JWT_SECRET_KEY is required in %s mode", cfg.LogMode)
		}
		if cfg.EncryptionPassphrase == "" || cfg.EncryptionSalt == "" {
			return Config{}, fmt.Errorf("ENCRYPTION_PASSPHRASE and ENCRYPTION_SALT are required in %s mode", cfg.LogMode)
		}
	}
	if cfg.JWTSecretKey == "" {
		cfg.JWTSecretKey = "dev-secret"
	}
	if cfg.EncryptionPassphrase == "" {
		cfg.EncryptionPassphrase = "dev-passphrase"
	}
	if cfg.EncryptionSalt == "" {
		cfg.EncryptionSalt = "dev-salt"
	}
	return cfg, nil
}

// DefaultKeys returns the server-owned credentials by service.
func (c Config) DefaultKeys() map[string]string {
	out := map[string]string{}
	if c.DefaultGeminiAPIKey != "" {
		out[llm.ServiceGemini] = c.DefaultGeminiAPIKey
	}
	return out
}

func isDevelopment(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		return false
	}
	return true
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseRatio(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	var f float64
	if _, err := fmt.Sscanf(raw, "%g", &f); err != nil {
		return 0, fmt.Errorf("invalid OTEL_SAMPLE_RATIO %q: %w", raw, err)
	}
	return f, nil
}
