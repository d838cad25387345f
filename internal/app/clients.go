package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/skillpath-backend/internal/jobs"
	"github.com/yungbote/skillpath-backend/internal/observability"
	"github.com/yungbote/skillpath-backend/internal/platform/crypto"
	"github.com/yungbote/skillpath-backend/internal/platform/llm"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
	"github.com/yungbote/skillpath-backend/internal/platform/objectstore"
	"github.com/yungbote/skillpath-backend/internal/services"
)

type Clients struct {
	Cipher *crypto.Versioned
	Store  objectstore.Store
	Queue  jobs.Queue
	// Redis is set only when the queue runs on redis.
	Redis *goredis.Client
	LLM   *llm.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, reposet Repos, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	cipher, err := crypto.New(crypto.Config{
		Passphrase: cfg.EncryptionPassphrase,
		Salt:       cfg.EncryptionSalt,
		LegacyIV:   cfg.EncryptionIV,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init cipher: %w", err)
	}

	store, err := objectstore.New(ctx, log, cfg.Storage)
	if err != nil {
		return Clients{}, fmt.Errorf("init object store: %w", err)
	}

	var (
		queue jobs.Queue
		rdb   *goredis.Client
	)
	switch cfg.QueueMode {
	case "redis":
		rq, err := jobs.NewRedisQueue(ctx, log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis queue: %w", err)
		}
		queue, rdb = rq, rq.Client()
	default:
		queue = jobs.NewMemoryQueue(256)
	}

	client, err := wireLLM(log, cfg, reposet, metrics)
	if err != nil {
		_ = queue.Close()
		return Clients{}, err
	}

	return Clients{Cipher: cipher, Store: store, Queue: queue, Redis: rdb, LLM: client}, nil
}

// wireLLM registers every provider behind the call-log decorator. Providers
// are keyless; the user's credential travels with each request.
func wireLLM(log *logger.Logger, cfg Config, reposet Repos, metrics *observability.Metrics) (*llm.Client, error) {
	prompts, err := llm.DefaultCatalogue()
	if err != nil {
		return nil, fmt.Errorf("load prompt catalogue: %w", err)
	}
	recorder := services.NewCallLogRecorder(reposet.AICallLog)
	providers := []llm.Provider{
		llm.NewGeminiProvider(cfg.GeminiModel),
		llm.NewOpenAIProvider(cfg.OpenAIModel, cfg.OpenAIBaseURL),
		llm.NewAnthropicProvider(cfg.AnthropicModel),
	}
	for i, p := range providers {
		providers[i] = llm.WithLogging(p, recorder, metrics, log)
	}
	client, err := llm.NewClient(log, prompts, providers...)
	if err != nil {
		return nil, fmt.Errorf("init llm client: %w", err)
	}
	return client, nil
}
