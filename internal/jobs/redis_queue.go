package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

// promoteDueScript moves delayed jobs whose time has come onto the ready list.
var promoteDueScript = goredis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
for _, raw in ipairs(due) do
  redis.call('ZREM', KEYS[1], raw)
  redis.call('LPUSH', KEYS[2], raw)
end
return #due
`)

type RedisQueueConfig struct {
	Addr     string
	Password string
	DB       int
	// Name prefixes the ready list and delayed set keys.
	Name string
	// PollInterval bounds how long Dequeue blocks before promoting delayed jobs.
	PollInterval time.Duration
}

// RedisQueue keeps ready jobs in a list and delayed retries in a sorted set
// scored by due time.
type RedisQueue struct {
	log      *logger.Logger
	rdb      *goredis.Client
	readyKey string
	delayKey string
	poll     time.Duration
}

func NewRedisQueue(ctx context.Context, log *logger.Logger, cfg RedisQueueConfig) (*RedisQueue, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "skillpath:jobs"
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = time.Second
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisQueue{
		log:      log.With("service", "RedisQueue", "queue", name),
		rdb:      rdb,
		readyKey: name + ":ready",
		delayKey: name + ":delayed",
		poll:     poll,
	}, nil
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return q.rdb.LPush(ctx, q.readyKey, raw).Err()
}

func (q *RedisQueue) Retry(ctx context.Context, job Job, delay time.Duration) error {
	if delay <= 0 {
		return q.Enqueue(ctx, job)
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	due := time.Now().Add(delay).UnixMilli()
	return q.rdb.ZAdd(ctx, q.delayKey, goredis.Z{Score: float64(due), Member: raw}).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context) (Job, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Job{}, err
		}
		if err := q.promoteDue(ctx); err != nil && ctx.Err() == nil {
			q.log.Warn("promote delayed jobs failed", "error", err)
		}
		res, err := q.rdb.BRPop(ctx, q.poll, q.readyKey).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return Job{}, ctx.Err()
			}
			if errors.Is(err, goredis.ErrClosed) {
				return Job{}, ErrQueueClosed
			}
			return Job{}, fmt.Errorf("redis brpop: %w", err)
		}
		// res is [key, value].
		if len(res) != 2 {
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			q.log.Error("dropping undecodable job", "error", err)
			continue
		}
		return job, nil
	}
}

func (q *RedisQueue) promoteDue(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return promoteDueScript.Run(ctx, q.rdb, []string{q.delayKey, q.readyKey}, now, 100).Err()
}

func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	ready, err := q.rdb.LLen(ctx, q.readyKey).Result()
	if err != nil {
		return 0, err
	}
	delayed, err := q.rdb.ZCard(ctx, q.delayKey).Result()
	if err != nil {
		return 0, err
	}
	return ready + delayed, nil
}

func (q *RedisQueue) Close() error {
	return q.rdb.Close()
}

// Client exposes the underlying connection for health and metrics sampling.
func (q *RedisQueue) Client() *goredis.Client {
	return q.rdb
}
