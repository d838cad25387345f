package jobs

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeRetried   = "retried"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
)

// Observer receives per-job outcomes and queue depth samples.
type Observer interface {
	ObserveJob(jobType, outcome string, latency time.Duration)
	SetQueueDepth(depth int64)
}

type PoolConfig struct {
	Concurrency int
	// MaxAttempts caps tries per job, the first one included.
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	// DepthInterval is how often queue depth is sampled.
	DepthInterval time.Duration
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 5
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 2 * time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Minute
	}
	if c.MaxBackoff < c.BaseBackoff {
		c.MaxBackoff = c.BaseBackoff
	}
	if c.DepthInterval <= 0 {
		c.DepthInterval = 15 * time.Second
	}
	return c
}

// Pool consumes a queue with a fixed number of workers.
type Pool struct {
	log      *logger.Logger
	queue    Queue
	registry *Registry
	cfg      PoolConfig
	observer Observer
}

func NewPool(baseLog *logger.Logger, queue Queue, registry *Registry, cfg PoolConfig, observer Observer) *Pool {
	return &Pool{
		log:      baseLog.With("component", "JobWorker"),
		queue:    queue,
		registry: registry,
		cfg:      cfg.withDefaults(),
		observer: observer,
	}
}

// Run blocks until ctx is cancelled or the queue is closed. In-flight jobs
// finish with the cancelled context.
func (p *Pool) Run(ctx context.Context) error {
	p.log.Info("Starting job worker pool", "concurrency", p.cfg.Concurrency, "max_attempts", p.cfg.MaxAttempts)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.cfg.Concurrency; i++ {
		workerID := i + 1
		g.Go(func() error { return p.runLoop(gctx, workerID) })
	}
	if p.observer != nil {
		g.Go(func() error { return p.sampleDepth(gctx) })
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrQueueClosed) {
		return nil
	}
	return err
}

func (p *Pool) runLoop(ctx context.Context, workerID int) error {
	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.log.Info("Worker loop stopped", "worker_id", workerID)
				return ctx.Err()
			}
			if errors.Is(err, ErrQueueClosed) {
				p.log.Info("Worker loop stopped, queue closed", "worker_id", workerID)
				return err
			}
			p.log.Warn("Dequeue failed", "worker_id", workerID, "error", err)
			if !sleepCtx(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}
		p.Process(ctx, job)
	}
}

// Process runs one job and decides its fate: done, retried later or dropped.
func (p *Pool) Process(ctx context.Context, job Job) string {
	start := time.Now()
	err := p.dispatch(ctx, job)
	job.Attempt++

	outcome := OutcomeSucceeded
	switch {
	case err == nil:
	case IsPermanent(err):
		outcome = OutcomeDropped
		p.log.Warn("Job failed permanently", "job_id", job.ID, "job_type", job.Type, "attempt", job.Attempt, "error", err)
	case job.Attempt >= p.cfg.MaxAttempts:
		outcome = OutcomeFailed
		p.log.Error("Job exhausted retries", "job_id", job.ID, "job_type", job.Type, "attempt", job.Attempt, "error", err)
	default:
		delay := Backoff(job.Attempt, p.cfg.BaseBackoff, p.cfg.MaxBackoff)
		job.LastError = err.Error()
		if rerr := p.queue.Retry(context.WithoutCancel(ctx), job, delay); rerr != nil {
			outcome = OutcomeFailed
			p.log.Error("Job retry could not be scheduled", "job_id", job.ID, "job_type", job.Type, "error", rerr)
			break
		}
		outcome = OutcomeRetried
		p.log.Warn("Job failed, retrying", "job_id", job.ID, "job_type", job.Type, "attempt", job.Attempt, "retry_in", delay.String(), "error", err)
	}
	if p.observer != nil {
		p.observer.ObserveJob(job.Type, outcome, time.Since(start))
	}
	return outcome
}

func (p *Pool) dispatch(ctx context.Context, job Job) (err error) {
	h, ok := p.registry.Get(job.Type)
	if !ok {
		return Permanent(&missingHandlerError{JobType: job.Type})
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Job handler panic", "job_id", job.ID, "job_type", job.Type, "panic", r)
			err = Permanent(&panicError{Val: r})
		}
	}()
	return h.Handle(ctx, job)
}

func (p *Pool) sampleDepth(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.DepthInterval)
	defer ticker.Stop()
	for {
		if depth, err := p.queue.Depth(ctx); err == nil {
			p.observer.SetQueueDepth(depth)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Backoff is exponential in attempt with equal jitter: the result lies in
// [d/2, d] where d = min(max, base*2^(attempt-1)).
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt && d < max; i++ {
		d *= 2
	}
	if d > max {
		d = max
	}
	half := d / 2
	if half <= 0 {
		return d
	}
	return half + rand.N(half+1)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
