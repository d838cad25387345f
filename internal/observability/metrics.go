package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

var latencyBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

// Metrics is the process-wide metric registry. All methods are safe on a nil
// receiver so callers can pass a disabled registry around freely.
type Metrics struct {
	apiRequests  *Vec
	apiLatency   *HistogramVec
	apiInflight  *Vec
	llmCalls     *Vec
	llmLatency   *HistogramVec
	jobs         *Vec
	jobLatency   *HistogramVec
	queueDepth   *Vec
	submissions  *Vec
	pgStats      *Vec
	redisUp      *Vec
	redisPingSec *Vec

	collectors []collector
}

func New() *Metrics {
	m := &Metrics{
		apiRequests: NewCounterVec("sp_api_requests_total", "API requests by method/route/status.", "method", "route", "status"),
		apiLatency:  NewHistogramVec("sp_api_request_duration_seconds", "API request latency by method/route.", latencyBuckets, "method", "route"),
		apiInflight: NewGaugeVec("sp_api_inflight_requests", "In-flight API requests."),
		llmCalls:    NewCounterVec("sp_llm_calls_total", "Generative content calls by service/outcome.", "service", "outcome"),
		llmLatency: NewHistogramVec("sp_llm_call_duration_seconds", "Generative content call latency by service.",
			[]float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}, "service"),
		jobs:         NewCounterVec("sp_jobs_total", "Background jobs by type/outcome.", "type", "outcome"),
		jobLatency:   NewHistogramVec("sp_job_duration_seconds", "Background job duration by type.", latencyBuckets, "type"),
		queueDepth:   NewGaugeVec("sp_job_queue_depth", "Jobs waiting in the queue."),
		submissions:  NewCounterVec("sp_submissions_total", "Graded submissions by activity type/result.", "type", "result"),
		pgStats:      NewGaugeVec("sp_db_pool", "Database pool statistics.", "stat"),
		redisUp:      NewGaugeVec("sp_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPingSec: NewGaugeVec("sp_redis_ping_seconds", "Redis ping latency."),
	}
	m.collectors = []collector{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmCalls, m.llmLatency,
		m.jobs, m.jobLatency, m.queueDepth,
		m.submissions,
		m.pgStats, m.redisUp, m.redisPingSec,
	}
	return m
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range m.collectors {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

// StartServer serves /metrics on its own listener until ctx is done.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	addr = strings.TrimSpace(addr)
	if m == nil || addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", m.WriteHTTP)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err, "addr", addr)
		}
	}()
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflight(delta float64) {
	if m == nil {
		return
	}
	m.apiInflight.Add(delta)
}

// ObserveLLMCall records one generative call; outcome is "success" or an
// error class.
func (m *Metrics) ObserveLLMCall(service, outcome string, latency time.Duration) {
	if m == nil {
		return
	}
	m.llmCalls.Inc(service, outcome)
	m.llmLatency.Observe(latency.Seconds(), service)
}

func (m *Metrics) ObserveJob(jobType, outcome string, latency time.Duration) {
	if m == nil {
		return
	}
	m.jobs.Inc(jobType, outcome)
	m.jobLatency.Observe(latency.Seconds(), jobType)
}

func (m *Metrics) SetQueueDepth(depth int64) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) ObserveSubmission(activityType string, passed bool) {
	if m == nil {
		return
	}
	result := "failed"
	if passed {
		result = "passed"
	}
	m.submissions.Inc(activityType, result)
}

// StartDBCollector samples connection pool stats every interval.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					log.Warn("metrics: db stats unavailable", "error", err)
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

// StartRedisCollector pings redis every interval. It owns rdb and closes it
// when ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer rdb.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					log.Warn("metrics: redis ping failed", "error", err)
					continue
				}
				m.redisUp.Set(1)
				m.redisPingSec.Set(time.Since(start).Seconds())
			}
		}
	}()
}
