package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryQueue is a buffered channel. Jobs do not survive a restart.
type MemoryQueue struct {
	ch      chan Job
	done    chan struct{}
	once    sync.Once
	pending atomic.Int64

	mu      sync.Mutex
	timers  map[*time.Timer]struct{}
	running sync.WaitGroup
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryQueue{
		ch:     make(chan Job, capacity),
		done:   make(chan struct{}),
		timers: make(map[*time.Timer]struct{}),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.ch <- job:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Retry(ctx context.Context, job Job, delay time.Duration) error {
	if delay <= 0 {
		return q.Enqueue(ctx, job)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	q.pending.Add(1)
	q.running.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		defer q.running.Done()
		defer q.pending.Add(-1)
		q.mu.Lock()
		delete(q.timers, timer)
		q.mu.Unlock()
		_ = q.Enqueue(context.Background(), job)
	})
	q.timers[timer] = struct{}{}
	return nil
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (Job, error) {
	select {
	case job := <-q.ch:
		return job, nil
	case <-q.done:
		return Job{}, ErrQueueClosed
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// Depth counts queued jobs plus retries still waiting out their delay.
func (q *MemoryQueue) Depth(context.Context) (int64, error) {
	return int64(len(q.ch)) + q.pending.Load(), nil
}

// Close drops retries still waiting out their delay and waits for any
// redelivery already in flight.
func (q *MemoryQueue) Close() error {
	q.once.Do(func() {
		q.mu.Lock()
		close(q.done)
		for timer := range q.timers {
			if timer.Stop() {
				q.running.Done()
				q.pending.Add(-1)
			}
			delete(q.timers, timer)
		}
		q.mu.Unlock()
	})
	q.running.Wait()
	return nil
}
