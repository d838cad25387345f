// Package jobs runs background work off a queue with bounded retries.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrQueueClosed = errors.New("queue closed")

// Job is one unit of background work. Attempt counts completed tries.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Attempt    int             `json:"attempt"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	LastError  string          `json:"last_error,omitempty"`
}

// NewJob marshals payload into a fresh job of the given type.
func NewJob(jobType string, payload any) (Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("marshal %s payload: %w", jobType, err)
	}
	return Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Queue is a FIFO of jobs with delayed redelivery for retries.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Retry redelivers job after delay.
	Retry(ctx context.Context, job Job, delay time.Duration) error
	// Dequeue blocks until a job is ready or ctx is done.
	Dequeue(ctx context.Context) (Job, error)
	Depth(ctx context.Context) (int64, error)
	Close() error
}
