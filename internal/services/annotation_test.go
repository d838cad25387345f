package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/skillpath-backend/internal/data/repos/testutil"
	"github.com/yungbote/skillpath-backend/internal/jobs"
	"github.com/yungbote/skillpath-backend/internal/platform/llm"
)

func TestAnnotateIsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	e.saveKey(t, owner, "owner-key")
	res := e.seedResource(t, owner, studyText)
	before := e.mock.CallCount()

	e.mock.AddResponse(llm.MockResponse{Text: "A summary of binary search."})
	first, err := e.annotations.AnnotateForUser(ctx, owner, res.ID, false)
	if err != nil {
		t.Fatalf("first annotate: %v", err)
	}
	if !first.AIProcessed || first.AIExplanation == nil || *first.AIExplanation != "A summary of binary search." {
		t.Fatalf("unexpected first result %+v", first)
	}
	call, _ := e.mock.LastCall()
	if call.APIKey != "owner-key" {
		t.Fatalf("annotation should use the owner's key, got %q", call.APIKey)
	}

	second, err := e.annotations.AnnotateForUser(ctx, owner, res.ID, false)
	if err != nil {
		t.Fatalf("second annotate: %v", err)
	}
	if *second.AIExplanation != *first.AIExplanation {
		t.Fatalf("cached explanation changed: %q", *second.AIExplanation)
	}
	if got := e.mock.CallCount() - before; got != 1 {
		t.Fatalf("expected exactly one generation call, got %d", got)
	}

	e.mock.AddResponse(llm.MockResponse{Text: "A fresher summary."})
	forced, err := e.annotations.AnnotateForUser(ctx, owner, res.ID, true)
	if err != nil {
		t.Fatalf("forced annotate: %v", err)
	}
	if *forced.AIExplanation != "A fresher summary." || !forced.AIProcessed {
		t.Fatalf("force did not regenerate: %+v", forced)
	}
	if got := e.mock.CallCount() - before; got != 2 {
		t.Fatalf("expected two generation calls after force, got %d", got)
	}

	stored, err := e.resourceRepo.GetByID(testDBC(), res.ID)
	if err != nil || stored == nil || !stored.HasCachedExplanation() {
		t.Fatalf("explanation not persisted: %+v %v", stored, err)
	}
}

func TestAnnotateUnreadableFileUsesPlaceholder(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	e.saveKey(t, owner, "owner-key")
	before := e.mock.CallCount()

	missing := testutil.SeedResource(t, ctx, e.db, owner, "resources/missing.pdf")
	got, err := e.annotations.Annotate(ctx, missing.ID, false)
	if err != nil {
		t.Fatalf("Annotate missing: %v", err)
	}
	if *got.AIExplanation != ExtractionPlaceholder || !got.AIProcessed {
		t.Fatalf("expected placeholder, got %+v", got)
	}

	blank := e.seedResource(t, owner, "   1234   ")
	got, err = e.annotations.Annotate(ctx, blank.ID, false)
	if err != nil {
		t.Fatalf("Annotate blank: %v", err)
	}
	if *got.AIExplanation != ExtractionPlaceholder {
		t.Fatalf("expected placeholder for unusable text, got %q", *got.AIExplanation)
	}
	if e.mock.CallCount() != before {
		t.Fatalf("placeholder path must not call the provider")
	}
}

func TestAnnotateErrors(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	res := e.seedResource(t, owner, studyText)

	if _, err := e.annotations.Annotate(ctx, uuid.New(), false); !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound, got %v", err)
	}
	if _, err := e.annotations.AnnotateForUser(ctx, uuid.New(), res.ID, false); !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("non-owner should see ErrResourceNotFound, got %v", err)
	}
	if _, err := e.annotations.Annotate(ctx, res.ID, false); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	stored, _ := e.resourceRepo.GetByID(testDBC(), res.ID)
	if stored.AIProcessed {
		t.Fatalf("failed generation must not mark the resource processed")
	}
}

func TestAnnotationJobHandler(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	e.saveKey(t, owner, "owner-key")
	res := e.seedResource(t, owner, studyText)
	h := NewAnnotationJobHandler(e.annotations)

	if _, err := e.annotations.Enqueue(ctx, uuid.New(), res.ID, false); !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("non-owner enqueue: %v", err)
	}
	jobID, err := e.annotations.Enqueue(ctx, owner, res.ID, false)
	if err != nil || jobID == "" {
		t.Fatalf("Enqueue: %q %v", jobID, err)
	}
	job, err := e.queue.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if job.Type != h.Type() {
		t.Fatalf("unexpected job type %q", job.Type)
	}

	e.mock.AddResponse(llm.MockResponse{Err: errors.New("upstream timeout")})
	if err := h.Handle(ctx, job); err == nil || jobs.IsPermanent(err) {
		t.Fatalf("upstream failures should be retryable, got %v", err)
	}
	e.mock.AddResponse(llm.MockResponse{Text: "summary"})
	if err := h.Handle(ctx, job); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	gone, _ := jobs.NewJob(JobTypeAnnotateResource, map[string]any{"resource_id": uuid.New()})
	if err := h.Handle(ctx, gone); !jobs.IsPermanent(err) {
		t.Fatalf("missing resource should be permanent, got %v", err)
	}
	broken := jobs.Job{Type: JobTypeAnnotateResource, Payload: []byte("{")}
	if err := h.Handle(ctx, broken); !jobs.IsPermanent(err) {
		t.Fatalf("bad payload should be permanent, got %v", err)
	}
}
