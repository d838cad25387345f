package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/skillpath-backend/internal/platform/llm"
)

func TestConceptExplanationIsCachedPerUser(t *testing.T) {
	e := newTestEnv(t, withDefaultKey("gemini", "server-key"))
	ctx := context.Background()
	userID := uuid.New()
	req := ConceptRequest{ConceptID: "ch2-recursion", Concept: "Recursion", Context: "A function calling itself."}

	e.mock.AddResponse(llm.MockResponse{Text: "Recursion explained."})
	row, cached, err := e.concepts.Explain(ctx, userID, req)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if cached || row.Explanation != "Recursion explained." {
		t.Fatalf("unexpected first result cached=%v %+v", cached, row)
	}
	call, _ := e.mock.LastCall()
	if !strings.Contains(call.Request.Prompt, "Recursion") {
		t.Fatalf("prompt does not mention the concept: %q", call.Request.Prompt)
	}

	row, cached, err = e.concepts.Explain(ctx, userID, req)
	if err != nil || !cached || row.Explanation != "Recursion explained." {
		t.Fatalf("expected cached explanation, got cached=%v %+v %v", cached, row, err)
	}
	calls := e.mock.CallCount()

	_, cached, err = e.concepts.Explain(ctx, uuid.New(), req)
	if err != nil || cached {
		t.Fatalf("other users must not share the cache: cached=%v %v", cached, err)
	}

	e.mock.AddResponse(llm.MockResponse{Text: "Recursion, again."})
	req.Force = true
	row, cached, err = e.concepts.Explain(ctx, userID, req)
	if err != nil || cached || row.Explanation != "Recursion, again." {
		t.Fatalf("force should regenerate: cached=%v %+v %v", cached, row, err)
	}
	if e.mock.CallCount() != calls+2 {
		t.Fatalf("unexpected call count %d", e.mock.CallCount())
	}
}

func TestConceptValidation(t *testing.T) {
	e := newTestEnv(t)
	if _, _, err := e.concepts.Explain(context.Background(), uuid.New(), ConceptRequest{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := e.concepts.Explain(context.Background(), uuid.New(), ConceptRequest{ConceptID: "x"}); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestAssistUsesResolvedKey(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := e.assist.ExplainCode(ctx, userID, "", "print(1)", "python"); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}

	e.saveKey(t, userID, "user-key")
	e.mock.AddResponse(llm.MockResponse{Text: "It prints one."})
	out, err := e.assist.ExplainCode(ctx, userID, "", "print(1)", "python")
	if err != nil || out != "It prints one." {
		t.Fatalf("ExplainCode: %q %v", out, err)
	}
	call, _ := e.mock.LastCall()
	if call.APIKey != "user-key" || !strings.Contains(call.Request.Prompt, "print(1)") {
		t.Fatalf("unexpected call %+v", call)
	}

	e.mock.AddResponse(rejectedKey())
	_, err = e.assist.SuggestAlternative(ctx, userID, "gemini", "x = x + 1", "python", "shorter")
	if !errors.Is(err, llm.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if msg := GenerationMessage(err); !strings.Contains(msg, "rejected") {
		t.Fatalf("unexpected message %q", msg)
	}

	if _, err := e.assist.BookContent(ctx, userID, "", "Graphs", "BFS"); err != nil {
		t.Fatalf("BookContent: %v", err)
	}
}

func TestCallsAreRecorded(t *testing.T) {
	e := newTestEnv(t)
	userID := uuid.New()
	e.saveKey(t, userID, "user-key")
	rows, err := e.callLogRepo.ListByUser(testDBC(), userID, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one call log row, got %d", len(rows))
	}
	if rows[0].Purpose != "validate_key" || !rows[0].Success || rows[0].Service != llm.ServiceGemini {
		t.Fatalf("unexpected call log %+v", rows[0])
	}
}
