package objectstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

func newLocal(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(logger.Nop(), t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return s
}

func TestLocalStoreRoundTrip(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	if err := s.Put(ctx, "resources/a/doc.pdf", strings.NewReader("%PDF-1.4 body")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := ReadAll(ctx, s, "/resources/a/doc.pdf", 0)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "%PDF-1.4 body" {
		t.Fatalf("unexpected body %q", got)
	}

	head, err := ReadAll(ctx, s, "resources/a/doc.pdf", 4)
	if err != nil {
		t.Fatalf("ReadAll limited: %v", err)
	}
	if string(head) != "%PDF" {
		t.Fatalf("limit not applied: %q", head)
	}

	if err := s.Delete(ctx, "resources/a/doc.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "resources/a/doc.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "resources/a/doc.pdf"); err != nil {
		t.Fatalf("Delete missing should be a no-op: %v", err)
	}
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	s := newLocal(t)
	if err := s.Put(context.Background(), "../outside.txt", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for escaping key")
	}
	if _, err := s.Get(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestNewDefaultsToLocal(t *testing.T) {
	s, err := New(context.Background(), logger.Nop(), Config{LocalRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Mode() != ModeLocal {
		t.Fatalf("expected local mode, got %s", s.Mode())
	}
	if _, err := New(context.Background(), logger.Nop(), Config{Mode: "ftp"}); err == nil {
		t.Fatalf("expected unsupported mode error")
	}
}
