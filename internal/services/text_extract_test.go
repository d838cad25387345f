package services

import (
	"strings"
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	x := NewTextExtractor()
	got, err := x.Extract("notes.txt", "text/plain", []byte("  hello\n\n  world\t!  "))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "hello world !" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestExtractRejectsBadInput(t *testing.T) {
	x := NewTextExtractor()
	if _, err := x.Extract("a.pdf", "application/pdf", nil); err == nil {
		t.Fatalf("expected error for empty file")
	}
	if _, err := x.Extract("a.pdf", "application/pdf", []byte{0x00, 0x01, 0x02, 0x03}); err == nil {
		t.Fatalf("expected error for fake pdf")
	}
}

func TestUsableText(t *testing.T) {
	if usableText("1234 5678 ....", 5) {
		t.Fatalf("digits are not letters")
	}
	if !usableText(strings.Repeat("ab ", 30), 40) {
		t.Fatalf("expected usable text")
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("héllo", 2); got != "hé" {
		t.Fatalf("got %q", got)
	}
	if got := truncateRunes("abc", 10); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
