package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"api_key", "AIza-secret",
		"encrypted_key", "v2:abcd",
		"service", "gemini",
	})
	if len(out) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("api_key not redacted: %v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("encrypted_key not redacted: %v", out[3])
	}
	if out[5] != "gemini" {
		t.Fatalf("service changed: %v", out[5])
	}
}

func TestSanitizeKVsHashesUserIDs(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", "3b1f2c1e-0000-4000-8000-000000000000"})
	got, ok := out[1].(string)
	if !ok || !strings.HasPrefix(got, "hash:") {
		t.Fatalf("user_id not hashed: %v", out[1])
	}
	if len(got) != len("hash:")+12 {
		t.Fatalf("unexpected hash length: %q", got)
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"service", "gemini", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"development", "production", "test"} {
		log, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		log.With("component", "test").Debug("hello", "k", "v")
	}
	Nop().Info("discarded")
}
