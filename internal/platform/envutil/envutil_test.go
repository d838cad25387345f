package envutil

import (
	"testing"
	"time"
)

func TestString(t *testing.T) {
	t.Setenv("SKILLPATH_TEST_STR", "  value ")
	if got := String("SKILLPATH_TEST_STR", "def"); got != "value" {
		t.Fatalf("String: got %q", got)
	}
	if got := String("SKILLPATH_TEST_MISSING", "def"); got != "def" {
		t.Fatalf("String default: got %q", got)
	}
}

func TestInt(t *testing.T) {
	t.Setenv("SKILLPATH_TEST_INT", "12")
	if got := Int("SKILLPATH_TEST_INT", 3); got != 12 {
		t.Fatalf("Int: got %d", got)
	}
	t.Setenv("SKILLPATH_TEST_INT", "twelve")
	if got := Int("SKILLPATH_TEST_INT", 3); got != 3 {
		t.Fatalf("Int fallback: got %d", got)
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{"on": true, "TRUE": true, "0": false, "off": false}
	for raw, want := range cases {
		t.Setenv("SKILLPATH_TEST_BOOL", raw)
		if got := Bool("SKILLPATH_TEST_BOOL", !want); got != want {
			t.Fatalf("Bool(%q): got %v want %v", raw, got, want)
		}
	}
	t.Setenv("SKILLPATH_TEST_BOOL", "maybe")
	if got := Bool("SKILLPATH_TEST_BOOL", true); !got {
		t.Fatalf("Bool fallback: got %v", got)
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("SKILLPATH_TEST_DUR", "1500ms")
	if got := Duration("SKILLPATH_TEST_DUR", time.Second); got != 1500*time.Millisecond {
		t.Fatalf("Duration: got %s", got)
	}
	t.Setenv("SKILLPATH_TEST_DUR", "45")
	if got := Duration("SKILLPATH_TEST_DUR", time.Second); got != 45*time.Second {
		t.Fatalf("Duration seconds: got %s", got)
	}
	t.Setenv("SKILLPATH_TEST_DUR", "soon")
	if got := Duration("SKILLPATH_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("Duration fallback: got %s", got)
	}
}
