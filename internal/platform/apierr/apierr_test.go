package apierr

import (
	"errors"
	"testing"
)

func TestPublicHidesInternalDetail(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	if got := New(500, "internal", cause).Public(); got != "Internal Server Error" {
		t.Fatalf("5xx leaked detail: %q", got)
	}
	if got := New(404, "not_found", errors.New("activity not found")).Public(); got != "activity not found" {
		t.Fatalf("unexpected 4xx message %q", got)
	}
	if got := WithMessage(502, "upstream", "try later", cause).Public(); got != "try later" {
		t.Fatalf("explicit message ignored: %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := New(400, "bad_request", cause)
	if !errors.Is(e, cause) {
		t.Fatalf("errors.Is failed through apierr.Error")
	}
	var target *Error
	if !errors.As(error(e), &target) || target.Code != "bad_request" {
		t.Fatalf("errors.As failed")
	}
}
