package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	m := New()
	m.ObserveAPI("POST", "/api/activities/:id/submit", 200, 30*time.Millisecond)
	m.ObserveAPI("POST", "/api/activities/:id/submit", 200, 40*time.Millisecond)
	m.ObserveLLMCall("gemini", "success", time.Second)
	m.ObserveLLMCall("gemini", "invalid_credential", time.Second)
	m.ObserveJob("annotate_resource", "retried", 2*time.Second)
	m.SetQueueDepth(3)
	m.ObserveSubmission("quiz", true)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`sp_api_requests_total{method="POST",route="/api/activities/:id/submit",status="200"} 2`,
		`sp_api_request_duration_seconds_bucket{method="POST",route="/api/activities/:id/submit",le="0.05"} 2`,
		`sp_llm_calls_total{service="gemini",outcome="invalid_credential"} 1`,
		`sp_jobs_total{type="annotate_resource",outcome="retried"} 1`,
		`sp_job_queue_depth 3`,
		`sp_submissions_total{type="quiz",result="passed"} 1`,
		"# TYPE sp_api_request_duration_seconds histogram",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", 200, time.Millisecond)
	m.ObserveLLMCall("gemini", "success", time.Millisecond)
	m.ObserveJob("x", "succeeded", time.Millisecond)
	m.SetQueueDepth(1)
	m.ObserveSubmission("quiz", false)
	m.APIInflight(1)

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"route"}, []string{`a"b`})
	if got != `{route="a\"b"}` {
		t.Fatalf("unexpected label string %s", got)
	}
	if got := withLe("", "1"); got != `{le="1"}` {
		t.Fatalf("unexpected le labels %s", got)
	}
}

func TestParseHeaders(t *testing.T) {
	h := parseHeaders("api-key=abc, x=1 ,broken,=v")
	if len(h) != 2 || h["api-key"] != "abc" || h["x"] != "1" {
		t.Fatalf("unexpected headers %v", h)
	}
	if parseHeaders("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
