package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func preflight(r *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/profile", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORSDefaultsToLocalDevOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(nil))
	r.GET("/api/profile", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, origin := range []string{"http://localhost:5173", "http://127.0.0.1:3000"} {
		rec := preflight(r, origin)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("%s: unexpected status %d", origin, rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != origin {
			t.Fatalf("%s: allow-origin=%q", origin, got)
		}
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com", " "}))
	r.GET("/api/profile", func(c *gin.Context) { c.Status(http.StatusOK) })

	if rec := preflight(r, "https://app.example.com"); rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("configured origin not allowed")
	}
	if rec := preflight(r, "http://localhost:5173"); rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unconfigured origin allowed")
	}
}
