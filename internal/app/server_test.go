package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/tevslin/emailai/internal/config"
)

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	logger, _ := test.NewNullLogger()
	a, err := NewApp(t.Context(), cfg, logger)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestNewApp_Minimal(t *testing.T) {
	a := newTestApp(t, &config.Config{Port: "0", Extractor: config.ExtractorNative, DateTimezone: "UTC"})
	if a.ObjectClient != nil || a.Publisher != nil {
		t.Error("optional backends set without configuration")
	}
	if a.DocProcessor == nil || a.Server == nil || a.Engine == nil {
		t.Fatal("app not fully wired")
	}
	if a.Engine.Replicates() {
		t.Error("header replication enabled by default")
	}
}

func TestNewApp_Errors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	testCases := []struct {
		name string
		cfg  config.Config
	}{
		{"missing grammar", config.Config{GrammarFile: "/nonexistent/grammar.yaml"}},
		{"bad zone", config.Config{DateTimezone: "Mars/Olympus"}},
		{"bad extractor", config.Config{Extractor: "magic"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewApp(t.Context(), &tc.cfg, logger); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRouter_Auth(t *testing.T) {
	cfg := &config.Config{Port: "0", JWTSecret: "s3cret", DateTimezone: "UTC"}
	a := newTestApp(t, cfg)
	r := NewRouter(cfg, a.ObjectClient, a.DocProcessor, a.Engine, a.Log)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rec.Code)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("authenticated unknown job status = %d, want 404", rec.Code)
	}
}
