package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authd/component"
	"github.com/kbukum/authd/errors"
	"github.com/kbukum/authd/logger"
	"github.com/kbukum/authd/security"
	"github.com/kbukum/authd/security/tlstest"
	"github.com/kbukum/authd/server/middleware"
)

func newTestServer(withhold bool) *Server {
	cfg := Config{WithholdErrors: withhold, ShutdownTimeout: 1}
	cfg.ApplyDefaults()
	cfg.Port = 0
	return New(cfg, logger.NewNop())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorBody {
	t.Helper()
	var resp errors.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not an error envelope: %q (%v)", rec.Body.String(), err)
	}
	return resp.Error
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 8080 || cfg.ShutdownTimeout != 5 || cfg.MaxBodySize != "1MB" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too large", func(c *Config) { c.Port = 70000 }},
		{"negative port", func(c *Config) { c.Port = -1 }},
		{"negative read timeout", func(c *Config) { c.ReadTimeout = -1 }},
		{"negative shutdown timeout", func(c *Config) { c.ShutdownTimeout = -5 }},
		{"tls cert without key", func(c *Config) { c.TLS.CertFile = "cert.pem" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := cfg
			tc.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name        string
		withhold    bool
		err         error
		wantStatus  int
		wantCode    errors.ErrorCode
		wantMessage string
	}{
		{"unauthorized keeps fixed message", true, errors.Unauthorized(), http.StatusUnauthorized, errors.ErrCodeUnauthorized, errors.UnauthorizedMessage},
		{"validation shown in development", false, errors.InvalidInput("email", "is required"), http.StatusBadRequest, errors.ErrCodeInvalidInput, ""},
		{"validation withheld in production", true, errors.InvalidInput("email", "is required"), http.StatusBadRequest, errors.ErrCodeInvalidInput, "The request is invalid."},
		{"plain error becomes internal", true, fmt.Errorf("disk on fire"), http.StatusInternalServerError, errors.ErrCodeInternal, "An unexpected error occurred."},
		{"not found passes through", true, errors.NotFound("callback url", "x"), http.StatusNotFound, errors.ErrCodeNotFound, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(tc.withhold)
			s.GinEngine().GET("/fail", func(c *gin.Context) { RespondWithError(c, tc.err) })

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			body := decodeError(t, rec)
			if body.Code != tc.wantCode {
				t.Errorf("expected code %s, got %s", tc.wantCode, body.Code)
			}
			if tc.wantMessage != "" && body.Message != tc.wantMessage {
				t.Errorf("expected message %q, got %q", tc.wantMessage, body.Message)
			}
			if tc.withhold && tc.wantCode == errors.ErrCodeInvalidInput && body.Details != nil {
				t.Errorf("expected details withheld, got %v", body.Details)
			}
		})
	}
}

func TestHandlerAppliesMiddleware(t *testing.T) {
	s := newTestServer(false)
	s.GinEngine().GET("/ping", func(c *gin.Context) { RespondOK(c, gin.H{"ok": true}) })
	s.GinEngine().GET("/panic", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(middleware.HeaderRequestID) == "" {
		t.Error("expected request id header")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("expected CORS header, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
}

func TestDefaultEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []component.HealthStatus
		wantStatus int
		wantHealth component.HealthStatus
	}{
		{"all healthy", []component.HealthStatus{component.StatusHealthy, component.StatusHealthy}, http.StatusOK, component.StatusHealthy},
		{"degraded cache", []component.HealthStatus{component.StatusHealthy, component.StatusDegraded}, http.StatusOK, component.StatusDegraded},
		{"database down", []component.HealthStatus{component.StatusUnhealthy, component.StatusHealthy}, http.StatusServiceUnavailable, component.StatusUnhealthy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(false)
			s.RegisterDefaultEndpoints("authd", func(context.Context) []component.Health {
				out := make([]component.Health, len(tc.statuses))
				for i, st := range tc.statuses {
					out[i] = component.Health{Name: fmt.Sprintf("c%d", i), Status: st}
				}
				return out
			})

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			var body struct {
				Status     component.HealthStatus `json:"status"`
				Service    string                 `json:"service"`
				Components []component.Health    `json:"components"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tc.wantHealth || body.Service != "authd" || len(body.Components) != len(tc.statuses) {
				t.Errorf("unexpected health body %+v", body)
			}
		})
	}

	s := newTestServer(false)
	s.RegisterDefaultEndpoints("authd", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))
	var info map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if info["service"] != "authd" || info["go_version"] == "" {
		t.Errorf("unexpected info body %v", info)
	}
}

func TestServerComponentLifecycle(t *testing.T) {
	s := newTestServer(false)
	s.RegisterDefaultEndpoints("authd", nil)
	sc := NewComponent(s)

	if h := sc.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := sc.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy after start, got %s", h.Status)
	}

	resp, err := http.Get("http://" + s.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from live server, got %d", resp.StatusCode)
	}

	if err := sc.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := sc.Stop(context.Background()); err != nil {
		t.Fatalf("second Stop should be a no-op: %v", err)
	}
}

func TestServerTLS(t *testing.T) {
	certs := tlstest.Generate(t)
	cfg := Config{Host: "127.0.0.1", ShutdownTimeout: 1}
	cfg.ApplyDefaults()
	cfg.Port = 0
	cfg.TLS = security.TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile}

	s := New(cfg, logger.NewNop())
	s.RegisterDefaultEndpoints("authd", nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(context.Background())

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig:   &tls.Config{RootCAs: certs.Pool},
		ForceAttemptHTTP2: true,
	}}
	resp, err := client.Get("https://" + s.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health over TLS: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.ProtoMajor != 2 {
		t.Errorf("expected HTTP/2 over TLS, got %s", resp.Proto)
	}
}

func TestServerTLSMissingFiles(t *testing.T) {
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	cfg.TLS = security.TLSConfig{CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"}
	if err := New(cfg, logger.NewNop()).Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail without certificate files")
	}
}
