package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bimakw/identity-prism/internal/testutil"
)

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name        string
		upstream    bool
		cache       *bool
		wantCode    int
		wantStatus  string
		wantService map[string]string
	}{
		{
			name:        "all healthy",
			upstream:    true,
			cache:       testutil.PointerTo(true),
			wantCode:    http.StatusOK,
			wantStatus:  "healthy",
			wantService: map[string]string{"solana": "healthy", "cache": "healthy"},
		},
		{
			name:        "upstream down",
			upstream:    false,
			cache:       testutil.PointerTo(true),
			wantCode:    http.StatusServiceUnavailable,
			wantStatus:  "unhealthy",
			wantService: map[string]string{"solana": "unhealthy", "cache": "healthy"},
		},
		{
			name:        "cache down degrades",
			upstream:    true,
			cache:       testutil.PointerTo(false),
			wantCode:    http.StatusOK,
			wantStatus:  "degraded",
			wantService: map[string]string{"solana": "healthy", "cache": "unhealthy"},
		},
		{
			name:        "both down",
			upstream:    false,
			cache:       testutil.PointerTo(false),
			wantCode:    http.StatusServiceUnavailable,
			wantStatus:  "unhealthy",
			wantService: map[string]string{"solana": "unhealthy", "cache": "unhealthy"},
		},
		{
			name:        "no cache",
			upstream:    true,
			wantCode:    http.StatusOK,
			wantStatus:  "healthy",
			wantService: map[string]string{"solana": "healthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cache HealthChecker
			if tt.cache != nil {
				cache = testutil.NewMockHealthChecker(*tt.cache)
			}
			handler := NewHealthHandler(testutil.NewMockHealthChecker(tt.upstream), cache)

			rec := httptest.NewRecorder()
			handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected Content-Type application/json, got %s", ct)
			}

			var response HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, response.Status)
			}
			if response.Timestamp == "" {
				t.Error("expected non-empty timestamp")
			}
			if len(response.Services) != len(tt.wantService) {
				t.Errorf("expected services %v, got %v", tt.wantService, response.Services)
			}
			for name, want := range tt.wantService {
				got := response.Services[name]
				if got.Status != want {
					t.Errorf("expected %s %s, got %s", name, want, got.Status)
				}
				if want == "unhealthy" && got.Error == "" {
					t.Errorf("expected %s error message", name)
				}
			}
		})
	}
}

func TestHealthHandler_Health_ErrorMessage(t *testing.T) {
	upstream := testutil.NewMockHealthChecker(false)
	upstream.Error = errors.New("node is behind")
	handler := NewHealthHandler(upstream, nil)

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var response HealthResponse
	json.NewDecoder(rec.Body).Decode(&response)
	if response.Services["solana"].Error != "node is behind" {
		t.Errorf("unexpected error %q", response.Services["solana"].Error)
	}
	if upstream.Calls != 1 {
		t.Errorf("expected one check, got %d", upstream.Calls)
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name     string
		upstream bool
		cache    bool
		wantCode int
		wantBody string
	}{
		{"ready", true, true, http.StatusOK, "ready"},
		{"cache down is still ready", true, false, http.StatusOK, "ready"},
		{"upstream down", false, true, http.StatusServiceUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := testutil.NewMockHealthChecker(tt.cache)
			handler := NewHealthHandler(testutil.NewMockHealthChecker(tt.upstream), cache)

			rec := httptest.NewRecorder()
			handler.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, rec.Body.String())
			}
			if cache.Calls != 0 {
				t.Error("expected readiness to skip the cache")
			}
		})
	}
}

func TestHealthHandler_Live(t *testing.T) {
	// liveness never consults dependencies
	upstream := testutil.NewMockHealthChecker(false)
	handler := NewHealthHandler(upstream, nil)

	rec := httptest.NewRecorder()
	handler.Live(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "alive" {
		t.Errorf("expected body 'alive', got '%s'", rec.Body.String())
	}
	if upstream.Calls != 0 {
		t.Error("expected no dependency checks")
	}
}
