//go:build integration
// +build integration

package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kjstillabower/weather-edge-proxy/internal/geo"
	"github.com/kjstillabower/weather-edge-proxy/internal/observability"
	testhelpers "github.com/kjstillabower/weather-edge-proxy/internal/testhelpers"
)

func setupIntegrationRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := testhelpers.GetIntegrationConfig(t)
	logger, err := observability.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	resolver := geo.NewResolver(geo.NewHeaderSource("", "", ""), nil)
	handler := NewHandler(resolver, testhelpers.SetupIntegrationService(t, cfg), Options{Version: "integration"}, logger)
	return NewRouter(handler, resolver, logger, 10*time.Second)
}

func TestIntegration_Variants(t *testing.T) {
	router := setupIntegrationRouter(t)

	tests := []struct {
		path    string
		present []string
		absent  []string
	}{
		{"/weather", []string{"current"}, []string{"hourly", "daily", "minutely", "alerts"}},
		{"/weather/forecast", []string{"hourly", "daily"}, []string{"current", "minutely", "alerts"}},
		{"/weather/daily", []string{"daily"}, []string{"current", "hourly", "minutely", "alerts"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("CF-IPLatitude", "47.6062")
			req.Header.Set("CF-IPLongitude", "-122.3321")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (API key may lack One Call access): %s", w.Code, w.Body.String())
			}
			var body map[string]json.RawMessage
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			for _, k := range tt.present {
				if _, ok := body[k]; !ok {
					t.Errorf("section %q missing", k)
				}
			}
			for _, k := range tt.absent {
				if _, ok := body[k]; ok {
					t.Errorf("excluded section %q present", k)
				}
			}
		})
	}
}

func TestIntegration_GetMetrics_Format(t *testing.T) {
	router := setupIntegrationRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	for _, name := range []string{"httpRequestsTotal", "weatherApiCallsTotal", "weatherOutcomesTotal"} {
		if !strings.Contains(w.Body.String(), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
