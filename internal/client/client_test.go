package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kjstillabower/weather-edge-proxy/internal/observability"
)

func newRequest(t *testing.T, ctx context.Context, url string) *http.Request {
	t.Helper()
	b, err := NewBuilder(url, testAPIKey)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	req, err := b.Build(ctx, Query{Exclude: []string{"minutely"}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return req
}

func TestOpenWeatherClient_Do_Success(t *testing.T) {
	const body = `{"lat":40.7,"lon":-74}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Query().Get("appid") != testAPIKey {
			t.Errorf("expected API key in query, got %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer server.Close()

	before := testutil.ToFloat64(observability.WeatherAPICallsTotal.WithLabelValues("success"))

	c := NewOpenWeatherClient(2*time.Second, 1<<20)
	ctx := context.Background()
	resp, err := c.Do(ctx, newRequest(t, ctx, server.URL))
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200", resp.Status)
	}
	if string(resp.Body) != body {
		t.Errorf("Body = %q, want %q", resp.Body, body)
	}

	after := testutil.ToFloat64(observability.WeatherAPICallsTotal.WithLabelValues("success"))
	if after-before != 1 {
		t.Errorf("weatherApiCallsTotal{success} delta = %v, want 1", after-before)
	}
}

// TestOpenWeatherClient_Do_NonSuccessStatusIsData verifies that upstream error statuses
// are returned to the caller for classification instead of becoming transport errors.
func TestOpenWeatherClient_Do_NonSuccessStatusIsData(t *testing.T) {
	tests := []struct {
		status int
		body   string
	}{
		{http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`},
		{http.StatusNotFound, `{"cod":"404"}`},
		{http.StatusTooManyRequests, ``},
		{http.StatusInternalServerError, `oops`},
		{http.StatusServiceUnavailable, ``},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewOpenWeatherClient(2*time.Second, 1<<20)
			resp, err := c.Do(context.Background(), newRequest(t, context.Background(), server.URL))
			if err != nil {
				t.Fatalf("Do() error = %v, want nil for HTTP %d", err, tt.status)
			}
			if resp.Status != tt.status {
				t.Errorf("Status = %d, want %d", resp.Status, tt.status)
			}
			if string(resp.Body) != tt.body {
				t.Errorf("Body = %q, want %q", resp.Body, tt.body)
			}
		})
	}
}

func TestOpenWeatherClient_Do_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewOpenWeatherClient(2*time.Second, 1<<20)
	_, err := c.Do(context.Background(), newRequest(t, context.Background(), url))
	if !errors.Is(err, ErrUpstreamUnreachable) {
		t.Fatalf("Do() error = %v, want ErrUpstreamUnreachable", err)
	}
	if strings.Contains(err.Error(), testAPIKey) {
		t.Errorf("Do() error leaked the API key: %v", err)
	}
	if CategorizeError(err) != ErrorCategoryNetwork {
		t.Errorf("CategorizeError() = %v, want %v", CategorizeError(err), ErrorCategoryNetwork)
	}
}

func TestOpenWeatherClient_Do_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	before := testutil.ToFloat64(observability.WeatherAPICallsTotal.WithLabelValues(string(ErrorCategoryTimeout)))

	c := NewOpenWeatherClient(100*time.Millisecond, 1<<20)
	start := time.Now()
	_, err := c.Do(context.Background(), newRequest(t, context.Background(), server.URL))
	elapsed := time.Since(start)

	if !errors.Is(err, ErrUpstreamUnreachable) {
		t.Fatalf("Do() error = %v, want ErrUpstreamUnreachable", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Do() took %v, want to give up near the 100ms timeout", elapsed)
	}
	after := testutil.ToFloat64(observability.WeatherAPICallsTotal.WithLabelValues(string(ErrorCategoryTimeout)))
	if after-before != 1 {
		t.Errorf("weatherApiCallsTotal{timeout} delta = %v, want 1", after-before)
	}
}

func TestOpenWeatherClient_Do_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	c := NewOpenWeatherClient(5*time.Second, 1<<20)
	start := time.Now()
	_, err := c.Do(ctx, newRequest(t, ctx, server.URL))
	if !errors.Is(err, ErrUpstreamUnreachable) {
		t.Fatalf("Do() error = %v, want ErrUpstreamUnreachable", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want it to wrap context.Canceled", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("Do() did not stop when the caller's context was canceled")
	}
}

func TestOpenWeatherClient_Do_ResponseTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	c := NewOpenWeatherClient(2*time.Second, 32)
	_, err := c.Do(context.Background(), newRequest(t, context.Background(), server.URL))
	if !errors.Is(err, ErrUpstreamUnreachable) {
		t.Fatalf("Do() error = %v, want ErrUpstreamUnreachable", err)
	}
	if CategorizeError(err) != ErrorCategoryResponseTooLarge {
		t.Errorf("CategorizeError() = %v, want %v", CategorizeError(err), ErrorCategoryResponseTooLarge)
	}
}

func TestOpenWeatherClient_Do_BodyAtLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 32)))
	}))
	defer server.Close()

	c := NewOpenWeatherClient(2*time.Second, 32)
	resp, err := c.Do(context.Background(), newRequest(t, context.Background(), server.URL))
	if err != nil {
		t.Fatalf("Do() error = %v, want nil at exactly the limit", err)
	}
	if len(resp.Body) != 32 {
		t.Errorf("len(Body) = %d, want 32", len(resp.Body))
	}
}

func TestOpenWeatherClient_Do_ForwardsCorrelationID(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Correlation-ID")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx := observability.WithCorrelationID(context.Background(), "test-corr-id")
	c := NewOpenWeatherClient(2*time.Second, 1<<20)
	if _, err := c.Do(ctx, newRequest(t, ctx, server.URL)); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != "test-corr-id" {
		t.Errorf("X-Correlation-ID = %q, want test-corr-id", got)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "success"},
		{204, "success"},
		{401, "unauthorized"},
		{429, "rate_limited"},
		{404, "client_error"},
		{500, "server_error"},
		{503, "server_error"},
		{302, "error"},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.code); got != tt.want {
			t.Errorf("statusLabel(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
