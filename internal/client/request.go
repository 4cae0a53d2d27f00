package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kjstillabower/weather-edge-proxy/internal/geo"
	"github.com/kjstillabower/weather-edge-proxy/internal/observability"
)

// ErrInvalidAPIKey is returned by NewBuilder when the key is empty or clearly malformed.
var ErrInvalidAPIKey = errors.New("invalid API key")

// Query is one upstream lookup: where, and which One Call sections to leave out.
type Query struct {
	Coordinates geo.Coordinates
	Exclude     []string
}

// Builder turns a Query into an outbound One Call request. The API key is fixed at
// construction and never read from the environment afterwards.
type Builder struct {
	baseURL *url.URL
	apiKey  string
}

// NewBuilder validates the endpoint and key once so that Build cannot fail on either.
func NewBuilder(baseURL, apiKey string) (*Builder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if len(apiKey) < 10 {
		return nil, fmt.Errorf("%w: API key appears invalid (too short)", ErrInvalidAPIKey)
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: scheme and host required", baseURL)
	}
	return &Builder{baseURL: u, apiKey: apiKey}, nil
}

// Build renders GET {base}?lat=..&lon=..&exclude=a,b&appid=KEY. Coordinates are passed
// through unchecked. q is not modified.
func (b *Builder) Build(ctx context.Context, q Query) (*http.Request, error) {
	u := *b.baseURL

	params := u.Query()
	params.Set("lat", q.Coordinates.LatitudeString())
	params.Set("lon", q.Coordinates.LongitudeString())
	params.Set("exclude", strings.Join(q.Exclude, ","))
	params.Set("appid", b.apiKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if corrID := observability.CorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}
	return req, nil
}

// RedactedURL returns the request URL with appid masked, safe for logs.
func RedactedURL(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	u := *req.URL
	params := u.Query()
	if params.Has("appid") {
		params.Set("appid", "REDACTED")
	}
	u.RawQuery = params.Encode()
	return u.String()
}
