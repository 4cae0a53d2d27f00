package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kjstillabower/weather-edge-proxy/internal/observability"
)

// Doer sends a built One Call request and returns the raw upstream answer.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (Response, error)
}

var (
	// ErrUpstreamUnreachable covers every failure to obtain a complete upstream response:
	// DNS, connect, TLS, timeout, cancellation and body read errors.
	ErrUpstreamUnreachable = errors.New("upstream unreachable")

	errResponseTooLarge = errors.New("response body exceeds limit")
)

// Response is the upstream status and body. Non-2xx statuses are data, not errors.
type Response struct {
	Status int
	Body   []byte
}

type OpenWeatherClient struct {
	timeout  time.Duration
	maxBytes int64
	client   *http.Client
}

// NewOpenWeatherClient returns a client that gives up after timeout and refuses bodies
// larger than maxBytes. There is no retry.
func NewOpenWeatherClient(timeout time.Duration, maxBytes int64) *OpenWeatherClient {
	return &OpenWeatherClient{
		timeout:  timeout,
		maxBytes: maxBytes,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Do performs one upstream call bound to ctx and the configured timeout.
func (c *OpenWeatherClient) Do(ctx context.Context, req *http.Request) (Response, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Do(req.WithContext(reqCtx))
	if err != nil {
		// url.Error embeds the full URL, appid included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		c.observe(string(CategorizeError(err)), start)
		return Response{}, fmt.Errorf("%w: %w", ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := c.readBody(resp.Body)
	if err != nil {
		c.observe(string(CategorizeError(err)), start)
		return Response{}, fmt.Errorf("%w: read response body: %w", ErrUpstreamUnreachable, err)
	}

	c.observe(statusLabel(resp.StatusCode), start)
	return Response{Status: resp.StatusCode, Body: body}, nil
}

func (c *OpenWeatherClient) readBody(r io.Reader) ([]byte, error) {
	if c.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", errResponseTooLarge, c.maxBytes)
	}
	return body, nil
}

func (c *OpenWeatherClient) observe(status string, start time.Time) {
	observability.WeatherAPICallsTotal.WithLabelValues(status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == http.StatusUnauthorized {
		return "unauthorized"
	}
	if statusCode == http.StatusTooManyRequests {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
