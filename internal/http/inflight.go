package http

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kjstillabower/weather-edge-proxy/internal/observability"
)

// requestCounter counts requests the router has accepted but not yet answered, and mirrors
// the count into a gauge. Shutdown waits on it after the listener closes.
type requestCounter struct {
	n     atomic.Int64
	gauge prometheus.Gauge
}

// begin marks one request as started. The returned func marks it finished and must be
// called exactly once.
func (c *requestCounter) begin() (end func()) {
	c.n.Add(1)
	if c.gauge != nil {
		c.gauge.Inc()
	}
	return func() {
		c.n.Add(-1)
		if c.gauge != nil {
			c.gauge.Dec()
		}
	}
}

func (c *requestCounter) count() int64 {
	return c.n.Load()
}

// drain polls every interval until no request is outstanding or ctx ends.
func (c *requestCounter) drain(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for c.count() != 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

var inFlight = &requestCounter{gauge: observability.HTTPRequestsInFlight}

// InFlightCount returns how many weather, version, health or metrics requests are being served.
func InFlightCount() int64 {
	return inFlight.count()
}

// WaitForInFlight blocks until every accepted request has been answered or ctx is done.
func WaitForInFlight(ctx context.Context, checkInterval time.Duration) error {
	return inFlight.drain(ctx, checkInterval)
}
