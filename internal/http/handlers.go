package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-edge-proxy/internal/client"
	"github.com/kjstillabower/weather-edge-proxy/internal/geo"
	"github.com/kjstillabower/weather-edge-proxy/internal/lifecycle"
	"github.com/kjstillabower/weather-edge-proxy/internal/observability"
	"github.com/kjstillabower/weather-edge-proxy/internal/service"
	"github.com/kjstillabower/weather-edge-proxy/internal/traffic"
)

const serviceName = "weather-edge-proxy"

// HealthConfig holds thresholds for the health handler.
type HealthConfig struct {
	DegradedWindow   time.Duration
	DegradedErrorPct int
}

// Options controls response behavior that varies by deployment.
type Options struct {
	// Version is served verbatim by /worker-version.
	Version string
	// RejectMissingLocation answers 400 instead of querying (0, 0) when the request
	// carries no coordinates.
	RejectMissingLocation bool
	// DetailedErrors renders failures as {"error":{code,message,requestId}} instead of a
	// bare JSON string.
	DetailedErrors bool
	Health         *HealthConfig
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	resolver         *geo.Resolver
	weatherService   *service.WeatherService
	opts             Options
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(
	resolver *geo.Resolver,
	weatherService *service.WeatherService,
	opts Options,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		resolver:       resolver,
		weatherService: weatherService,
		opts:           opts,
		logger:         logger,
	}
}

// GetWeather returns the handler for one variant: resolve coordinates, fetch, render.
func (h *Handler) GetWeather(v service.Variant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracker := &lifecycle.Tracker{}
		ctx := lifecycle.WithTracker(r.Context(), tracker)
		logger := observability.LoggerFromContext(ctx)

		res, ok := resolutionFromContext(ctx)
		if !ok {
			res = h.resolver.Resolve(r)
		}
		observability.RecordLocationResolution(res.Located)
		tracker.Advance(lifecycle.StageCoordinatesResolved)

		if !res.Located && h.opts.RejectMissingLocation {
			err := service.NewLocationError()
			observability.RecordOutcome(v.Name, service.OutcomeLabel(err))
			h.fail(w, r, logger, tracker, err)
			return
		}

		payload, err := h.weatherService.GetWeather(ctx, v, res.Coordinates)
		if err != nil {
			h.fail(w, r, logger, tracker, err)
			return
		}
		tracker.Complete()
		writeJSON(w, http.StatusOK, payload)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, logger *zap.Logger, tracker *lifecycle.Tracker, err error) {
	reached := tracker.Complete()
	logger.Info("request short-circuited",
		zap.String("stage", reached.String()),
		zap.String("outcome", service.OutcomeLabel(err)),
	)
	h.writeFailure(w, r, err)
}

// GetVersion handles GET /worker-version.
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if h.opts.Version == "" {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("version not configured"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.opts.Version))
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health. It never calls the upstream.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := map[string]string{"weatherApi": "healthy"}
	if result.status == "degraded" {
		checks["weatherApi"] = "unhealthy"
	}
	writeJSON(w, result.statusCode, map[string]interface{}{
		"status":    result.status,
		"service":   serviceName,
		"version":   h.opts.Version,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// computeHealthStatus evaluates, in order: shutting-down, degraded (recent upstream
// failure rate at or above the threshold), healthy.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	cfg := h.opts.Health
	if cfg != nil && cfg.DegradedWindow > 0 && cfg.DegradedErrorPct > 0 {
		failures, total := traffic.FailureRate(cfg.DegradedWindow)
		if total > 0 && failures*100 >= cfg.DegradedErrorPct*total {
			return healthResult{"degraded", http.StatusServiceUnavailable, "error_rate_breach"}
		}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// writeFailure renders err. *service.ClientError keeps its status and message; an
// unreachable upstream is 502; anything else is 500.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := http.StatusInternalServerError, "INTERNAL", "Internal Server Error"

	var ce *service.ClientError
	switch {
	case errors.As(err, &ce):
		status, code, message = ce.Code, errorCode(ce.Kind), ce.Message
	case errors.Is(err, client.ErrUpstreamUnreachable):
		status, code, message = http.StatusBadGateway, "UPSTREAM_UNREACHABLE", "Bad Gateway"
	}

	if h.opts.DetailedErrors {
		writeError(w, r, status, code, message)
		return
	}
	writeJSON(w, status, message)
}

func errorCode(kind error) string {
	switch {
	case errors.Is(kind, service.ErrMalformedPayload):
		return "MALFORMED_PAYLOAD"
	case errors.Is(kind, service.ErrUpstreamAuth):
		return "UPSTREAM_AUTH"
	case errors.Is(kind, service.ErrUpstreamStatus):
		return "UPSTREAM_STATUS"
	case errors.Is(kind, service.ErrLocationUnavailable):
		return "LOCATION_UNAVAILABLE"
	default:
		return "BAD_REQUEST"
	}
}

// writeJSON writes v as the complete response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`"Internal Server Error"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": observability.CorrelationID(r.Context()),
		},
	})
}

type resolutionKey struct{}

func withResolution(ctx context.Context, res geo.Resolution) context.Context {
	return context.WithValue(ctx, resolutionKey{}, res)
}

func resolutionFromContext(ctx context.Context) (geo.Resolution, bool) {
	res, ok := ctx.Value(resolutionKey{}).(geo.Resolution)
	return res, ok
}
