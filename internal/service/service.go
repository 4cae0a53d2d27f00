package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-edge-proxy/internal/client"
	"github.com/kjstillabower/weather-edge-proxy/internal/geo"
	"github.com/kjstillabower/weather-edge-proxy/internal/lifecycle"
	"github.com/kjstillabower/weather-edge-proxy/internal/observability"
	"github.com/kjstillabower/weather-edge-proxy/internal/traffic"
)

// WeatherService runs one upstream lookup per call: build, send, classify.
// It holds no per-request state and is safe for concurrent use.
type WeatherService struct {
	builder *client.Builder
	client  client.Doer
}

// NewWeatherService creates a new WeatherService with the provided dependencies.
func NewWeatherService(builder *client.Builder, c client.Doer) *WeatherService {
	return &WeatherService{builder: builder, client: c}
}

// GetWeather fetches the variant's payload for coords. Errors are either a *ClientError
// or wrap client.ErrUpstreamUnreachable.
func (s *WeatherService) GetWeather(ctx context.Context, v Variant, coords geo.Coordinates) (any, error) {
	start := time.Now()
	logger := observability.LoggerFromContext(ctx)
	tracker := lifecycle.TrackerFromContext(ctx)

	req, err := s.builder.Build(ctx, client.Query{Coordinates: coords, Exclude: v.Exclude()})
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", v.Name, err)
	}

	tracker.Advance(lifecycle.StageUpstreamRequestSent)
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			// Inbound request ended first. Not an upstream failure.
			err = fmt.Errorf("%w: %w", ErrRequestCanceled, err)
			observability.RecordOutcome(v.Name, OutcomeLabel(err))
			logger.Info("upstream call abandoned",
				zap.String("variant", v.Name),
				zap.String("url", client.RedactedURL(req)),
				zap.NamedError("inbound", ctx.Err()),
			)
			return nil, fmt.Errorf("fetch %s weather: %w", v.Name, err)
		}
		s.record(v, err)
		logger.Warn("upstream call failed",
			zap.String("variant", v.Name),
			zap.String("url", client.RedactedURL(req)),
			zap.String("category", string(client.CategorizeError(err))),
			zap.Error(err),
		)
		return nil, fmt.Errorf("fetch %s weather: %w", v.Name, err)
	}

	payload, err := Normalize(resp.Status, resp.Body, v)
	tracker.Advance(lifecycle.StageResponseClassified)
	s.record(v, err)
	if err != nil {
		logger.Warn("upstream response rejected",
			zap.String("variant", v.Name),
			zap.Int("upstream_status", resp.Status),
			zap.String("outcome", OutcomeLabel(err)),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Debug("weather served", zap.String("variant", v.Name), zap.Duration("duration", time.Since(start)))
	return payload, nil
}

func (s *WeatherService) record(v Variant, err error) {
	observability.RecordOutcome(v.Name, OutcomeLabel(err))
	if err != nil {
		traffic.RecordFailure()
		return
	}
	traffic.RecordSuccess()
}
