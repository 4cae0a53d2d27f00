//go:build integration
// +build integration

package testhelpers

import (
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/weather-edge-proxy/internal/client"
	"github.com/kjstillabower/weather-edge-proxy/internal/service"
)

// IntegrationTestConfig holds configuration for integration tests.
type IntegrationTestConfig struct {
	APIKey string
	APIURL string
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips test if WEATHER_OPEN_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	apiKey := os.Getenv("WEATHER_OPEN_API_KEY")
	if apiKey == "" {
		t.Skip("WEATHER_OPEN_API_KEY not set, skipping integration test")
	}

	apiURL := os.Getenv("WEATHER_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openweathermap.org/data/2.5/onecall"
	}

	return IntegrationTestConfig{APIKey: apiKey, APIURL: apiURL}
}

// SetupIntegrationService creates a service that talks to the real One Call API.
func SetupIntegrationService(t *testing.T, cfg IntegrationTestConfig) *service.WeatherService {
	t.Helper()
	builder, err := client.NewBuilder(cfg.APIURL, cfg.APIKey)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return service.NewWeatherService(builder, client.NewOpenWeatherClient(5*time.Second, 1<<20))
}
