package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfigurationMissing is returned when a value every request depends on is absent.
var ErrConfigurationMissing = errors.New("configuration missing")

// Missing-location policies.
const (
	OnMissingZero   = "zero"
	OnMissingReject = "reject"
)

const defaultWeatherAPIURL = "https://api.openweathermap.org/data/2.5/onecall"

// Config holds service configuration loaded from YAML, .env and the environment.
type Config struct {
	ServerPort string
	Version    string

	WeatherAPIKey     string
	WeatherAPIURL     string
	WeatherAPITimeout time.Duration
	MaxResponseBytes  int64

	RequestTimeout time.Duration

	LatitudeHeader  string
	LongitudeHeader string
	RegionHeader    string
	OnMissing       string
	RegionLookup    bool

	DetailedErrors bool

	DegradedWindow   time.Duration
	DegradedErrorPct int

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration
}

type fileConfig struct {
	Service struct {
		Version string `yaml:"version"`
	} `yaml:"service"`

	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	WeatherAPI struct {
		URL              string `yaml:"url"`
		Timeout          string `yaml:"timeout"`
		MaxResponseBytes int64  `yaml:"max_response_bytes"`
	} `yaml:"weather_api"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Location struct {
		LatitudeHeader  string `yaml:"latitude_header"`
		LongitudeHeader string `yaml:"longitude_header"`
		RegionHeader    string `yaml:"region_header"`
		OnMissing       string `yaml:"on_missing"`
		RegionLookup    bool   `yaml:"region_lookup"`
	} `yaml:"location"`

	Errors struct {
		Detailed bool `yaml:"detailed"`
	} `yaml:"errors"`

	Health struct {
		DegradedWindow   string `yaml:"degraded_window"`
		DegradedErrorPct int    `yaml:"degraded_error_pct"`
	} `yaml:"health"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`
}

type secretsFile struct {
	WeatherOpenAPIKey string `yaml:"weather_open_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and config/secrets.yaml.
// A .env file in the working directory is applied first and never overrides variables
// already set. The API key comes from WEATHER_OPEN_API_KEY or the secrets file; the version
// from WORKER_VERSION or service.version. Call from project root.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	if err := godotenv.Load(filepath.Join(cwd, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = strings.TrimSpace(os.Getenv("PORT"))
	if cfg.ServerPort == "" {
		cfg.ServerPort = fc.Server.Port
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.WeatherAPIKey, err = loadAPIKey(cwd)
	if err != nil {
		return nil, err
	}
	if cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("%w: WEATHER_OPEN_API_KEY required (set env or config/secrets.yaml weather_open_api_key)", ErrConfigurationMissing)
	}

	cfg.Version = strings.TrimSpace(os.Getenv("WORKER_VERSION"))
	if cfg.Version == "" {
		cfg.Version = strings.TrimSpace(fc.Service.Version)
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("%w: WORKER_VERSION required (set env or service.version)", ErrConfigurationMissing)
	}

	cfg.WeatherAPIURL = strings.TrimSpace(fc.WeatherAPI.URL)
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = defaultWeatherAPIURL
	}
	cfg.WeatherAPITimeout = parseDurationOrZero(fc.WeatherAPI.Timeout, 8*time.Second)
	cfg.MaxResponseBytes = fc.WeatherAPI.MaxResponseBytes
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = 1 << 20
	}

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 10*time.Second)

	cfg.LatitudeHeader = strings.TrimSpace(fc.Location.LatitudeHeader)
	cfg.LongitudeHeader = strings.TrimSpace(fc.Location.LongitudeHeader)
	cfg.RegionHeader = strings.TrimSpace(fc.Location.RegionHeader)
	cfg.OnMissing = strings.ToLower(strings.TrimSpace(fc.Location.OnMissing))
	if cfg.OnMissing == "" {
		cfg.OnMissing = OnMissingZero
	}
	cfg.RegionLookup = fc.Location.RegionLookup

	cfg.DetailedErrors = fc.Errors.Detailed

	cfg.DegradedWindow = parseDuration(fc.Health.DegradedWindow, 60*time.Second)
	cfg.DegradedErrorPct = fc.Health.DegradedErrorPct
	if cfg.DegradedErrorPct <= 0 {
		cfg.DegradedErrorPct = 50
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 15*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadAPIKey returns WEATHER_OPEN_API_KEY, falling back to config/secrets.yaml.
// A missing secrets file is not an error; the caller decides whether an empty key is.
func loadAPIKey(cwd string) (string, error) {
	if key := strings.TrimSpace(os.Getenv("WEATHER_OPEN_API_KEY")); key != "" {
		return key, nil
	}
	secretsData, err := os.ReadFile(filepath.Join(cwd, "config", "secrets.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read secrets file: %w", err)
	}
	var sec secretsFile
	if err := yaml.Unmarshal(secretsData, &sec); err != nil {
		return "", fmt.Errorf("parse secrets file: %w", err)
	}
	return strings.TrimSpace(sec.WeatherOpenAPIKey), nil
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Returns zero or negative durations as-is (caller should handle fallback).
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation. The upstream timeout must be positive; the
// request timeout is raised above it so the upstream deadline fires first.
func validate(cfg *Config) error {
	if cfg.WeatherAPITimeout <= 0 {
		return fmt.Errorf("weather_api.timeout must be positive")
	}
	if cfg.RequestTimeout <= cfg.WeatherAPITimeout {
		cfg.RequestTimeout = cfg.WeatherAPITimeout + time.Second
	}
	switch cfg.OnMissing {
	case OnMissingZero, OnMissingReject:
	default:
		return fmt.Errorf("location.on_missing must be %s or %s, got %q", OnMissingZero, OnMissingReject, cfg.OnMissing)
	}
	if cfg.DegradedErrorPct > 100 {
		return fmt.Errorf("health.degraded_error_pct must be at most 100, got %d", cfg.DegradedErrorPct)
	}
	return nil
}
