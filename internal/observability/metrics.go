package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (edge routing broken) or spikes.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Dominated by the upstream call.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation while upstream is slow.
	HTTPRequestsInFlight prometheus.Gauge

	// One Call API call rate by status class. Watch for: client_error (bad key) and error (transport).
	WeatherAPICallsTotal *prometheus.CounterVec

	// One Call API latency. Watch for: p99 approaching the configured upstream timeout.
	WeatherAPIDuration *prometheus.HistogramVec

	// Pipeline outcomes per variant and error kind (success, malformed_payload, upstream_auth, ...).
	WeatherOutcomesTotal *prometheus.CounterVec

	// How coordinates were obtained: header or default. A rising default share means the
	// edge stopped attaching geolocation and requests are being answered for (0, 0).
	LocationResolutionsTotal *prometheus.CounterVec
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of OpenWeatherMap One Call API calls",
		},
		[]string{"status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "OpenWeatherMap One Call API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	WeatherOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherOutcomesTotal",
			Help: "Weather pipeline outcomes by variant and classification",
		},
		[]string{"variant", "outcome"},
	)
	LocationResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locationResolutionsTotal",
			Help: "Coordinate resolutions by source (header or default)",
		},
		[]string{"source"},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		WeatherAPICallsTotal, WeatherAPIDuration,
		WeatherOutcomesTotal, LocationResolutionsTotal,
	)
}

// RecordOutcome records the classification of one weather request.
func RecordOutcome(variant, outcome string) {
	WeatherOutcomesTotal.WithLabelValues(variant, outcome).Inc()
}

// RecordLocationResolution records whether coordinates came from metadata or the default.
func RecordLocationResolution(located bool) {
	source := "default"
	if located {
		source = "header"
	}
	LocationResolutionsTotal.WithLabelValues(source).Inc()
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
