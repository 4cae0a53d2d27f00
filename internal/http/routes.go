package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-edge-proxy/internal/geo"
	"github.com/kjstillabower/weather-edge-proxy/internal/observability"
	"github.com/kjstillabower/weather-edge-proxy/internal/service"
)

// NewRouter wires every route and middleware. Every matched request gets one log line;
// weather routes additionally get a deadline of requestTimeout.
func NewRouter(h *Handler, resolver *geo.Resolver, logger *zap.Logger, requestTimeout time.Duration) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.Use(RequestLogMiddleware(resolver))
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.HandleFunc("/worker-version", h.GetVersion).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler())

	weatherRouter := router.NewRoute().Subrouter()
	weatherRouter.Use(TimeoutMiddleware(requestTimeout))
	weatherRouter.HandleFunc("/", h.GetWeather(service.Current)).Methods(http.MethodGet)
	weatherRouter.HandleFunc("/weather", h.GetWeather(service.Current)).Methods(http.MethodGet)
	weatherRouter.HandleFunc("/weather/forecast", h.GetWeather(service.Forecast)).Methods(http.MethodGet)
	weatherRouter.HandleFunc("/weather/daily", h.GetWeather(service.Daily)).Methods(http.MethodGet)

	return router
}
