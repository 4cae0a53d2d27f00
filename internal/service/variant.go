package service

import "github.com/kjstillabower/weather-edge-proxy/internal/models"

// Variant selects which One Call sections a request returns.
type Variant struct {
	Name       string
	exclude    []string
	newPayload func() any
}

// Exclude returns a copy of the sections this variant asks the upstream to leave out.
func (v Variant) Exclude() []string {
	return append([]string(nil), v.exclude...)
}

var (
	// Current is the current-conditions variant.
	Current = Variant{
		Name:       "current",
		exclude:    []string{"minutely", "hourly", "daily", "alerts"},
		newPayload: func() any { return &models.CurrentReport{} },
	}

	// Forecast carries the hourly and daily sections.
	Forecast = Variant{
		Name:       "forecast",
		exclude:    []string{"current", "minutely", "alerts"},
		newPayload: func() any { return &models.ForecastReport{} },
	}

	// Daily carries only the daily section.
	Daily = Variant{
		Name:       "daily",
		exclude:    []string{"current", "minutely", "hourly", "alerts"},
		newPayload: func() any { return &models.DailyReport{} },
	}
)
