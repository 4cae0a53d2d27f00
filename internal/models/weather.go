package models

// Fields are pointers so that a value the upstream omitted (or sent as null) can be told
// apart from a legitimate zero such as uvi 0 or clouds 0. Required fields carry
// validate:"required"; optional accumulations carry omitempty and are never validated.

// Location is the envelope shared by every One Call response.
type Location struct {
	Lat            *float64 `json:"lat" validate:"required"`
	Lon            *float64 `json:"lon" validate:"required"`
	Timezone       *string  `json:"timezone" validate:"required"`
	TimezoneOffset *int64   `json:"timezone_offset" validate:"required"`
}

// WeatherCondition is one entry of the "weather" array.
type WeatherCondition struct {
	ID          *int    `json:"id" validate:"required"`
	Main        *string `json:"main" validate:"required"`
	Description *string `json:"description" validate:"required"`
	Icon        *string `json:"icon" validate:"required"`
}

// Conditions is the "current" section.
type Conditions struct {
	Dt         *int64             `json:"dt" validate:"required"`
	Sunrise    *int64             `json:"sunrise" validate:"required"`
	Sunset     *int64             `json:"sunset" validate:"required"`
	Temp       *float64           `json:"temp" validate:"required"`
	FeelsLike  *float64           `json:"feels_like" validate:"required"`
	Pressure   *int               `json:"pressure" validate:"required"`
	Humidity   *int               `json:"humidity" validate:"required"`
	DewPoint   *float64           `json:"dew_point" validate:"required"`
	UVI        *float64           `json:"uvi" validate:"required"`
	Clouds     *int               `json:"clouds" validate:"required"`
	Visibility *int               `json:"visibility" validate:"required"`
	WindSpeed  *float64           `json:"wind_speed" validate:"required"`
	WindDeg    *int               `json:"wind_deg" validate:"required"`
	Weather    []WeatherCondition `json:"weather" validate:"required,dive"`
}

// HourlyPrecipitation is the {"1h": mm} object used by hourly rain and snow.
type HourlyPrecipitation struct {
	OneHour *float64 `json:"1h,omitempty"`
}

// HourlyEntry is one element of the "hourly" section.
type HourlyEntry struct {
	Dt         *int64               `json:"dt" validate:"required"`
	Temp       *float64             `json:"temp" validate:"required"`
	FeelsLike  *float64             `json:"feels_like" validate:"required"`
	Pressure   *int                 `json:"pressure" validate:"required"`
	Humidity   *int                 `json:"humidity" validate:"required"`
	DewPoint   *float64             `json:"dew_point" validate:"required"`
	UVI        *float64             `json:"uvi" validate:"required"`
	Clouds     *int                 `json:"clouds" validate:"required"`
	Visibility *int                 `json:"visibility" validate:"required"`
	WindSpeed  *float64             `json:"wind_speed" validate:"required"`
	WindDeg    *int                 `json:"wind_deg" validate:"required"`
	WindGust   *float64             `json:"wind_gust,omitempty"`
	Weather    []WeatherCondition   `json:"weather" validate:"required,dive"`
	Pop        *float64             `json:"pop" validate:"required"`
	Rain       *HourlyPrecipitation `json:"rain,omitempty"`
	Snow       *HourlyPrecipitation `json:"snow,omitempty"`
}

// DailyTemperature is the per-period temperature breakdown of a daily entry.
type DailyTemperature struct {
	Day   *float64 `json:"day" validate:"required"`
	Min   *float64 `json:"min" validate:"required"`
	Max   *float64 `json:"max" validate:"required"`
	Night *float64 `json:"night" validate:"required"`
	Eve   *float64 `json:"eve" validate:"required"`
	Morn  *float64 `json:"morn" validate:"required"`
}

// DailyFeelsLike mirrors DailyTemperature without min/max.
type DailyFeelsLike struct {
	Day   *float64 `json:"day" validate:"required"`
	Night *float64 `json:"night" validate:"required"`
	Eve   *float64 `json:"eve" validate:"required"`
	Morn  *float64 `json:"morn" validate:"required"`
}

// DailyEntry is one element of the "daily" section.
type DailyEntry struct {
	Dt        *int64             `json:"dt" validate:"required"`
	Sunrise   *int64             `json:"sunrise" validate:"required"`
	Sunset    *int64             `json:"sunset" validate:"required"`
	Moonrise  *int64             `json:"moonrise" validate:"required"`
	Moonset   *int64             `json:"moonset" validate:"required"`
	MoonPhase *float64           `json:"moon_phase" validate:"required"`
	Temp      *DailyTemperature  `json:"temp" validate:"required"`
	FeelsLike *DailyFeelsLike    `json:"feels_like" validate:"required"`
	Pressure  *int               `json:"pressure" validate:"required"`
	Humidity  *int               `json:"humidity" validate:"required"`
	DewPoint  *float64           `json:"dew_point" validate:"required"`
	WindSpeed *float64           `json:"wind_speed" validate:"required"`
	WindDeg   *int               `json:"wind_deg" validate:"required"`
	Weather   []WeatherCondition `json:"weather" validate:"required,dive"`
	Clouds    *int               `json:"clouds" validate:"required"`
	Pop       *float64           `json:"pop" validate:"required"`
	UVI       *float64           `json:"uvi" validate:"required"`
	Rain      *float64           `json:"rain,omitempty"`
	Snow      *float64           `json:"snow,omitempty"`
}

// CurrentReport is the payload of the current-conditions variant.
type CurrentReport struct {
	Location
	Current *Conditions `json:"current" validate:"required"`
}

// ForecastReport is the payload of the hourly+daily variant.
type ForecastReport struct {
	Location
	Hourly []HourlyEntry `json:"hourly" validate:"required,dive"`
	Daily  []DailyEntry  `json:"daily" validate:"required,dive"`
}

// DailyReport is the payload of the daily-only variant.
type DailyReport struct {
	Location
	Daily []DailyEntry `json:"daily" validate:"required,dive"`
}
