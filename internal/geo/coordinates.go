package geo

import (
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
}

// InRange reports whether both components are within their valid ranges.
// Out-of-range coordinates are still forwarded upstream; this is for logging and metrics.
func (c Coordinates) InRange() bool {
	return validate.Struct(c) == nil
}

// LatitudeString formats the latitude with the shortest representation that round-trips.
func (c Coordinates) LatitudeString() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64)
}

// LongitudeString formats the longitude with the shortest representation that round-trips.
func (c Coordinates) LongitudeString() string {
	return strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}
