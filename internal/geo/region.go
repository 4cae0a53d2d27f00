package geo

import (
	"fmt"
	"sync"

	"github.com/ringsaturn/tzf"
)

// TimezoneRegions labels coordinates with their IANA timezone name (e.g. "America/New_York").
type TimezoneRegions struct {
	finder tzf.F
}

var (
	tzOnce     sync.Once
	tzInstance *TimezoneRegions
	tzErr      error
)

// NewTimezoneRegions returns the process-wide finder. The timezone polygons are large,
// so they are loaded once.
func NewTimezoneRegions() (*TimezoneRegions, error) {
	tzOnce.Do(func() {
		finder, err := tzf.NewDefaultFinder()
		if err != nil {
			tzErr = fmt.Errorf("initialize timezone finder: %w", err)
			return
		}
		tzInstance = &TimezoneRegions{finder: finder}
	})
	return tzInstance, tzErr
}

// Region implements RegionFinder. Returns "" when no timezone covers the point.
func (t *TimezoneRegions) Region(c Coordinates) string {
	if !c.InRange() {
		return ""
	}
	return t.finder.GetTimezoneName(c.Longitude, c.Latitude)
}
