package geo

import (
	"math"
	"net/http"
	"strconv"
	"strings"
)

// Default edge geolocation headers (Cloudflare visitor location headers).
const (
	DefaultLatitudeHeader  = "CF-IPLatitude"
	DefaultLongitudeHeader = "CF-IPLongitude"
	DefaultRegionHeader    = "CF-Region"

	// UnknownRegion is reported when neither the metadata nor a RegionFinder yields a region.
	UnknownRegion = "unknown region"
)

// Metadata is the geolocation an edge attaches to an inbound request.
type Metadata struct {
	Coordinates Coordinates
	HasLocation bool
	Region      string
}

// MetadataSource supplies optional geolocation for an inbound request.
// Absence of location is not an error.
type MetadataSource interface {
	Lookup(r *http.Request) Metadata
}

// RegionFinder derives a region label from coordinates when the edge did not provide one.
type RegionFinder interface {
	Region(c Coordinates) string
}

// HeaderSource reads geolocation from request headers set by the edge.
type HeaderSource struct {
	LatitudeHeader  string
	LongitudeHeader string
	RegionHeader    string
}

// NewHeaderSource returns a HeaderSource; empty names fall back to the Cloudflare defaults.
func NewHeaderSource(latHeader, lonHeader, regionHeader string) *HeaderSource {
	if latHeader == "" {
		latHeader = DefaultLatitudeHeader
	}
	if lonHeader == "" {
		lonHeader = DefaultLongitudeHeader
	}
	if regionHeader == "" {
		regionHeader = DefaultRegionHeader
	}
	return &HeaderSource{
		LatitudeHeader:  latHeader,
		LongitudeHeader: lonHeader,
		RegionHeader:    regionHeader,
	}
}

// Lookup implements MetadataSource. Both coordinates must be present and parse as finite
// numbers; a half-present or garbled pair is treated as no location at all.
func (s *HeaderSource) Lookup(r *http.Request) Metadata {
	md := Metadata{Region: strings.TrimSpace(r.Header.Get(s.RegionHeader))}
	lat, latOK := parseDegrees(r.Header.Get(s.LatitudeHeader))
	lon, lonOK := parseDegrees(r.Header.Get(s.LongitudeHeader))
	if latOK && lonOK {
		md.Coordinates = Coordinates{Latitude: lat, Longitude: lon}
		md.HasLocation = true
	}
	return md
}

func parseDegrees(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Resolution is the outcome of resolving coordinates for one request.
type Resolution struct {
	Coordinates Coordinates
	// Located is false when the default (0, 0) was substituted.
	Located bool
	Region  string
}

// Resolver turns request metadata into coordinates. It never fails.
type Resolver struct {
	source  MetadataSource
	regions RegionFinder
}

// NewResolver returns a Resolver. regions may be nil.
func NewResolver(source MetadataSource, regions RegionFinder) *Resolver {
	return &Resolver{source: source, regions: regions}
}

// Resolve returns the request's coordinates, or (0, 0) with Located=false when the
// metadata carries no usable location.
func (r *Resolver) Resolve(req *http.Request) Resolution {
	var md Metadata
	if r.source != nil {
		md = r.source.Lookup(req)
	}
	res := Resolution{Region: md.Region}
	if md.HasLocation {
		res.Coordinates = md.Coordinates
		res.Located = true
	}
	if res.Region == "" && res.Located && r.regions != nil {
		res.Region = r.regions.Region(res.Coordinates)
	}
	if res.Region == "" {
		res.Region = UnknownRegion
	}
	return res
}
