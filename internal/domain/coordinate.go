package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tolerance is the per-axis coordinate difference treated as "the same place"
// for cache purposes: 0.01° is roughly 1.1 km at the equator.
const Tolerance = 0.01

// Coordinate is a WGS-84 latitude/longitude pair in signed decimal degrees.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// ToDecimalDegrees converts a sexagesimal degree/minute/second triple to
// decimal degrees. Pure and total over non-negative inputs; hemisphere sign
// is the caller's responsibility.
func ToDecimalDegrees(degrees, minutes, seconds float64) float64 {
	return degrees + minutes/60 + seconds/3600
}

// Valid reports whether the coordinate lies on the globe.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Key returns the canonical cache key, both axes rounded to six decimals.
func (c Coordinate) Key() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// CloseTo reports whether both axes differ by less than [Tolerance].
func (c Coordinate) CloseTo(other Coordinate) bool {
	return math.Abs(c.Lat-other.Lat) < Tolerance && math.Abs(c.Lon-other.Lon) < Tolerance
}

// ParseKey parses a "<lat>,<lon>" cache key back into a coordinate.
func ParseKey(key string) (Coordinate, error) {
	latStr, lonStr, ok := strings.Cut(key, ",")
	if !ok {
		return Coordinate{}, fmt.Errorf("malformed coordinate key %q", key)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("malformed latitude in key %q: %w", key, err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("malformed longitude in key %q: %w", key, err)
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}
