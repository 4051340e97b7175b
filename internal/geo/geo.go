// Package geo holds the coordinate type and great-circle distance math shared
// by every component that reasons about user/place proximity.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
)

const earthRadiusMeters = 6371000.0

// ErrInvalidCoordinate is returned when a latitude or longitude is outside
// the valid WGS84 range. Coordinates are validated, never clamped.
var ErrInvalidCoordinate = eris.New("coordinate out of range")

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the coordinate lies within lat [-90,90], lng [-180,180].
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return eris.Wrapf(ErrInvalidCoordinate, "lat=%v lng=%v", c.Lat, c.Lng)
	}
	return nil
}

// Distance returns the great-circle distance between a and b in meters using
// the haversine formula with a spherical Earth of radius 6,371,000 m.
func Distance(a, b Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h a hair past 1 for near-antipodal pairs, which
	// would make Sqrt(1-h) NaN.
	h = math.Min(h, 1)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c, nil
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
