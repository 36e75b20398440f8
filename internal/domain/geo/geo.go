// Package geo holds coordinate validation and great-circle distance helpers.
// Points are orb.Point values, which are ordered (longitude, latitude).
package geo

import (
	"fmt"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"

	"github.com/kailas-cloud/sportdex/internal/domain"
)

// EarthRadiusMeters is the mean radius of Earth.
const EarthRadiusMeters = 6_371_000.0

// NewPoint validates a longitude/latitude pair and returns it as a point.
func NewPoint(lon, lat float64) (orb.Point, error) {
	if !ValidateCoordinates(lat, lon) {
		return orb.Point{}, fmt.Errorf("lon=%g lat=%g: %w", lon, lat, domain.ErrInvalidCoordinates)
	}
	return orb.Point{lon, lat}, nil
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Distance returns the great-circle distance in meters between two points.
func Distance(a, b orb.Point) float64 {
	la := s2.LatLngFromDegrees(a.Lat(), a.Lon())
	lb := s2.LatLngFromDegrees(b.Lat(), b.Lon())
	return la.Distance(lb).Radians() * EarthRadiusMeters
}
