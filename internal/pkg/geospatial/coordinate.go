// Package geospatial holds the spherical geometry used for dispatch zones:
// great-circle distance, zone membership, circle polygons and random
// sampling inside a zone.
package geospatial

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/golang/geo/s2"
)

var (
	// ErrInvalidArgument is returned for inputs outside an operation's preconditions.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDomain is returned when the spherical math itself is undefined for the input.
	ErrDomain = errors.New("geodesic domain error")
)

// Coordinate is a WGS 84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Validate checks latitude ∈ [-90, 90] and longitude ∈ [-180, 180].
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90, got %v", ErrInvalidArgument, c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180, got %v", ErrInvalidArgument, c.Longitude)
	}
	return nil
}

// LonLat returns the GeoJSON position [lon, lat].
func (c Coordinate) LonLat() []float64 {
	return []float64{c.Longitude, c.Latitude}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

func (c Coordinate) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.Latitude, c.Longitude)
}

func fromLatLng(ll s2.LatLng) Coordinate {
	return Coordinate{Latitude: ll.Lat.Degrees(), Longitude: ll.Lng.Degrees()}
}

// Zone is a circular area around a center point.
type Zone struct {
	Center   Coordinate `json:"center" yaml:"center"`
	RadiusKm float64    `json:"radius_km" yaml:"radius_km"`
}

// Validate checks the center and that the radius is usable.
func (z Zone) Validate() error {
	if err := z.Center.Validate(); err != nil {
		return err
	}
	return validateRadius(z.RadiusKm)
}

// Contains reports whether p lies inside the zone, boundary included.
func (z Zone) Contains(p Coordinate) bool {
	return IsPointInCircle(p, z.Center, z.RadiusKm)
}

// Boundary approximates the zone edge as a closed ring.
func (z Zone) Boundary(points int) ([]Coordinate, error) {
	return CreateCircle(z.Center, z.RadiusKm, points)
}

// RandomPoint samples a point uniformly by area inside the zone.
func (z Zone) RandomPoint(rng *rand.Rand) (Coordinate, error) {
	return RandomPointInCircle(rng, z.Center, z.RadiusKm)
}

// Scaled returns the same zone with its radius multiplied by factor.
func (z Zone) Scaled(factor float64) Zone {
	return Zone{Center: z.Center, RadiusKm: z.RadiusKm * factor}
}

func validateRadius(radiusKm float64) error {
	if math.IsNaN(radiusKm) || radiusKm <= 0 {
		return fmt.Errorf("%w: radius must be positive, got %v km", ErrInvalidArgument, radiusKm)
	}
	if radiusKm > MaxRadiusKm {
		return fmt.Errorf("%w: radius %v km exceeds %v km", ErrInvalidArgument, radiusKm, MaxRadiusKm)
	}
	return nil
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// normalizeLon wraps a longitude into [-180, 180].
func normalizeLon(lon float64) float64 {
	return math.Remainder(lon, 360)
}
