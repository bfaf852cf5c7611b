package geospatial

import (
	"fmt"
	"math"
)

const (
	// DefaultCirclePoints is the vertex count used when rendering zone boundaries.
	DefaultCirclePoints = 64

	// MinCirclePoints is the smallest ring that still encloses an area.
	MinCirclePoints = 3

	asinTolerance = 1e-12
)

// Destination returns the point reached by travelling distanceKm from origin
// along the great circle with the given initial bearing (degrees, 0 = north).
// Longitudes are normalised to [-180, 180].
func Destination(origin Coordinate, bearingDeg, distanceKm float64) (Coordinate, error) {
	lat1 := toRad(origin.Latitude)
	lon1 := toRad(origin.Longitude)
	brng := toRad(bearingDeg)
	angular := distanceKm / EarthRadiusKm

	sinLat2 := math.Sin(lat1)*math.Cos(angular) + math.Cos(lat1)*math.Sin(angular)*math.Cos(brng)
	if math.IsNaN(sinLat2) || sinLat2 > 1+asinTolerance || sinLat2 < -1-asinTolerance {
		return Coordinate{}, fmt.Errorf("%w: asin argument %v outside [-1, 1]", ErrDomain, sinLat2)
	}
	sinLat2 = math.Max(-1, math.Min(1, sinLat2))
	lat2 := math.Asin(sinLat2)

	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*sinLat2,
	)

	return Coordinate{Latitude: toDeg(lat2), Longitude: normalizeLon(toDeg(lon2))}, nil
}

// CreateCircle approximates the circle of radiusKm around center as a closed
// ring. Vertex i sits at bearing 360*i/points; the returned slice has
// points+1 entries with the last equal to the first.
func CreateCircle(center Coordinate, radiusKm float64, points int) ([]Coordinate, error) {
	if err := validateRadius(radiusKm); err != nil {
		return nil, err
	}
	if points < MinCirclePoints {
		return nil, fmt.Errorf("%w: circle needs at least %d points, got %d", ErrInvalidArgument, MinCirclePoints, points)
	}
	if err := center.Validate(); err != nil {
		return nil, err
	}

	ring := make([]Coordinate, 0, points+1)
	for i := 0; i < points; i++ {
		bearing := 360 * float64(i) / float64(points)
		vertex, err := Destination(center, bearing, radiusKm)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		ring = append(ring, vertex)
	}

	return append(ring, ring[0]), nil
}
