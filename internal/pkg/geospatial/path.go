package geospatial

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

// Interpolate returns the point a fraction t of the way from a to b along
// the great circle. t = 0 yields a and t = 1 yields b.
func Interpolate(a, b Coordinate, t float64) Coordinate {
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	p := s2.Interpolate(t, s2.PointFromLatLng(a.latLng()), s2.PointFromLatLng(b.latLng()))
	return fromLatLng(s2.LatLngFromPoint(p))
}

// LinePath densifies the route through waypoints so that consecutive
// vertices are at most stepKm apart. Every waypoint appears in the result.
func LinePath(waypoints []Coordinate, stepKm float64) ([]Coordinate, error) {
	if math.IsNaN(stepKm) || stepKm <= 0 {
		return nil, fmt.Errorf("%w: step must be positive, got %v km", ErrInvalidArgument, stepKm)
	}
	if len(waypoints) == 0 {
		return nil, nil
	}

	path := []Coordinate{waypoints[0]}
	for i := 1; i < len(waypoints); i++ {
		from, to := waypoints[i-1], waypoints[i]
		steps := int(math.Ceil(Distance(from, to) / stepKm))
		if steps == 0 {
			continue
		}
		for j := 1; j <= steps; j++ {
			path = append(path, Interpolate(from, to, float64(j)/float64(steps)))
		}
	}
	return path, nil
}

// PathLength sums the great-circle length of a polyline in kilometers.
func PathLength(path []Coordinate) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += Distance(path[i-1], path[i])
	}
	return total
}
