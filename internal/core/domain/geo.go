package domain

import "github.com/samirrijal/trigo/internal/pkg/geospatial"

// Coordinate is a WGS 84 position in decimal degrees.
type Coordinate = geospatial.Coordinate

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// BoundsAround returns the box enclosing a circle of radiusKm around center.
func BoundsAround(center Coordinate, radiusKm float64) Bounds {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(center, radiusKm)
	return Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
}
