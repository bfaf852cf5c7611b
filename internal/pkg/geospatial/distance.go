package geospatial

import "math"

const (
	// EarthRadiusKm is the mean Earth radius shared by every formula here.
	EarthRadiusKm = 6371.0

	// KmPerDegree approximates one degree of latitude on the sphere.
	KmPerDegree = 111.32

	// MaxRadiusKm bounds zone radii; beyond it the degree approximations drift.
	MaxRadiusKm = 500.0
)

// Distance returns the great-circle distance in kilometers between a and b
// (Haversine formula).
func Distance(a, b Coordinate) float64 {
	return a.latLng().Distance(b.latLng()).Radians() * EarthRadiusKm
}

// IsPointInCircle reports whether point is within radiusKm of center.
// A point exactly radiusKm away is inside.
func IsPointInCircle(point, center Coordinate, radiusKm float64) bool {
	return Distance(point, center) <= radiusKm
}

// Bearing returns the initial bearing from a to b in degrees, 0 = north,
// normalised to [0, 360).
func Bearing(a, b Coordinate) float64 {
	lat1 := toRad(a.Latitude)
	lat2 := toRad(b.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return math.Mod(toDeg(math.Atan2(y, x))+360, 360)
}

// BoundingBox returns a lat/lon box around center enclosing radiusKm.
func BoundingBox(center Coordinate, radiusKm float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusKm / KmPerDegree
	lonDelta := radiusKm / (KmPerDegree * math.Cos(toRad(center.Latitude)))

	return center.Latitude - latDelta, center.Longitude - lonDelta,
		center.Latitude + latDelta, center.Longitude + lonDelta
}
