package geospatial

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const maxSampleAttempts = 32

// RandomPointInCircle draws a point uniformly by area inside the circle of
// radiusKm around center. The radius is sampled as sqrt(U) so density does
// not bunch at the center, and the longitude offset is widened by
// 1/cos(latitude). Samples the degree approximation places outside the true
// circle are redrawn, so every result satisfies IsPointInCircle.
//
// A nil rng uses the process-wide source. A caller-owned rng is not
// synchronised here.
func RandomPointInCircle(rng *rand.Rand, center Coordinate, radiusKm float64) (Coordinate, error) {
	if err := validateRadius(radiusKm); err != nil {
		return Coordinate{}, err
	}
	if err := center.Validate(); err != nil {
		return Coordinate{}, err
	}

	cosLat := math.Cos(toRad(center.Latitude))
	if cosLat < 1e-9 {
		return Coordinate{}, fmt.Errorf("%w: longitude offset undefined at latitude %v", ErrDomain, center.Latitude)
	}

	radiusDeg := radiusKm / KmPerDegree
	for range maxSampleAttempts {
		r := radiusDeg * math.Sqrt(uniform(rng))
		theta := uniform(rng) * 2 * math.Pi

		p := Coordinate{
			Latitude:  center.Latitude + r*math.Sin(theta),
			Longitude: normalizeLon(center.Longitude + r*math.Cos(theta)/cosLat),
		}
		if p.Latitude < -90 || p.Latitude > 90 {
			continue
		}
		if IsPointInCircle(p, center, radiusKm) {
			return p, nil
		}
	}

	return center, nil
}

func uniform(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}
