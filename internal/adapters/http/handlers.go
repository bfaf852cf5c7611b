package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/pkg/geospatial"
)

// queryCoordinate reads a required latitude/longitude pair from the query string.
func queryCoordinate(c *fiber.Ctx, latKey, lonKey string) (domain.Coordinate, error) {
	lat, err := queryFloat(c, latKey)
	if err != nil {
		return domain.Coordinate{}, err
	}
	lon, err := queryFloat(c, lonKey)
	if err != nil {
		return domain.Coordinate{}, err
	}
	p := domain.Coordinate{Latitude: lat, Longitude: lon}
	if err := p.Validate(); err != nil {
		return domain.Coordinate{}, err
	}
	return p, nil
}

func queryFloat(c *fiber.Ctx, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}

// queryPoints reads the polygon vertex count, defaulting to 64.
func queryPoints(c *fiber.Ctx) (int, error) {
	points := c.QueryInt("points", geospatial.DefaultCirclePoints)
	if points < geospatial.MinCirclePoints || points > 720 {
		return 0, fmt.Errorf("points must be between %d and 720", geospatial.MinCirclePoints)
	}
	return points, nil
}

// ListZonesHandler returns every TODA zone in dispatch order.
func ListZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zones, err := deps.Zones.List(c.UserContext())
		if err != nil {
			return errDomain(c, err)
		}
		if zones == nil {
			zones = []domain.TodaZone{}
		}
		return c.JSON(zones)
	}
}

// GetZoneHandler returns a single zone by ID.
func GetZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zone, err := deps.Zones.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(zone)
	}
}

// PutZoneHandler creates or replaces a zone.
func PutZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var zone domain.TodaZone
		if err := c.BodyParser(&zone); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		zone.ID = c.Params("id")
		if err := deps.Zones.Upsert(c.UserContext(), &zone); err != nil {
			return errDomain(c, err)
		}
		return c.JSON(zone)
	}
}

// LocateZoneHandler returns the zone serving a point.
func LocateZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := queryCoordinate(c, "lat", "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		zone, err := deps.Zones.Locate(c.UserContext(), p)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(zone)
	}
}

// ZoneBoundaryHandler returns a zone's circle as a GeoJSON feature.
func ZoneBoundaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		points, err := queryPoints(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		f, err := deps.Zones.Boundary(c.UserContext(), c.Params("id"), points)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(f, "application/geo+json")
	}
}

// ZoneBoundariesHandler returns every zone circle as a GeoJSON feature collection.
func ZoneBoundariesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		points, err := queryPoints(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		fc, err := deps.Zones.Boundaries(c.UserContext(), points)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(fc, "application/geo+json")
	}
}

// DistanceHandler returns the great-circle distance and initial bearing between two points.
func DistanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := queryCoordinate(c, "from_lat", "from_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		to, err := queryCoordinate(c, "to_lat", "to_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(fiber.Map{
			"from":        from,
			"to":          to,
			"distance_km": geospatial.Distance(from, to),
			"bearing_deg": geospatial.Bearing(from, to),
		})
	}
}

// CircleHandler returns an arbitrary circle as a GeoJSON polygon feature.
func CircleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		center, err := queryCoordinate(c, "lat", "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		radius, err := queryFloat(c, "radius_km")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		points, err := queryPoints(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		f, err := geospatial.CircleFeature("circle", geospatial.Zone{Center: center, RadiusKm: radius}, points, nil)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(f, "application/geo+json")
	}
}

// FareQuoteResponse is a fare quote and the zone that priced it.
type FareQuoteResponse struct {
	ZoneID string `json:"zone_id,omitempty"`
	domain.FareQuote
}

// FareQuoteHandler prices a trip between two points.
func FareQuoteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pickup, err := queryCoordinate(c, "pickup_lat", "pickup_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		dropoff, err := queryCoordinate(c, "dropoff_lat", "dropoff_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		zone, err := deps.Zones.Locate(c.UserContext(), pickup)
		if err != nil {
			return errDomain(c, err)
		}
		quote := deps.Fares.Quote(geospatial.Distance(pickup, dropoff), zone)
		return c.JSON(FareQuoteResponse{ZoneID: zone.ID, FareQuote: quote})
	}
}
