package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
	"github.com/samirrijal/trigo/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to our services.
// Field names follow the JSON tags so the default resolver can read domain structs.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
		},
	})

	zoneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TodaZone",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.String},
			"name":              &graphql.Field{Type: graphql.String},
			"area_of_operation": &graphql.Field{Type: graphql.String},
			"center":            &graphql.Field{Type: coordinateType},
			"radius_km":         &graphql.Field{Type: graphql.Float},
			"base_fare":         &graphql.Field{Type: graphql.Float},
		},
	})

	triderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Trider",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"name":           &graphql.Field{Type: graphql.String},
			"location":       &graphql.Field{Type: coordinateType},
			"status":         &graphql.Field{Type: graphql.String},
			"vehicle_type":   &graphql.Field{Type: graphql.String},
			"toda_zone_id":   &graphql.Field{Type: graphql.String},
			"toda_zone_name": &graphql.Field{Type: graphql.String},
			"updated_at":     &graphql.Field{Type: graphql.DateTime},
		},
	})

	rideType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Ride",
		Fields: graphql.Fields{
			"id":                 &graphql.Field{Type: graphql.String},
			"ticket_id":          &graphql.Field{Type: graphql.String},
			"passenger_id":       &graphql.Field{Type: graphql.String},
			"passenger_name":     &graphql.Field{Type: graphql.String},
			"pickup":             &graphql.Field{Type: coordinateType},
			"dropoff":            &graphql.Field{Type: coordinateType},
			"pickup_address":     &graphql.Field{Type: graphql.String},
			"dropoff_address":    &graphql.Field{Type: graphql.String},
			"status":             &graphql.Field{Type: graphql.String},
			"fare":               &graphql.Field{Type: graphql.Float},
			"distance_km":        &graphql.Field{Type: graphql.Float},
			"payment_method":     &graphql.Field{Type: graphql.String},
			"payment_status":     &graphql.Field{Type: graphql.String},
			"assigned_trider_id": &graphql.Field{Type: graphql.String},
			"pickup_zone_id":     &graphql.Field{Type: graphql.String},
			"requested_at":       &graphql.Field{Type: graphql.DateTime},
		},
	})

	candidateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Candidate",
		Fields: graphql.Fields{
			"trider":      &graphql.Field{Type: triderType},
			"distance_km": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"zones": &graphql.Field{
				Type:        graphql.NewList(zoneType),
				Description: "List all TODA zones",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Zones.List(p.Context)
				},
			},
			"zone": &graphql.Field{
				Type:        zoneType,
				Description: "Get a zone by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Zones.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"locateZone": &graphql.Field{
				Type:        zoneType,
				Description: "The zone serving a point",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Zones.Locate(p.Context, domain.Coordinate{
						Latitude:  p.Args["lat"].(float64),
						Longitude: p.Args["lon"].(float64),
					})
				},
			},
			"triders": &graphql.Field{
				Type:        graphql.NewList(triderType),
				Description: "List triders, optionally by zone and status",
				Args: graphql.FieldConfigArgument{
					"zone":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"status": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Triders.List(p.Context, ports.TriderFilter{
						ZoneID: p.Args["zone"].(string),
						Status: domain.TriderStatus(p.Args["status"].(string)),
					})
				},
			},
			"trider": &graphql.Field{
				Type:        triderType,
				Description: "Get a trider by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Triders.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"rides": &graphql.Field{
				Type:        graphql.NewList(rideType),
				Description: "Recent rides, newest first",
				Args: graphql.FieldConfigArgument{
					"status": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rides, _, err := deps.Rides.List(p.Context, ports.RideFilter{
						Status: domain.RideStatus(p.Args["status"].(string)),
						Limit:  p.Args["limit"].(int),
						Offset: p.Args["offset"].(int),
					})
					return rides, err
				},
			},
			"ride": &graphql.Field{
				Type:        rideType,
				Description: "Get a ride by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Rides.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"candidates": &graphql.Field{
				Type:        graphql.NewList(candidateType),
				Description: "Available triders for a ride, nearest first",
				Args: graphql.FieldConfigArgument{
					"ride_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Rides.Candidates(p.Context, p.Args["ride_id"].(string))
				},
			},
			"distance": &graphql.Field{
				Type:        graphql.Float,
				Description: "Great-circle distance in kilometres",
				Args: graphql.FieldConfigArgument{
					"from_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"from_lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"to_lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"to_lon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					from := domain.Coordinate{Latitude: p.Args["from_lat"].(float64), Longitude: p.Args["from_lon"].(float64)}
					to := domain.Coordinate{Latitude: p.Args["to_lat"].(float64), Longitude: p.Args["to_lon"].(float64)}
					return geospatial.Distance(from, to), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
