package geospatial

// GeoJSON geometry and feature types (RFC 7946). Positions are [lon, lat].
const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypePoint             = "Point"
	TypePolygon           = "Polygon"
	TypeLineString        = "LineString"
)

// Geometry holds a GeoJSON geometry object.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id,omitempty"`
	BBox       []float64      `json:"bbox,omitempty"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection wraps features; a nil list encodes as [].
func NewFeatureCollection(features ...Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: TypeFeatureCollection, Features: features}
}

// CircleFeature renders a zone as a Polygon feature with a bbox.
func CircleFeature(id string, z Zone, points int, props map[string]any) (Feature, error) {
	ring, err := CreateCircle(z.Center, z.RadiusKm, points)
	if err != nil {
		return Feature{}, err
	}
	minLat, minLon, maxLat, maxLon := BoundingBox(z.Center, z.RadiusKm)

	return Feature{
		Type:       TypeFeature,
		ID:         id,
		BBox:       []float64{minLon, minLat, maxLon, maxLat},
		Geometry:   Geometry{Type: TypePolygon, Coordinates: [][][]float64{positions(ring)}},
		Properties: properties(props),
	}, nil
}

// PointFeature renders a single position.
func PointFeature(id string, c Coordinate, props map[string]any) Feature {
	return Feature{
		Type:       TypeFeature,
		ID:         id,
		Geometry:   Geometry{Type: TypePoint, Coordinates: c.LonLat()},
		Properties: properties(props),
	}
}

// LineFeature renders a path as a LineString.
func LineFeature(id string, path []Coordinate, props map[string]any) Feature {
	return Feature{
		Type:       TypeFeature,
		ID:         id,
		Geometry:   Geometry{Type: TypeLineString, Coordinates: positions(path)},
		Properties: properties(props),
	}
}

func positions(cs []Coordinate) [][]float64 {
	out := make([][]float64, len(cs))
	for i, c := range cs {
		out[i] = c.LonLat()
	}
	return out
}

func properties(props map[string]any) map[string]any {
	if props == nil {
		return map[string]any{}
	}
	return props
}
