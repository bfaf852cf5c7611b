package geospatial_test

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/samirrijal/trigo/internal/pkg/geospatial"
)

var (
	manila     = geospatial.Coordinate{Latitude: 14.5995, Longitude: 120.9842}
	quezonCity = geospatial.Coordinate{Latitude: 14.6091, Longitude: 121.0223}
	acapoda    = geospatial.Coordinate{Latitude: 14.4403, Longitude: 121.0006}
)

func TestDistance_SamePointIsZero(t *testing.T) {
	for _, c := range []geospatial.Coordinate{manila, quezonCity, acapoda, {Latitude: 89.9, Longitude: -179.9}} {
		if d := geospatial.Distance(c, c); d != 0 {
			t.Errorf("Distance(%v, %v) = %v, want 0", c, c, d)
		}
	}
}

func TestDistance_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for range 500 {
		a := geospatial.Coordinate{Latitude: rng.Float64()*180 - 90, Longitude: rng.Float64()*360 - 180}
		b := geospatial.Coordinate{Latitude: rng.Float64()*180 - 90, Longitude: rng.Float64()*360 - 180}
		ab, ba := geospatial.Distance(a, b), geospatial.Distance(b, a)
		if math.Abs(ab-ba) > 1e-9*math.Max(ab, 1) {
			t.Fatalf("Distance not symmetric for %v, %v: %v vs %v", a, b, ab, ba)
		}
	}
}

func TestDistance_KnownFixture(t *testing.T) {
	d := geospatial.Distance(manila, quezonCity)
	if math.Abs(d-4.22) > 0.05 {
		t.Errorf("Distance(manila, qc) = %.4f km, want 4.22 ± 0.05", d)
	}
}

func TestIsPointInCircle(t *testing.T) {
	if !geospatial.IsPointInCircle(acapoda, acapoda, 0.001) {
		t.Error("center should be inside its own circle")
	}

	edge, err := geospatial.Destination(acapoda, 90, 0.5)
	if err != nil {
		t.Fatalf("Destination: %v", err)
	}
	r := geospatial.Distance(edge, acapoda)
	if !geospatial.IsPointInCircle(edge, acapoda, r) {
		t.Error("point exactly on the boundary should be inside")
	}
	if geospatial.IsPointInCircle(edge, acapoda, r-1e-9) {
		t.Error("point just beyond the boundary should be outside")
	}
}

func TestCreateCircle_ClosedRingWithinTolerance(t *testing.T) {
	for _, n := range []int{3, 4, 16, geospatial.DefaultCirclePoints} {
		ring, err := geospatial.CreateCircle(acapoda, 0.5, n)
		if err != nil {
			t.Fatalf("CreateCircle(n=%d): %v", n, err)
		}
		if len(ring) != n+1 {
			t.Fatalf("n=%d: got %d vertices, want %d", n, len(ring), n+1)
		}
		if ring[0] != ring[n] {
			t.Errorf("n=%d: ring not closed: %v != %v", n, ring[0], ring[n])
		}
		for i, v := range ring[:n] {
			d := geospatial.Distance(acapoda, v)
			if d < 0.5*0.99 || d > 0.5*1.01 {
				t.Errorf("n=%d vertex %d at %.5f km, want ~0.5", n, i, d)
			}
		}
	}
}

func TestCreateCircle_FourPointScenario(t *testing.T) {
	ring, err := geospatial.CreateCircle(acapoda, 0.5, 4)
	if err != nil {
		t.Fatalf("CreateCircle: %v", err)
	}
	if len(ring) != 5 || ring[0] != ring[4] {
		t.Fatalf("want closed 5-point ring, got %v", ring)
	}
	for i, want := range []float64{0, 90, 180, 270} {
		got := geospatial.Bearing(acapoda, ring[i])
		diff := math.Abs(math.Mod(got-want+540, 360) - 180)
		if diff > 0.01 {
			t.Errorf("vertex %d bearing = %.4f, want %.0f", i, got, want)
		}
		if d := geospatial.Distance(acapoda, ring[i]); math.Abs(d-0.5) > 0.005 {
			t.Errorf("vertex %d distance = %.5f, want ~0.5", i, d)
		}
	}
}

func TestCreateCircle_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		center geospatial.Coordinate
		radius float64
		points int
	}{
		{"zero radius", acapoda, 0, 8},
		{"negative radius", acapoda, -1, 8},
		{"nan radius", acapoda, math.NaN(), 8},
		{"radius too large", acapoda, geospatial.MaxRadiusKm + 1, 8},
		{"too few points", acapoda, 1, 2},
		{"latitude out of range", geospatial.Coordinate{Latitude: 91, Longitude: 0}, 1, 8},
		{"longitude out of range", geospatial.Coordinate{Latitude: 0, Longitude: 181}, 1, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := geospatial.CreateCircle(tt.center, tt.radius, tt.points)
			if !errors.Is(err, geospatial.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestCreateCircle_WrapsAntimeridian(t *testing.T) {
	ring, err := geospatial.CreateCircle(geospatial.Coordinate{Latitude: 0, Longitude: 179.999}, 5, 8)
	if err != nil {
		t.Fatalf("CreateCircle: %v", err)
	}
	for _, v := range ring {
		if err := v.Validate(); err != nil {
			t.Errorf("vertex %v invalid: %v", v, err)
		}
	}
}

func TestRandomPointInCircle_AllInsideAndAreaUniform(t *testing.T) {
	const samples = 10000
	rng := rand.New(rand.NewPCG(42, 1024))
	r := 0.5

	var sum float64
	for i := range samples {
		p, err := geospatial.RandomPointInCircle(rng, acapoda, r)
		if err != nil {
			t.Fatalf("sample %d: %v", i, err)
		}
		d := geospatial.Distance(p, acapoda)
		if !geospatial.IsPointInCircle(p, acapoda, r) {
			t.Fatalf("sample %d at %.5f km is outside r=%v", i, d, r)
		}
		sum += (d / r) * (d / r)
	}

	mean := sum / samples
	if math.Abs(mean-0.5) > 0.02 {
		t.Errorf("mean (d/r)^2 = %.4f, want ~0.5", mean)
	}
}

func TestRandomPointInCircle_NilSource(t *testing.T) {
	p, err := geospatial.RandomPointInCircle(nil, manila, 1.5)
	if err != nil {
		t.Fatalf("RandomPointInCircle: %v", err)
	}
	if !geospatial.IsPointInCircle(p, manila, 1.5) {
		t.Errorf("sample %v outside circle", p)
	}
}

func TestRandomPointInCircle_Errors(t *testing.T) {
	if _, err := geospatial.RandomPointInCircle(nil, acapoda, 0); !errors.Is(err, geospatial.ErrInvalidArgument) {
		t.Errorf("zero radius: expected ErrInvalidArgument, got %v", err)
	}
	pole := geospatial.Coordinate{Latitude: 90, Longitude: 0}
	if _, err := geospatial.RandomPointInCircle(nil, pole, 1); !errors.Is(err, geospatial.ErrDomain) {
		t.Errorf("pole: expected ErrDomain, got %v", err)
	}
}

func TestLinePath_StepBound(t *testing.T) {
	path, err := geospatial.LinePath([]geospatial.Coordinate{manila, quezonCity, acapoda}, 0.25)
	if err != nil {
		t.Fatalf("LinePath: %v", err)
	}
	if path[0] != manila || path[len(path)-1] != acapoda {
		t.Fatalf("path endpoints = %v .. %v", path[0], path[len(path)-1])
	}
	for i := 1; i < len(path); i++ {
		if d := geospatial.Distance(path[i-1], path[i]); d > 0.25+1e-9 {
			t.Fatalf("step %d is %.4f km, want <= 0.25", i, d)
		}
	}
	direct := geospatial.Distance(manila, quezonCity) + geospatial.Distance(quezonCity, acapoda)
	if got := geospatial.PathLength(path); math.Abs(got-direct) > 1e-6 {
		t.Errorf("PathLength = %v, want %v", got, direct)
	}
}

func TestLinePath_RejectsZeroStep(t *testing.T) {
	if _, err := geospatial.LinePath([]geospatial.Coordinate{manila, acapoda}, 0); !errors.Is(err, geospatial.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestZoneIndex_MatchesLinearScan(t *testing.T) {
	zones := []struct {
		id   string
		zone geospatial.Zone
	}{
		{"1", geospatial.Zone{Center: acapoda, RadiusKm: 0.5}},
		{"2", geospatial.Zone{Center: geospatial.Coordinate{Latitude: 14.4369, Longitude: 120.9969}, RadiusKm: 0.5}},
		{"7", geospatial.Zone{Center: geospatial.Coordinate{Latitude: 14.435, Longitude: 121.0}, RadiusKm: 0.3}},
		{"18", geospatial.Zone{Center: geospatial.Coordinate{Latitude: 14.405, Longitude: 121.0}, RadiusKm: 1.5}},
	}

	idx := geospatial.NewZoneIndex()
	for _, z := range zones {
		if err := idx.Add(z.id, z.zone); err != nil {
			t.Fatalf("Add(%s): %v", z.id, err)
		}
	}
	if idx.Len() != len(zones) {
		t.Fatalf("Len = %d, want %d", idx.Len(), len(zones))
	}

	rng := rand.New(rand.NewPCG(3, 5))
	area := geospatial.Coordinate{Latitude: 14.42, Longitude: 121.0}
	for range 2000 {
		p, err := geospatial.RandomPointInCircle(rng, area, 5)
		if err != nil {
			t.Fatalf("RandomPointInCircle: %v", err)
		}
		want := ""
		for _, z := range zones {
			if z.zone.Contains(p) {
				want = z.id
				break
			}
		}
		got, ok := idx.Locate(p)
		if got != want || ok != (want != "") {
			t.Fatalf("Locate(%v) = %q,%v; linear scan = %q", p, got, ok, want)
		}
	}
}

func TestZoneIndex_RejectsInvalidZone(t *testing.T) {
	idx := geospatial.NewZoneIndex()
	if err := idx.Add("bad", geospatial.Zone{Center: acapoda}); !errors.Is(err, geospatial.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCircleFeature_GeoJSON(t *testing.T) {
	f, err := geospatial.CircleFeature("1", geospatial.Zone{Center: acapoda, RadiusKm: 0.5}, 8, map[string]any{"name": "ACAPODA"})
	if err != nil {
		t.Fatalf("CircleFeature: %v", err)
	}
	raw, err := json.Marshal(geospatial.NewFeatureCollection(f))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			BBox     []float64 `json:"bbox"`
			Geometry struct {
				Type        string        `json:"type"`
				Coordinates [][][]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Type != "FeatureCollection" || len(decoded.Features) != 1 {
		t.Fatalf("unexpected collection: %s", raw)
	}
	ring := decoded.Features[0].Geometry.Coordinates[0]
	if decoded.Features[0].Geometry.Type != "Polygon" || len(ring) != 9 {
		t.Fatalf("expected 9-position polygon, got %s", raw)
	}
	// [lon, lat] ordering
	if math.Abs(ring[0][0]-121.0006) > 0.01 || math.Abs(ring[0][1]-14.4403) > 0.01 {
		t.Errorf("first position = %v, want near [121.0006, 14.4403]", ring[0])
	}
	if len(decoded.Features[0].BBox) != 4 {
		t.Errorf("bbox = %v", decoded.Features[0].BBox)
	}
}

func TestNewFeatureCollection_EmptyEncodesArray(t *testing.T) {
	raw, _ := json.Marshal(geospatial.NewFeatureCollection())
	if string(raw) != `{"type":"FeatureCollection","features":[]}` {
		t.Errorf("got %s", raw)
	}
}
