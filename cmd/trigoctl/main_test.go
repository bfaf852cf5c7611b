package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/samirrijal/trigo/internal/pkg/geospatial"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDistanceCmd(t *testing.T) {
	out, err := run(t, "distance", "0", "0", "0", "1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "111.195 km") {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := run(t, "distance", "91", "0", "0", "0"); err == nil {
		t.Error("expected an error for latitude 91")
	}
}

func TestCircleCmd(t *testing.T) {
	out, err := run(t, "circle", "14.4403", "121.0006", "--radius", "0.5", "--points", "8")
	if err != nil {
		t.Fatal(err)
	}
	var f struct {
		Geometry struct {
			Type        string        `json:"type"`
			Coordinates [][][]float64 `json:"coordinates"`
		} `json:"geometry"`
	}
	if err := json.Unmarshal([]byte(out), &f); err != nil {
		t.Fatalf("decode feature: %v", err)
	}
	if f.Geometry.Type != geospatial.TypePolygon {
		t.Errorf("geometry type %q", f.Geometry.Type)
	}
	if ring := f.Geometry.Coordinates[0]; len(ring) != 9 {
		t.Errorf("expected 9 ring positions, got %d", len(ring))
	}
}

func TestRandomCmd(t *testing.T) {
	out, err := run(t, "random", "14.4403", "121.0006", "--radius", "0.5", "--count", "5", "--seed", "7")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 points, got %d", len(lines))
	}

	again, _ := run(t, "random", "14.4403", "121.0006", "--radius", "0.5", "--count", "5", "--seed", "7")
	if again != out {
		t.Error("the same seed should give the same points")
	}
}

func TestLocateCmd(t *testing.T) {
	out, err := run(t, "locate", "14.4403", "121.0006", "--zones", "../../configs/seed.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "1 ACAPODA") {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := run(t, "locate", "15.5", "120.5", "--zones", "../../configs/seed.yaml"); err == nil {
		t.Error("expected an error outside every zone")
	}
}
