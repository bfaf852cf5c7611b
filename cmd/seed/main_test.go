package main

import (
	"os"
	"strings"
	"testing"

	"github.com/samirrijal/trigo/internal/core/domain"
)

func TestSeedFixtures(t *testing.T) {
	file, err := os.Open("../../configs/seed.yaml")
	if err != nil {
		t.Fatalf("open seed: %v", err)
	}
	defer file.Close()

	f, err := decodeFixtures(file)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Zones) != 21 {
		t.Errorf("expected 21 zones, got %d", len(f.Zones))
	}

	zones := make(map[string]domain.TodaZone, len(f.Zones))
	for _, z := range f.Zones {
		if err := z.Geo().Validate(); err != nil {
			t.Errorf("zone %s: %v", z.ID, err)
		}
		if _, dup := zones[z.ID]; dup {
			t.Errorf("duplicate zone id %s", z.ID)
		}
		zones[z.ID] = z
	}

	for _, tr := range f.Triders {
		z, ok := zones[tr.TodaZoneID]
		if !ok {
			t.Errorf("trider %s references unknown zone %s", tr.ID, tr.TodaZoneID)
			continue
		}
		if !tr.Status.Valid() {
			t.Errorf("trider %s has status %q", tr.ID, tr.Status)
		}
		if !z.Geo().Contains(tr.Location) {
			t.Errorf("trider %s starts outside zone %s", tr.ID, z.Name)
		}
	}
}

func TestDecodeFixtures_RejectsUnknownFields(t *testing.T) {
	_, err := decodeFixtures(strings.NewReader("zones:\n  - id: \"1\"\n    colour: red\n"))
	if err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}
