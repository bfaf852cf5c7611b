package geospatial

import (
	"fmt"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	coverMaxLevel = 20
	coverMaxCells = 16
	capPadding    = 1.001
)

type indexedZone struct {
	id    string
	zone  Zone
	cells s2.CellUnion
}

// ZoneIndex locates the zone containing a point. Each zone is covered by a
// small set of s2 cells used as a prefilter; membership is then decided by
// IsPointInCircle, so results match a linear scan over the zones.
//
// Overlapping zones resolve to the first one added. A ZoneIndex is not safe
// for concurrent mutation; build it once and share it read-only.
type ZoneIndex struct {
	zones   []indexedZone
	coverer *s2.RegionCoverer
}

// NewZoneIndex returns an empty index.
func NewZoneIndex() *ZoneIndex {
	return &ZoneIndex{
		coverer: &s2.RegionCoverer{MinLevel: 0, MaxLevel: coverMaxLevel, LevelMod: 1, MaxCells: coverMaxCells},
	}
}

// Add appends a zone under id.
func (idx *ZoneIndex) Add(id string, z Zone) error {
	if err := z.Validate(); err != nil {
		return fmt.Errorf("zone %s: %w", id, err)
	}
	angle := s1.Angle(z.RadiusKm / EarthRadiusKm * capPadding)
	region := s2.CapFromCenterAngle(s2.PointFromLatLng(z.Center.latLng()), angle)

	idx.zones = append(idx.zones, indexedZone{
		id:    id,
		zone:  z,
		cells: idx.coverer.Covering(region),
	})
	return nil
}

// Locate returns the id of the first zone containing p.
func (idx *ZoneIndex) Locate(p Coordinate) (string, bool) {
	cell := s2.CellIDFromLatLng(p.latLng())
	for _, iz := range idx.zones {
		if !iz.cells.ContainsCellID(cell) {
			continue
		}
		if iz.zone.Contains(p) {
			return iz.id, true
		}
	}
	return "", false
}

// Len returns the number of indexed zones.
func (idx *ZoneIndex) Len() int {
	return len(idx.zones)
}
