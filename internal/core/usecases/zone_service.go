package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
	"github.com/samirrijal/trigo/internal/pkg/geospatial"
	"github.com/samirrijal/trigo/internal/pkg/metrics"
)

const (
	zoneIndexTTL     = time.Minute
	boundaryCacheTTL = 3600
)

// ZoneService answers zone lookups and renders zone boundaries.
type ZoneService struct {
	zones ports.ZoneRepository
	cache ports.CacheService

	mu      sync.RWMutex
	index   *geospatial.ZoneIndex
	byID    map[string]domain.TodaZone
	builtAt time.Time
	edits   uint64 // bumped by Upsert; a rebuild that overlaps an edit stays stale
	now     func() time.Time
}

// NewZoneService creates a new ZoneService.
func NewZoneService(zones ports.ZoneRepository, cache ports.CacheService) *ZoneService {
	return &ZoneService{zones: zones, cache: cache, now: time.Now}
}

// List returns every zone in dispatch order.
func (s *ZoneService) List(ctx context.Context) ([]domain.TodaZone, error) {
	return s.zones.List(ctx)
}

// GetByID returns a single zone.
func (s *ZoneService) GetByID(ctx context.Context, id string) (*domain.TodaZone, error) {
	return s.zones.GetByID(ctx, id)
}

// Upsert validates and stores a zone, marks the lookup index stale and
// bumps the zone's boundary revision so every cached rendering is dropped.
func (s *ZoneService) Upsert(ctx context.Context, zone *domain.TodaZone) error {
	if zone.ID == "" || zone.Name == "" {
		return fmt.Errorf("%w: zone id and name are required", domain.ErrInvalidInput)
	}
	if err := zone.Geo().Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := s.zones.Upsert(ctx, zone); err != nil {
		return fmt.Errorf("upsert zone %s: %w", zone.ID, err)
	}

	s.mu.Lock()
	s.edits++
	s.builtAt = time.Time{}
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Set(ctx, revisionKey(zone.ID), []byte(newID()), 0); err != nil {
			return fmt.Errorf("bump boundary revision for zone %s: %w", zone.ID, err)
		}
	}
	return nil
}

// Refresh rebuilds the lookup index from the repository.
func (s *ZoneService) Refresh(ctx context.Context) error {
	_, err := s.rebuild(ctx)
	return err
}

// zoneSnapshot is an index and the zones it was built from. It is never
// mutated after construction.
type zoneSnapshot struct {
	index *geospatial.ZoneIndex
	byID  map[string]domain.TodaZone
}

func (s *ZoneService) rebuild(ctx context.Context) (zoneSnapshot, error) {
	s.mu.RLock()
	edits := s.edits
	s.mu.RUnlock()
	startedAt := s.now()

	zones, err := s.zones.List(ctx)
	if err != nil {
		return zoneSnapshot{}, fmt.Errorf("list zones: %w", err)
	}

	snap := zoneSnapshot{
		index: geospatial.NewZoneIndex(),
		byID:  make(map[string]domain.TodaZone, len(zones)),
	}
	for _, z := range zones {
		if err := snap.index.Add(z.ID, z.Geo()); err != nil {
			return zoneSnapshot{}, err
		}
		snap.byID[z.ID] = z
	}

	s.mu.Lock()
	s.index, s.byID = snap.index, snap.byID
	if s.edits == edits {
		s.builtAt = startedAt
	}
	s.mu.Unlock()
	return snap, nil
}

// snapshot returns the current index, rebuilding it when it is missing or stale.
func (s *ZoneService) snapshot(ctx context.Context) (zoneSnapshot, error) {
	s.mu.RLock()
	snap := zoneSnapshot{index: s.index, byID: s.byID}
	stale := snap.index == nil || s.builtAt.IsZero() || s.now().Sub(s.builtAt) > zoneIndexTTL
	s.mu.RUnlock()
	if !stale {
		return snap, nil
	}
	return s.rebuild(ctx)
}

// IndexedZones reports how many zones the lookup index holds, rebuilding it if stale.
func (s *ZoneService) IndexedZones(ctx context.Context) (int, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return snap.index.Len(), nil
}

// Locate returns the first zone, in dispatch order, whose circle contains p.
func (s *ZoneService) Locate(ctx context.Context, p domain.Coordinate) (*domain.TodaZone, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	id, ok := snap.index.Locate(p)
	if !ok {
		return nil, domain.ErrUnserviceable
	}
	zone := snap.byID[id]
	return &zone, nil
}

// Boundary returns the zone as a GeoJSON polygon feature.
func (s *ZoneService) Boundary(ctx context.Context, id string, points int) (*geospatial.Feature, error) {
	if points <= 0 {
		points = geospatial.DefaultCirclePoints
	}

	var cacheKey string
	if s.cache != nil {
		if rev, err := s.boundaryRevision(ctx, id); err != nil {
			slog.Warn("boundary cache skipped", "zone_id", id, "error", err)
		} else {
			cacheKey = boundaryKey(id, rev, points)
		}
	}
	if cacheKey != "" {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var f geospatial.Feature
			if err := json.Unmarshal(data, &f); err == nil {
				metrics.CacheHits.WithLabelValues("zone_boundary").Inc()
				return &f, nil
			}
		} else if errors.Is(err, ports.ErrCacheMiss) {
			metrics.CacheMisses.WithLabelValues("zone_boundary").Inc()
		}
	}

	zone, err := s.zones.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f, err := zoneFeature(zone, points)
	if err != nil {
		return nil, err
	}

	if cacheKey != "" {
		if data, err := json.Marshal(f); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, boundaryCacheTTL)
		}
	}
	return &f, nil
}

// Boundaries renders every zone as one feature collection.
func (s *ZoneService) Boundaries(ctx context.Context, points int) (geospatial.FeatureCollection, error) {
	if points <= 0 {
		points = geospatial.DefaultCirclePoints
	}
	zones, err := s.zones.List(ctx)
	if err != nil {
		return geospatial.FeatureCollection{}, err
	}

	features := make([]geospatial.Feature, 0, len(zones))
	for i := range zones {
		f, err := zoneFeature(&zones[i], points)
		if err != nil {
			return geospatial.FeatureCollection{}, err
		}
		features = append(features, f)
	}
	return geospatial.NewFeatureCollection(features...), nil
}

func zoneFeature(zone *domain.TodaZone, points int) (geospatial.Feature, error) {
	f, err := geospatial.CircleFeature(zone.ID, zone.Geo(), points, map[string]any{
		"name":              zone.Name,
		"area_of_operation": zone.AreaOfOperation,
		"radius_km":         zone.RadiusKm,
	})
	if err != nil {
		if errors.Is(err, geospatial.ErrInvalidArgument) {
			return geospatial.Feature{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return geospatial.Feature{}, fmt.Errorf("zone %s boundary: %w", zone.ID, err)
	}
	return f, nil
}

// boundaryRevision returns the zone's current boundary revision, "0" if it
// has never been edited through this service.
func (s *ZoneService) boundaryRevision(ctx context.Context, id string) (string, error) {
	data, err := s.cache.Get(ctx, revisionKey(id))
	switch {
	case err == nil:
		return string(data), nil
	case errors.Is(err, ports.ErrCacheMiss):
		return "0", nil
	default:
		return "", fmt.Errorf("boundary revision for zone %s: %w", id, err)
	}
}

func revisionKey(id string) string {
	return "zones:rev:" + id
}

func boundaryKey(id, rev string, points int) string {
	return fmt.Sprintf("zones:boundary:%s:%s:%d", id, rev, points)
}
