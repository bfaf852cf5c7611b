package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
)

// TriderService handles trider state reported by drivers.
type TriderService struct {
	triders   ports.TriderRepository
	zones     ports.ZoneRepository
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewTriderService creates a new TriderService.
func NewTriderService(triders ports.TriderRepository, zones ports.ZoneRepository, publisher ports.EventPublisher) *TriderService {
	return &TriderService{triders: triders, zones: zones, publisher: publisher, now: time.Now}
}

// List returns triders matching filter.
func (s *TriderService) List(ctx context.Context, filter ports.TriderFilter) ([]domain.Trider, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown trider status %q", domain.ErrInvalidInput, filter.Status)
	}
	return s.triders.List(ctx, filter)
}

// GetByID returns a single trider.
func (s *TriderService) GetByID(ctx context.Context, id string) (*domain.Trider, error) {
	return s.triders.GetByID(ctx, id)
}

// Register validates and stores a trider.
func (s *TriderService) Register(ctx context.Context, t *domain.Trider) error {
	if t.ID == "" || t.Name == "" || t.TodaZoneID == "" {
		return fmt.Errorf("%w: trider id, name and zone are required", domain.ErrInvalidInput)
	}
	if err := t.Location.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if t.Status == "" {
		t.Status = domain.TriderOffline
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown trider status %q", domain.ErrInvalidInput, t.Status)
	}
	if _, err := s.zones.GetByID(ctx, t.TodaZoneID); err != nil {
		return fmt.Errorf("zone %s: %w", t.TodaZoneID, err)
	}
	t.UpdatedAt = s.now()
	return s.triders.Upsert(ctx, t)
}

// UpdateLocation stores a reported position and broadcasts it. The result
// says whether the trider is inside their zone.
func (s *TriderService) UpdateLocation(ctx context.Context, id string, loc domain.Coordinate) (*domain.TriderPosition, error) {
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	t, err := s.triders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	zone, err := s.zones.GetByID(ctx, t.TodaZoneID)
	if err != nil {
		return nil, fmt.Errorf("zone %s: %w", t.TodaZoneID, err)
	}

	if err := s.triders.UpdatePosition(ctx, id, loc, t.PathIndex, ""); err != nil {
		return nil, fmt.Errorf("update position: %w", err)
	}

	pos := &domain.TriderPosition{
		TriderID:   id,
		TodaZoneID: t.TodaZoneID,
		Location:   loc,
		Status:     t.Status,
		InZone:     zone.Geo().Contains(loc),
		At:         s.now(),
	}
	publishPosition(ctx, s.publisher, pos)
	return pos, nil
}

// SetStatus lets a trider go on or off duty. Triders on a ride cannot.
func (s *TriderService) SetStatus(ctx context.Context, id string, status domain.TriderStatus) (*domain.Trider, error) {
	if status != domain.TriderAvailable && status != domain.TriderOffline {
		return nil, fmt.Errorf("%w: status must be available or offline", domain.ErrInvalidInput)
	}

	t, err := s.triders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == domain.TriderAssigned || t.Status == domain.TriderBusy {
		return nil, fmt.Errorf("%w: trider %s is %s", domain.ErrInvalidTransition, id, t.Status)
	}

	// A dispatch may assign the trider after the read above.
	if err := s.triders.SetStatus(ctx, id, status, domain.TriderAvailable, domain.TriderOffline); err != nil {
		return nil, err
	}
	t.Status = status
	t.Path, t.PathIndex = nil, 0
	return t, nil
}

func publishPosition(ctx context.Context, pub ports.EventPublisher, pos *domain.TriderPosition) {
	if pub == nil {
		return
	}
	if err := pub.PublishTriderPosition(ctx, pos); err != nil {
		slog.Warn("publish trider position", "trider_id", pos.TriderID, "error", err)
	}
}

func publishRideEvent(ctx context.Context, pub ports.EventPublisher, typ domain.RideEventType, ride *domain.RideRequest, at time.Time) {
	if pub == nil {
		return
	}
	if err := pub.PublishRideEvent(ctx, &domain.RideEvent{Type: typ, Ride: *ride, At: at}); err != nil {
		slog.Warn("publish ride event", "ride_id", ride.ID, "type", typ, "error", err)
	}
}
