package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
	"github.com/samirrijal/trigo/internal/pkg/geospatial"
	"github.com/samirrijal/trigo/internal/pkg/metrics"
)

const (
	idleRoamFactor  = 0.95
	zoneResetFactor = 0.9
	spawnFactor     = 0.9
)

// StepReport summarises one simulation tick.
type StepReport struct {
	Advanced int `json:"advanced"`
	Roamed   int `json:"roamed"`
	Reset    int `json:"reset"`
	Skipped  int `json:"skipped"`
}

// SimulationService drives mock trider movement and ride demand for the
// dispatcher console.
type SimulationService struct {
	zones     ports.ZoneRepository
	triders   ports.TriderRepository
	rides     *RideService
	fares     *FareCalculator
	publisher ports.EventPublisher
	now       func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulationService creates a new SimulationService. A zero seed draws
// one from the process-wide source.
func NewSimulationService(
	zones ports.ZoneRepository,
	triders ports.TriderRepository,
	rides *RideService,
	fares *FareCalculator,
	publisher ports.EventPublisher,
	seed uint64,
) *SimulationService {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &SimulationService{
		zones:     zones,
		triders:   triders,
		rides:     rides,
		fares:     fares,
		publisher: publisher,
		now:       time.Now,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// StepTriders moves every trider that is not offline. Triders on a ride
// advance one vertex along their path. Idle triders roam inside their
// zone, and an idle trider found outside its zone is put back in it.
func (s *SimulationService) StepTriders(ctx context.Context) (StepReport, error) {
	var report StepReport

	zones, err := s.zoneMap(ctx)
	if err != nil {
		return report, err
	}
	triders, err := s.triders.List(ctx, ports.TriderFilter{})
	if err != nil {
		return report, fmt.Errorf("list triders: %w", err)
	}

	for i := range triders {
		t := &triders[i]
		if t.Status == domain.TriderOffline {
			continue
		}
		zone, ok := zones[t.TodaZoneID]
		if !ok {
			report.Skipped++
			continue
		}

		loc, idx := t.Location, t.PathIndex
		var counter *int
		switch {
		case (t.Status == domain.TriderAssigned || t.Status == domain.TriderBusy) && len(t.Path) > 0:
			idx = min(t.PathIndex+1, len(t.Path)-1)
			loc = t.Path[idx]
			counter = &report.Advanced
		case t.Status == domain.TriderAvailable:
			target := idleRoamFactor
			counter = &report.Roamed
			if !zone.Geo().Contains(t.Location) {
				target = zoneResetFactor
				counter = &report.Reset
			}
			p, err := s.randomPoint(zone.Geo().Scaled(target))
			if err != nil {
				return report, fmt.Errorf("trider %s: %w", t.ID, err)
			}
			loc, idx = p, 0
		default:
			report.Skipped++
			continue
		}

		// The listing is a snapshot; a trider dispatched since keeps its new state.
		if err := s.triders.UpdatePosition(ctx, t.ID, loc, idx, t.Status); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				report.Skipped++
				continue
			}
			return report, fmt.Errorf("update trider %s: %w", t.ID, err)
		}
		*counter++
		publishPosition(ctx, s.publisher, &domain.TriderPosition{
			TriderID:   t.ID,
			TodaZoneID: t.TodaZoneID,
			Location:   loc,
			Status:     t.Status,
			InZone:     zone.Geo().Contains(loc),
			At:         s.now(),
		})
	}

	metrics.SimulationTicks.WithLabelValues("triders").Inc()
	return report, nil
}

// SpawnRide creates a random pending ride: the pickup inside one zone and
// the dropoff inside a different one.
func (s *SimulationService) SpawnRide(ctx context.Context) (*domain.RideRequest, error) {
	zones, err := s.zones.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	if len(zones) == 0 {
		return nil, fmt.Errorf("%w: no zones to spawn rides in", domain.ErrUnserviceable)
	}

	s.mu.Lock()
	pi := s.rng.IntN(len(zones))
	di := s.rng.IntN(len(zones))
	passenger := s.rng.IntN(1000)
	s.mu.Unlock()
	if len(zones) > 1 && di == pi {
		di = (pi + 1) % len(zones)
	}
	pickupZone, dropoffZone := &zones[pi], &zones[di]

	pickup, err := s.randomPoint(pickupZone.Geo().Scaled(spawnFactor))
	if err != nil {
		return nil, fmt.Errorf("pickup in zone %s: %w", pickupZone.ID, err)
	}
	dropoff, err := s.randomPoint(dropoffZone.Geo().Scaled(spawnFactor))
	if err != nil {
		return nil, fmt.Errorf("dropoff in zone %s: %w", dropoffZone.ID, err)
	}

	ticket, err := generateTicketID()
	if err != nil {
		return nil, fmt.Errorf("generate ticket: %w", err)
	}

	distance := geospatial.Distance(pickup, dropoff)
	now := s.now()
	ride := &domain.RideRequest{
		ID:             newID(),
		TicketID:       ticket,
		PassengerID:    fmt.Sprintf("sim-passenger-%d", passenger),
		PassengerName:  fmt.Sprintf("Passenger %d", passenger),
		Pickup:         pickup,
		Dropoff:        dropoff,
		PickupAddress:  pickupZone.AreaOfOperation + " vicinity",
		DropoffAddress: dropoffZone.AreaOfOperation + " vicinity",
		Status:         domain.RidePending,
		Fare:           s.fares.SimulatedFare(distance, pickupZone),
		DistanceKm:     distance,
		PaymentMethod:  domain.PaymentCash,
		PaymentStatus:  domain.PaymentStatusUnpaid,
		PickupZoneID:   pickupZone.ID,
		RequestedAt:    now,
		UpdatedAt:      now,
	}

	created, err := s.rides.create(ctx, ride)
	if err != nil {
		return nil, err
	}
	metrics.SimulationTicks.WithLabelValues("rides").Inc()
	slog.Debug("spawned ride", "ride_id", created.ID, "zone", pickupZone.Name, "fare", created.Fare)
	return created, nil
}

func (s *SimulationService) randomPoint(z geospatial.Zone) (domain.Coordinate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return z.RandomPoint(s.rng)
}

func (s *SimulationService) zoneMap(ctx context.Context) (map[string]domain.TodaZone, error) {
	zones, err := s.zones.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	out := make(map[string]domain.TodaZone, len(zones))
	for _, z := range zones {
		out[z.ID] = z
	}
	return out, nil
}
