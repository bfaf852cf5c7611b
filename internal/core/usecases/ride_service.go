package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
	"github.com/samirrijal/trigo/internal/pkg/geospatial"
	"github.com/samirrijal/trigo/internal/pkg/metrics"
)

// DefaultPathStepKm is the spacing of simulated movement path vertices.
const DefaultPathStepKm = 0.05

var tracer = otel.Tracer("github.com/samirrijal/trigo/internal/core/usecases")

// RideInput is a passenger's booking request.
type RideInput struct {
	PassengerID    string               `json:"passenger_id"`
	PassengerName  string               `json:"passenger_name"`
	Pickup         domain.Coordinate    `json:"pickup"`
	Dropoff        domain.Coordinate    `json:"dropoff"`
	PickupAddress  string               `json:"pickup_address"`
	DropoffAddress string               `json:"dropoff_address"`
	PaymentMethod  domain.PaymentMethod `json:"payment_method"`
}

// Candidate is a trider eligible for a ride.
type Candidate struct {
	Trider     domain.Trider `json:"trider"`
	DistanceKm float64       `json:"distance_km"`
}

// RideService handles the ride lifecycle from request to completion.
type RideService struct {
	rides      ports.RideRepository
	triders    ports.TriderRepository
	zones      *ZoneService
	fares      *FareCalculator
	publisher  ports.EventPublisher
	pathStepKm float64
	now        func() time.Time
}

// NewRideService creates a new RideService.
func NewRideService(
	rides ports.RideRepository,
	triders ports.TriderRepository,
	zones *ZoneService,
	fares *FareCalculator,
	publisher ports.EventPublisher,
) *RideService {
	return &RideService{
		rides:      rides,
		triders:    triders,
		zones:      zones,
		fares:      fares,
		publisher:  publisher,
		pathStepKm: DefaultPathStepKm,
		now:        time.Now,
	}
}

// Request validates and stores a new pending ride.
func (s *RideService) Request(ctx context.Context, in RideInput) (*domain.RideRequest, error) {
	if strings.TrimSpace(in.PassengerID) == "" {
		return nil, fmt.Errorf("%w: passenger_id is required", domain.ErrInvalidInput)
	}
	for name, c := range map[string]domain.Coordinate{"pickup": in.Pickup, "dropoff": in.Dropoff} {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, name, err)
		}
	}
	switch in.PaymentMethod {
	case "":
		in.PaymentMethod = domain.PaymentCash
	case domain.PaymentCash, domain.PaymentWallet:
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidInput, in.PaymentMethod)
	}

	zone, err := s.zones.Locate(ctx, in.Pickup)
	if err != nil {
		return nil, err
	}

	ticket, err := generateTicketID()
	if err != nil {
		return nil, fmt.Errorf("generate ticket: %w", err)
	}

	distance := geospatial.Distance(in.Pickup, in.Dropoff)
	now := s.now()
	ride := &domain.RideRequest{
		ID:             newID(),
		TicketID:       ticket,
		PassengerID:    in.PassengerID,
		PassengerName:  in.PassengerName,
		Pickup:         in.Pickup,
		Dropoff:        in.Dropoff,
		PickupAddress:  in.PickupAddress,
		DropoffAddress: in.DropoffAddress,
		Status:         domain.RidePending,
		Fare:           s.fares.Quote(distance, zone).Total,
		DistanceKm:     distance,
		PaymentMethod:  in.PaymentMethod,
		PaymentStatus:  domain.PaymentStatusUnpaid,
		PickupZoneID:   zone.ID,
		RequestedAt:    now,
		UpdatedAt:      now,
	}
	return s.create(ctx, ride)
}

func (s *RideService) create(ctx context.Context, ride *domain.RideRequest) (*domain.RideRequest, error) {
	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, fmt.Errorf("create ride: %w", err)
	}
	metrics.RidesRequested.WithLabelValues(ride.PickupZoneID).Inc()
	publishRideEvent(ctx, s.publisher, domain.RideEventRequested, ride, ride.RequestedAt)
	return ride, nil
}

// GetByID returns a single ride.
func (s *RideService) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
	return s.rides.GetByID(ctx, id)
}

// List returns a page of rides and the total match count.
func (s *RideService) List(ctx context.Context, filter ports.RideFilter) ([]domain.RideRequest, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.rides.List(ctx, filter)
}

// Candidates returns available triders of the pickup zone, nearest first.
func (s *RideService) Candidates(ctx context.Context, rideID string) ([]Candidate, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	return s.candidates(ctx, ride)
}

func (s *RideService) candidates(ctx context.Context, ride *domain.RideRequest) ([]Candidate, error) {
	triders, err := s.triders.List(ctx, ports.TriderFilter{ZoneID: ride.PickupZoneID, Status: domain.TriderAvailable})
	if err != nil {
		return nil, fmt.Errorf("list triders: %w", err)
	}

	out := make([]Candidate, 0, len(triders))
	for _, t := range triders {
		out = append(out, Candidate{Trider: t, DistanceKm: geospatial.Distance(t.Location, ride.Pickup)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}

// Dispatch assigns a trider to a pending ride. An empty triderID picks the
// nearest available trider of the pickup zone.
func (s *RideService) Dispatch(ctx context.Context, rideID, triderID string) (_ *domain.RideRequest, err error) {
	ctx, span := tracer.Start(ctx, "RideService.Dispatch")
	span.SetAttributes(attribute.String("ride.id", rideID), attribute.String("trider.id", triderID))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.DispatchFailures.WithLabelValues(dispatchFailureReason(err)).Inc()
		}
		span.End()
	}()

	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RidePending {
		return nil, fmt.Errorf("%w: ride %s is %s", domain.ErrInvalidTransition, rideID, ride.Status)
	}
	if _, err := s.zones.GetByID(ctx, ride.PickupZoneID); err != nil {
		return nil, fmt.Errorf("pickup zone %s: %w", ride.PickupZoneID, err)
	}

	var trider *domain.Trider
	if triderID == "" {
		cands, err := s.candidates(ctx, ride)
		if err != nil {
			return nil, err
		}
		if len(cands) == 0 {
			return nil, fmt.Errorf("%w: no available trider in zone %s", domain.ErrTriderUnavailable, ride.PickupZoneID)
		}
		trider = &cands[0].Trider
	} else {
		trider, err = s.triders.GetByID(ctx, triderID)
		if err != nil {
			return nil, err
		}
	}
	span.SetAttributes(attribute.String("trider.id", trider.ID))

	if trider.Status != domain.TriderAvailable {
		return nil, fmt.Errorf("%w: trider %s is %s", domain.ErrTriderUnavailable, trider.ID, trider.Status)
	}
	if trider.TodaZoneID != ride.PickupZoneID {
		return nil, fmt.Errorf("%w: trider zone %s, pickup zone %s", domain.ErrZoneMismatch, trider.TodaZoneID, ride.PickupZoneID)
	}

	path, err := geospatial.LinePath([]domain.Coordinate{trider.Location, ride.Pickup, ride.Dropoff}, s.pathStepKm)
	if err != nil {
		return nil, fmt.Errorf("build path: %w", err)
	}

	assigned, err := s.rides.AssignTrider(ctx, ride.ID, trider.ID, path)
	if err != nil {
		return nil, fmt.Errorf("assign trider: %w", err)
	}

	metrics.RidesDispatched.WithLabelValues(ride.PickupZoneID).Inc()
	publishRideEvent(ctx, s.publisher, domain.RideEventAssigned, assigned, s.now())
	return assigned, nil
}

// Start marks the passenger as picked up.
func (s *RideService) Start(ctx context.Context, rideID string) (*domain.RideRequest, error) {
	ride, err := s.transition(ctx, rideID, domain.RideInProgress)
	if err != nil {
		return nil, err
	}
	if err := s.triders.SetStatus(ctx, ride.AssignedTriderID, domain.TriderBusy); err != nil {
		return nil, fmt.Errorf("set trider busy: %w", err)
	}
	publishRideEvent(ctx, s.publisher, domain.RideEventStarted, ride, s.now())
	return ride, nil
}

// Complete ends the ride and frees the trider. Wallet rides are settled
// by whoever consumes the completed event.
func (s *RideService) Complete(ctx context.Context, rideID string) (*domain.RideRequest, error) {
	ride, err := s.transition(ctx, rideID, domain.RideCompleted)
	if err != nil {
		return nil, err
	}
	if err := s.triders.SetStatus(ctx, ride.AssignedTriderID, domain.TriderAvailable); err != nil {
		return nil, fmt.Errorf("release trider: %w", err)
	}
	metrics.RidesCompleted.WithLabelValues(ride.PickupZoneID, string(ride.PaymentMethod)).Inc()
	publishRideEvent(ctx, s.publisher, domain.RideEventCompleted, ride, s.now())
	return ride, nil
}

// Cancel abandons a pending or assigned ride.
func (s *RideService) Cancel(ctx context.Context, rideID string) (*domain.RideRequest, error) {
	ride, err := s.transition(ctx, rideID, domain.RideCancelled)
	if err != nil {
		return nil, err
	}
	if ride.AssignedTriderID != "" {
		if err := s.triders.SetStatus(ctx, ride.AssignedTriderID, domain.TriderAvailable); err != nil {
			return nil, fmt.Errorf("release trider: %w", err)
		}
	}
	publishRideEvent(ctx, s.publisher, domain.RideEventCancelled, ride, s.now())
	return ride, nil
}

// MarkPaid records that the fare was settled. Repeated calls are no-ops.
func (s *RideService) MarkPaid(ctx context.Context, rideID string) error {
	if _, err := s.rides.MarkPaid(ctx, rideID); err != nil {
		return fmt.Errorf("mark ride %s paid: %w", rideID, err)
	}
	return nil
}

func (s *RideService) transition(ctx context.Context, rideID string, to domain.RideStatus) (*domain.RideRequest, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !ride.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, ride.Status, to)
	}
	updated, err := s.rides.Transition(ctx, rideID, ride.Status, to)
	if err != nil {
		return nil, fmt.Errorf("ride %s %s -> %s: %w", rideID, ride.Status, to, err)
	}
	return updated, nil
}

func dispatchFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "ride_not_pending"
	case errors.Is(err, domain.ErrTriderUnavailable):
		return "trider_unavailable"
	case errors.Is(err, domain.ErrZoneMismatch):
		return "zone_mismatch"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
