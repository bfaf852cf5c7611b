package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
)

// RideRepo implements ports.RideRepository with pgx.
type RideRepo struct {
	db *DB
}

// NewRideRepo creates a new RideRepo.
func NewRideRepo(db *DB) *RideRepo {
	return &RideRepo{db: db}
}

const rideColumns = `
	id::text, ticket_id, passenger_id, passenger_name,
	ST_Y(pickup::geometry), ST_X(pickup::geometry),
	ST_Y(dropoff::geometry), ST_X(dropoff::geometry),
	pickup_address, dropoff_address, status, fare::float8, distance_km,
	payment_method, payment_status, COALESCE(assigned_trider_id, ''),
	pickup_zone_id, requested_at, updated_at`

func scanRide(row rowScanner, r *domain.RideRequest) error {
	return row.Scan(&r.ID, &r.TicketID, &r.PassengerID, &r.PassengerName,
		&r.Pickup.Latitude, &r.Pickup.Longitude,
		&r.Dropoff.Latitude, &r.Dropoff.Longitude,
		&r.PickupAddress, &r.DropoffAddress, &r.Status, &r.Fare, &r.DistanceKm,
		&r.PaymentMethod, &r.PaymentStatus, &r.AssignedTriderID,
		&r.PickupZoneID, &r.RequestedAt, &r.UpdatedAt)
}

// Create inserts a new ride request.
func (r *RideRepo) Create(ctx context.Context, ride *domain.RideRequest) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO ride_requests (
			id, ticket_id, passenger_id, passenger_name, pickup, dropoff,
			pickup_address, dropoff_address, status, fare, distance_km,
			payment_method, payment_status, pickup_zone_id, requested_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography,
			ST_SetSRID(ST_MakePoint($7, $8), 4326)::geography,
			$9, $10, $11, $12, $13, $14, $15, $16, $17, $17
		)
	`, ride.ID, ride.TicketID, ride.PassengerID, ride.PassengerName,
		ride.Pickup.Longitude, ride.Pickup.Latitude,
		ride.Dropoff.Longitude, ride.Dropoff.Latitude,
		ride.PickupAddress, ride.DropoffAddress, ride.Status, ride.Fare, ride.DistanceKm,
		ride.PaymentMethod, ride.PaymentStatus, ride.PickupZoneID, ride.RequestedAt)
	return err
}

// rideNotFound rejects ids that cannot be a ride's uuid key, so lookups
// bind $1::uuid and stay on the primary key index.
func rideNotFound(id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("ride %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetByID returns a ride by id.
func (r *RideRepo) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
	if err := rideNotFound(id); err != nil {
		return nil, err
	}
	var ride domain.RideRequest
	err := scanRide(r.db.Pool.QueryRow(ctx, `SELECT `+rideColumns+` FROM ride_requests WHERE id = $1::uuid`, id), &ride)
	if err != nil {
		return nil, notFound(err, "ride", id)
	}
	return &ride, nil
}

// List returns a page of rides, newest first, and the total match count.
func (r *RideRepo) List(ctx context.Context, filter ports.RideFilter) ([]domain.RideRequest, int, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.TriderID != "" {
		args = append(args, filter.TriderID)
		where = append(where, fmt.Sprintf("assigned_trider_id = $%d", len(args)))
	}
	if filter.PassengerID != "" {
		args = append(args, filter.PassengerID)
		where = append(where, fmt.Sprintf("passenger_id = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM ride_requests`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM ride_requests%s ORDER BY requested_at DESC, id LIMIT $%d OFFSET $%d`,
		rideColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rides []domain.RideRequest
	for rows.Next() {
		var ride domain.RideRequest
		if err := scanRide(rows, &ride); err != nil {
			return nil, 0, err
		}
		rides = append(rides, ride)
	}
	return rides, total, rows.Err()
}

// AssignTrider moves the ride and trider to assigned in one transaction.
func (r *RideRepo) AssignTrider(ctx context.Context, rideID, triderID string, path []domain.Coordinate) (*domain.RideRequest, error) {
	if err := rideNotFound(rideID); err != nil {
		return nil, err
	}
	var ride domain.RideRequest
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE triders
			SET status = 'assigned', path = $2, path_index = 0, updated_at = now()
			WHERE id = $1 AND status = 'available'
		`, triderID, path)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("trider %s not available: %w", triderID, domain.ErrConflict)
		}

		err = scanRide(tx.QueryRow(ctx, `
			UPDATE ride_requests
			SET status = 'assigned', assigned_trider_id = $2, updated_at = now()
			WHERE id = $1::uuid AND status = 'pending'
			RETURNING `+rideColumns, rideID, triderID), &ride)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("ride %s not pending: %w", rideID, domain.ErrConflict)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

// Transition moves a ride from one status to another.
func (r *RideRepo) Transition(ctx context.Context, id string, from, to domain.RideStatus) (*domain.RideRequest, error) {
	if err := rideNotFound(id); err != nil {
		return nil, err
	}
	var ride domain.RideRequest
	err := scanRide(r.db.Pool.QueryRow(ctx, `
		UPDATE ride_requests
		SET status = $3, updated_at = now()
		WHERE id = $1::uuid AND status = $2
		RETURNING `+rideColumns, id, string(from), string(to)), &ride)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ride %s not %s: %w", id, from, domain.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

// MarkPaid sets the payment status to paid.
func (r *RideRepo) MarkPaid(ctx context.Context, id string) (bool, error) {
	if err := rideNotFound(id); err != nil {
		return false, err
	}
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE ride_requests SET payment_status = 'paid', updated_at = now()
		WHERE id = $1::uuid AND payment_status = 'unpaid'
	`, id)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ride_requests WHERE id = $1::uuid)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("ride %s: %w", id, domain.ErrNotFound)
	}
	return false, nil
}
