package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
)

// TriderRepo implements ports.TriderRepository with pgx.
type TriderRepo struct {
	db *DB
}

// NewTriderRepo creates a new TriderRepo.
func NewTriderRepo(db *DB) *TriderRepo {
	return &TriderRepo{db: db}
}

const triderColumns = `
	t.id, t.name,
	ST_Y(t.location::geometry) AS lat, ST_X(t.location::geometry) AS lon,
	t.status, t.vehicle_type, t.toda_zone_id, z.name,
	COALESCE(t.path, '[]'::jsonb), t.path_index, t.updated_at`

func scanTrider(row rowScanner, t *domain.Trider) error {
	return row.Scan(&t.ID, &t.Name,
		&t.Location.Latitude, &t.Location.Longitude,
		&t.Status, &t.VehicleType, &t.TodaZoneID, &t.TodaZoneName,
		&t.Path, &t.PathIndex, &t.UpdatedAt)
}

// Upsert inserts or updates a trider. Path progress is left untouched on update.
func (r *TriderRepo) Upsert(ctx context.Context, t *domain.Trider) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO triders (id, name, location, status, vehicle_type, toda_zone_id)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, location = EXCLUDED.location, status = EXCLUDED.status,
		    vehicle_type = EXCLUDED.vehicle_type, toda_zone_id = EXCLUDED.toda_zone_id,
		    updated_at = now()
	`, t.ID, t.Name, t.Location.Longitude, t.Location.Latitude, t.Status, t.VehicleType, t.TodaZoneID)
	return err
}

// GetByID returns a trider with its zone name.
func (r *TriderRepo) GetByID(ctx context.Context, id string) (*domain.Trider, error) {
	var t domain.Trider
	err := scanTrider(r.db.Pool.QueryRow(ctx, `
		SELECT `+triderColumns+`
		FROM triders t JOIN toda_zones z ON z.id = t.toda_zone_id
		WHERE t.id = $1
	`, id), &t)
	if err != nil {
		return nil, notFound(err, "trider", id)
	}
	return &t, nil
}

// List returns triders matching filter ordered by id.
func (r *TriderRepo) List(ctx context.Context, filter ports.TriderFilter) ([]domain.Trider, error) {
	var (
		where []string
		args  []any
	)
	if filter.ZoneID != "" {
		args = append(args, filter.ZoneID)
		where = append(where, fmt.Sprintf("t.toda_zone_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("t.status = $%d", len(args)))
	}

	q := `SELECT ` + triderColumns + ` FROM triders t JOIN toda_zones z ON z.id = t.toda_zone_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY t.id"

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var triders []domain.Trider
	for rows.Next() {
		var t domain.Trider
		if err := scanTrider(rows, &t); err != nil {
			return nil, err
		}
		triders = append(triders, t)
	}
	return triders, rows.Err()
}

// UpdatePosition stores a new location and path progress, optionally only
// while the trider still has the expected status.
func (r *TriderRepo) UpdatePosition(ctx context.Context, id string, loc domain.Coordinate, pathIndex int, expect domain.TriderStatus) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE triders
		SET location = ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography,
		    path_index = $4, updated_at = now()
		WHERE id = $1 AND ($5::text = '' OR status = $5::text)
	`, id, loc.Longitude, loc.Latitude, pathIndex, string(expect))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missedWrite(ctx, id)
	}
	return nil
}

// SetStatus changes the status, clearing the path when the trider is released.
// A non-empty from restricts the write to triders currently in one of those statuses.
func (r *TriderRepo) SetStatus(ctx context.Context, id string, status domain.TriderStatus, from ...domain.TriderStatus) error {
	var allowed []string
	for _, s := range from {
		allowed = append(allowed, string(s))
	}
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE triders
		SET status = $2,
		    path = CASE WHEN $2 IN ('available', 'offline') THEN NULL ELSE path END,
		    path_index = CASE WHEN $2 IN ('available', 'offline') THEN 0 ELSE path_index END,
		    updated_at = now()
		WHERE id = $1 AND ($3::text[] IS NULL OR status = ANY($3::text[]))
	`, id, string(status), allowed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missedWrite(ctx, id)
	}
	return nil
}

// missedWrite tells a missing trider apart from a lost status race.
func (r *TriderRepo) missedWrite(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM triders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("trider %s: %w", id, domain.ErrNotFound)
	}
	return fmt.Errorf("trider %s changed status: %w", id, domain.ErrConflict)
}
