package postgres

import (
	"context"

	"github.com/samirrijal/trigo/internal/core/domain"
)

// ZoneRepo implements ports.ZoneRepository with pgx.
type ZoneRepo struct {
	db *DB
}

// NewZoneRepo creates a new ZoneRepo.
func NewZoneRepo(db *DB) *ZoneRepo {
	return &ZoneRepo{db: db}
}

const zoneColumns = `
	id, name, area_of_operation,
	ST_Y(center::geometry) AS lat, ST_X(center::geometry) AS lon,
	radius_km, base_fare::float8, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(row rowScanner, z *domain.TodaZone) error {
	return row.Scan(&z.ID, &z.Name, &z.AreaOfOperation,
		&z.Center.Latitude, &z.Center.Longitude,
		&z.RadiusKm, &z.BaseFare, &z.CreatedAt)
}

// Upsert inserts or updates a zone.
func (r *ZoneRepo) Upsert(ctx context.Context, z *domain.TodaZone) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO toda_zones (id, name, area_of_operation, center, radius_km, base_fare)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, area_of_operation = EXCLUDED.area_of_operation,
		    center = EXCLUDED.center, radius_km = EXCLUDED.radius_km,
		    base_fare = EXCLUDED.base_fare
	`, z.ID, z.Name, z.AreaOfOperation, z.Center.Longitude, z.Center.Latitude, z.RadiusKm, z.BaseFare)
	return err
}

// GetByID returns a zone by id.
func (r *ZoneRepo) GetByID(ctx context.Context, id string) (*domain.TodaZone, error) {
	var z domain.TodaZone
	err := scanZone(r.db.Pool.QueryRow(ctx, `SELECT `+zoneColumns+` FROM toda_zones WHERE id = $1`, id), &z)
	if err != nil {
		return nil, notFound(err, "zone", id)
	}
	return &z, nil
}

// List returns all zones ordered by id, numerically where ids are numbers.
func (r *ZoneRepo) List(ctx context.Context) ([]domain.TodaZone, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+zoneColumns+`
		FROM toda_zones
		ORDER BY length(id), id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []domain.TodaZone
	for rows.Next() {
		var z domain.TodaZone
		if err := scanZone(rows, &z); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}
