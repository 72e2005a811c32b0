package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/ports"
)

// BinRepo implements ports.BinRepository with pgx and PostGIS.
type BinRepo struct {
	db *DB
}

// NewBinRepo creates a new BinRepo.
func NewBinRepo(db *DB) *BinRepo {
	return &BinRepo{db: db}
}

const binColumns = `
	id, name, area, city, pincode, address,
	ST_Y(location::geometry) AS lat,
	ST_X(location::geometry) AS lng,
	accepted_items, operating_hours, contact, status`

func scanBin(row pgx.Row, extra ...any) (domain.Bin, error) {
	var b domain.Bin
	var status string
	dest := []any{
		&b.ID, &b.Name, &b.Area, &b.City, &b.Pincode, &b.Address,
		&b.Lat, &b.Lng, &b.AcceptedItems, &b.OperatingHours, &b.Contact, &status,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return b, err
	}
	b.Status = domain.BinStatus(status)
	if b.AcceptedItems == nil {
		b.AcceptedItems = []string{}
	}
	return b, nil
}

// List returns every bin in catalog order.
func (r *BinRepo) List(ctx context.Context) ([]domain.Bin, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+binColumns+` FROM bins ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bins := make([]domain.Bin, 0)
	for rows.Next() {
		b, err := scanBin(rows)
		if err != nil {
			return nil, err
		}
		bins = append(bins, b)
	}
	return bins, rows.Err()
}

// GetByID returns a bin by id.
func (r *BinRepo) GetByID(ctx context.Context, id string) (*domain.Bin, error) {
	b, err := scanBin(r.db.Pool.QueryRow(ctx, `SELECT `+binColumns+` FROM bins WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindNearby returns bins within radiusMeters using PostGIS ST_DWithin.
func (r *BinRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Bin, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+binColumns+`,
		       ST_Distance(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) AS distance
		FROM bins
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY distance, position
		LIMIT $4
	`, lon, lat, radiusMeters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bins := make([]domain.Bin, 0)
	for rows.Next() {
		var dist float64
		b, err := scanBin(rows, &dist)
		if err != nil {
			return nil, err
		}
		b.Distance = &dist
		bins = append(bins, b)
	}
	return bins, rows.Err()
}

// UpsertBatch inserts or updates many bins using pgx.Batch. Slice order
// becomes catalog order for newly inserted and updated rows alike.
func (r *BinRepo) UpsertBatch(ctx context.Context, bins []domain.Bin) error {
	batch := &pgx.Batch{}
	for i, b := range bins {
		status := b.Status
		if status == "" {
			status = domain.BinStatusActive
		}
		items := b.AcceptedItems
		if items == nil {
			items = []string{}
		}
		batch.Queue(`
			INSERT INTO bins (id, position, name, area, city, pincode, address, location,
			                  accepted_items, operating_hours, contact, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, ST_SetSRID(ST_MakePoint($8, $9), 4326)::geography,
			        $10, $11, $12, $13)
			ON CONFLICT (id) DO UPDATE
			SET position = EXCLUDED.position, name = EXCLUDED.name, area = EXCLUDED.area,
			    city = EXCLUDED.city, pincode = EXCLUDED.pincode, address = EXCLUDED.address,
			    location = EXCLUDED.location, accepted_items = EXCLUDED.accepted_items,
			    operating_hours = EXCLUDED.operating_hours, contact = EXCLUDED.contact,
			    status = EXCLUDED.status, updated_at = now()
		`, b.ID, i, b.Name, b.Area, b.City, b.Pincode, b.Address, b.Lng, b.Lat,
			items, b.OperatingHours, b.Contact, string(status))
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range bins {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}
