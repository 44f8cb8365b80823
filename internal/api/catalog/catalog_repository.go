// Package catalog persists aggregated places into Postgres so repeat
// searches and offline analysis do not depend on live provider calls.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// PGXPool is the slice of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PGXPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository interface {
	UpsertPlace(ctx context.Context, place types.Place) (uuid.UUID, error)
	CountBySource(ctx context.Context) (map[types.Source]int, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool PGXPool
}

func NewPostgresRepository(pgpool PGXPool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

// UpsertPlace inserts a place keyed by its provenance, refreshing the
// volatile fields when the same record is seen again.
func (r *PostgresRepository) UpsertPlace(ctx context.Context, place types.Place) (uuid.UUID, error) {
	query := `
        INSERT INTO places (
            source, source_id, name, category, latitude, longitude, address,
            rating, review_count, price_signal, capacity, cuisine, amenities,
            phone, website
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        ON CONFLICT (source, source_id) DO UPDATE SET
            name = EXCLUDED.name,
            latitude = EXCLUDED.latitude,
            longitude = EXCLUDED.longitude,
            address = COALESCE(EXCLUDED.address, places.address),
            rating = COALESCE(EXCLUDED.rating, places.rating),
            review_count = EXCLUDED.review_count,
            price_signal = COALESCE(EXCLUDED.price_signal, places.price_signal),
            capacity = COALESCE(EXCLUDED.capacity, places.capacity),
            cuisine = COALESCE(EXCLUDED.cuisine, places.cuisine),
            amenities = EXCLUDED.amenities,
            phone = COALESCE(EXCLUDED.phone, places.phone),
            website = COALESCE(EXCLUDED.website, places.website),
            last_synced_at = now()
        RETURNING id
    `
	var lat, lon *float64
	if place.Location != nil {
		lat = &place.Location.Latitude
		lon = &place.Location.Longitude
	}
	amenities := place.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	var id uuid.UUID
	if err := r.pgpool.QueryRow(ctx, query,
		place.Source, place.SourceID, place.Name, place.Category, lat, lon,
		place.Address, place.Rating, place.ReviewCount, place.PriceSignal,
		place.Capacity, place.Cuisine, amenities, place.Phone, place.Website,
	).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert place %s/%s: %w", place.Source, place.SourceID, err)
	}
	return id, nil
}

// CountBySource reports how many catalog rows each provider contributed.
func (r *PostgresRepository) CountBySource(ctx context.Context) (map[types.Source]int, error) {
	rows, err := r.pgpool.Query(ctx, `SELECT source, COUNT(*) FROM places GROUP BY source ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to count places by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.Source]int)
	for rows.Next() {
		var source types.Source
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		counts[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading source counts: %w", err)
	}
	return counts, nil
}
