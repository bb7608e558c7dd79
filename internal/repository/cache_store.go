package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/geocheck/internal/cache"
)

const createSchemaQuery = `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address           TEXT PRIMARY KEY,
		cache_version     INTEGER NOT NULL,
		status            TEXT NOT NULL,
		formatted_address TEXT,
		latitude          DOUBLE PRECISION,
		longitude         DOUBLE PRECISION,
		result_count      INTEGER NOT NULL DEFAULT 0,
		partial_match     BOOLEAN NOT NULL DEFAULT false,
		location_type     TEXT,
		error_message     TEXT,
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

const loadEntriesQuery = `
	SELECT address, status, formatted_address, latitude, longitude,
		result_count, partial_match, location_type, error_message
	FROM geocode_cache
	WHERE cache_version = $1;
`

const upsertEntryQuery = `
	INSERT INTO geocode_cache (
		address, cache_version, status, formatted_address, latitude, longitude,
		result_count, partial_match, location_type, error_message, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
	ON CONFLICT (address) DO UPDATE SET
		cache_version = EXCLUDED.cache_version,
		status = EXCLUDED.status,
		formatted_address = EXCLUDED.formatted_address,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		result_count = EXCLUDED.result_count,
		partial_match = EXCLUDED.partial_match,
		location_type = EXCLUDED.location_type,
		error_message = EXCLUDED.error_message,
		updated_at = now();
`

// CreateSchema creates the geocode_cache table when it does not exist yet.
func (r *Repository) CreateSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createSchemaQuery); err != nil {
		return fmt.Errorf("failed to create geocode cache table: %w", err)
	}

	return nil
}

// Load reads every entry written with the current cache version.
// Rows written by other versions are ignored.
func (r *Repository) Load(ctx context.Context) (*cache.Cache, error) {
	rows, err := r.db.Query(ctx, loadEntriesQuery, cache.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to query geocode cache: %w", err)
	}
	defer rows.Close()

	c := cache.New()
	for rows.Next() {
		var (
			address string
			entry   cache.Entry
		)
		if errScan := rows.Scan(
			&address, &entry.Status, &entry.FormattedAddress, &entry.Latitude, &entry.Longitude,
			&entry.ResultCount, &entry.PartialMatch, &entry.LocationType, &entry.ErrorMessage,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan geocode cache entry: %w", errScan)
		}
		c.Restore(address, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Geocode cache entries loaded from database", "count", c.Len())

	return c, nil
}

// Save upserts the entries added or replaced since the cache was loaded, in one transaction.
func (r *Repository) Save(ctx context.Context, c *cache.Cache) error {
	changed := c.Changed()
	if len(changed) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for address, entry := range changed {
		_, err = tx.Exec(ctx, upsertEntryQuery,
			address, cache.Version, entry.Status, entry.FormattedAddress, entry.Latitude, entry.Longitude,
			entry.ResultCount, entry.PartialMatch, entry.LocationType, entry.ErrorMessage,
		)
		if err != nil {
			return errors.Join(
				fmt.Errorf("failed to upsert geocode cache entry: %w", err),
				tx.Rollback(ctx),
			)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit geocode cache: %w", err)
	}

	r.log.DebugContext(ctx, "Geocode cache entries saved to database", "count", len(changed))

	return nil
}
