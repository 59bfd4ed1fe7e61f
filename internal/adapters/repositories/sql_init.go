package repositories

import (
	"context"
	"database/sql"
	"driver-route-planner/internal/domain"
	"errors"
)

// Initialize the Postgres database schema.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	createLoadsQuery := `
	CREATE TABLE IF NOT EXISTS loads (
		load_id BIGINT PRIMARY KEY,
		pickup_x DOUBLE PRECISION NOT NULL,
		pickup_y DOUBLE PRECISION NOT NULL,
		dropoff_x DOUBLE PRECISION NOT NULL,
		dropoff_y DOUBLE PRECISION NOT NULL
	);
	`

	return execSchema(db, []string{createLoadsQuery})
}

// Upsert loads into the Postgres loads table.
func SeedLoadsPostgres(ctx context.Context, db *sql.DB, loads []domain.Load) error {
	query := `
	INSERT INTO loads (
		load_id,
		pickup_x,
		pickup_y,
		dropoff_x,
		dropoff_y
	)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (load_id) DO UPDATE SET
		pickup_x = EXCLUDED.pickup_x,
		pickup_y = EXCLUDED.pickup_y,
		dropoff_x = EXCLUDED.dropoff_x,
		dropoff_y = EXCLUDED.dropoff_y;
	`
	return seed(ctx, db, query, loads)
}
