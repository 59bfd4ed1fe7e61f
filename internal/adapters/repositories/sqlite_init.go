package repositories

import (
	"context"
	"database/sql"
	"driver-route-planner/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	createLoadsQuery := `
	CREATE TABLE IF NOT EXISTS loads (
		load_id INTEGER PRIMARY KEY,
		pickup_x REAL NOT NULL,
		pickup_y REAL NOT NULL,
		dropoff_x REAL NOT NULL,
		dropoff_y REAL NOT NULL
	);
	`

	createSolutionCacheQuery := `
	CREATE TABLE IF NOT EXISTS solution_cache (
		cache_key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_solution_cache_expires_at
	ON solution_cache(expires_at);
	`

	return execSchema(db, []string{
		createLoadsQuery,
		createSolutionCacheQuery,
		createIndexQuery,
	})
}

func execSchema(db *sql.DB, statements []string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type LoadSeed struct {
	LoadID  int    `json:"load_id"`
	Pickup  string `json:"pickup"`
	Dropoff string `json:"dropoff"`
}

// Read and validate a JSON array of LoadSeed.
func ReadSeedJSON(jsonPath string) ([]domain.Load, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed loads: read %q: %w", jsonPath, err)
	}

	var data []LoadSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed loads: parse json: %w", err)
	}

	loads := make([]domain.Load, 0, len(data))
	for i, item := range data {
		if item.LoadID <= 0 {
			return nil, fmt.Errorf("seed loads: invalid load_id at index %d: %d", i+1, item.LoadID)
		}

		pickup, err := domain.ParsePoint(item.Pickup)
		if err != nil {
			return nil, fmt.Errorf("seed loads: item pickup at index %d: %w", i+1, err)
		}
		dropoff, err := domain.ParsePoint(item.Dropoff)
		if err != nil {
			return nil, fmt.Errorf("seed loads: item dropoff at index %d: %w", i+1, err)
		}

		loads = append(loads, domain.Load{ID: item.LoadID, Pickup: pickup, Dropoff: dropoff})
	}

	if err := domain.ValidateLoads(loads); err != nil {
		return nil, fmt.Errorf("seed loads: %w", err)
	}

	return loads, nil
}

// Insert or replace loads in the SQLite loads table.
func SeedLoads(ctx context.Context, db *sql.DB, loads []domain.Load) error {
	query := `
	INSERT OR REPLACE INTO loads (
		load_id,
		pickup_x,
		pickup_y,
		dropoff_x,
		dropoff_y
	)
	VALUES (?, ?, ?, ?, ?);
	`
	return seed(ctx, db, query, loads)
}

func seed(ctx context.Context, db *sql.DB, query string, loads []domain.Load) error {
	if db == nil {
		return errors.New("seed loads: DB is nil")
	}
	if err := domain.ValidateLoads(loads); err != nil {
		return fmt.Errorf("seed loads: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed loads: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed loads: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range loads {
		if _, err := stmt.ExecContext(ctx, l.ID, l.Pickup.X, l.Pickup.Y, l.Dropoff.X, l.Dropoff.Y); err != nil {
			return fmt.Errorf("seed loads: insert load_id=%d: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed loads: commit tx: %w", err)
	}

	return nil
}
