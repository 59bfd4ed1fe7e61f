package repositories

import (
	"context"
	"database/sql"
	"driver-route-planner/internal/domain"
	"errors"
	"fmt"
)

// SQLite-backed implementation of the LoadRepository port.
type SqliteLoadRepository struct{ DB *sql.DB }

func NewSqliteLoadRepository(db *sql.DB) *SqliteLoadRepository {
	return &SqliteLoadRepository{DB: db}
}

// Return all loads stored in the database.
func (s *SqliteLoadRepository) ListLoads(ctx context.Context) ([]domain.Load, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite load repository: DB is nil")
	}
	return listLoads(ctx, s.DB)
}

func listLoads(ctx context.Context, db *sql.DB) ([]domain.Load, error) {
	query := `
	SELECT
		load_id,
		pickup_x,
		pickup_y,
		dropoff_x,
		dropoff_y
	FROM loads
	ORDER BY load_id;
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list loads: query loads table: %w", err)
	}
	defer rows.Close()

	loads := make([]domain.Load, 0, 64)
	for rows.Next() {
		var l domain.Load
		err := rows.Scan(&l.ID, &l.Pickup.X, &l.Pickup.Y, &l.Dropoff.X, &l.Dropoff.Y)
		if err != nil {
			return nil, fmt.Errorf("list loads: scan row: %w", err)
		}
		loads = append(loads, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list loads: row iteration: %w", err)
	}

	return loads, nil
}
