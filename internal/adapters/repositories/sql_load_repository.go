package repositories

import (
	"context"
	"database/sql"
	"driver-route-planner/internal/domain"
	"errors"
)

// Postgres-backed implementation of the LoadRepository port.
// Expects a *sql.DB opened with the pgx stdlib driver.
type SQLLoadRepository struct{ DB *sql.DB }

func NewSQLLoadRepository(db *sql.DB) *SQLLoadRepository {
	return &SQLLoadRepository{DB: db}
}

func (s *SQLLoadRepository) ListLoads(ctx context.Context) ([]domain.Load, error) {
	if s.DB == nil {
		return nil, errors.New("sql load repository: DB is nil")
	}
	return listLoads(ctx, s.DB)
}
