package ports

import (
	"context"
	"driver-route-planner/internal/domain"
)

// Port: a boundary for retrieving Load entities from a data source.
type LoadRepository interface {
	// Retrieve all loads to be routed, ordered by load id.
	ListLoads(ctx context.Context) ([]domain.Load, error)
}
