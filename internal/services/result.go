package services

import (
	"context"
	"driver-route-planner/internal/domain"
	"errors"
	"time"
)

var (
	ErrNoFeasibleSolution = errors.New("services: no feasible solution")
	ErrInstanceTooLarge   = errors.New("services: instance too large for exact search")
	ErrUnknownEngine      = errors.New("services: unknown engine")
)

// Outcome of a solve.
type Status string

const (
	// Exact search proved the solution minimal.
	StatusOptimal Status = "optimal"
	// Greedy construction assigned every load.
	StatusComplete Status = "complete"
	// Greedy construction stopped with residual loads.
	StatusPartial Status = "partial"
	// No partition has all routes under the time budget.
	StatusInfeasible Status = "infeasible"
	// Search was cancelled; Solution is the best incumbent, if any.
	StatusInterrupted Status = "interrupted"
)

// Engine names accepted by the planner.
const (
	EngineAuto   = "auto"
	EngineExact  = "exact"
	EngineGreedy = "greedy"
)

// Result is what an engine returns.
// Solution is only meaningful when HasSolution is true.
type Result struct {
	RunID       string
	Engine      string
	Status      Status
	Solution    domain.Solution
	HasSolution bool
	Unassigned  []domain.Load
	Warnings    []string
	// Search nodes visited by the exact engine.
	Explored int64
	Elapsed  time.Duration
	Cached   bool
}

// UnassignedIDs returns the ids of residual loads.
func (r *Result) UnassignedIDs() []int {
	return domain.LoadIDs(r.Unassigned)
}

// Engine is implemented by ExactSearch and NearestNeighbor.
type Engine interface {
	Name() string
	Solve(ctx context.Context, loads []domain.Load) (*Result, error)
}
