package services

import (
	"cmp"
	"context"
	"driver-route-planner/internal/domain"
	"driver-route-planner/internal/platform/obs"
	"fmt"
	"slices"
	"time"
)

// NearestNeighbor builds routes one at a time, always driving to the
// unassigned load whose pickup is closest to the current position.
//
// By default a route is extended while its time stays <= MaxTime, and the
// whole construction stops as soon as a fresh route cannot take its first
// candidate. StrictBudget and SkipUnroutable change those two rules.
type NearestNeighbor struct {
	Params domain.Params
	// Extend routes only while time < MaxTime, so every route is valid.
	StrictBudget bool
	// Set aside a load that does not fit an empty route and keep going.
	SkipUnroutable bool
}

func NewNearestNeighbor(params domain.Params) *NearestNeighbor {
	return &NearestNeighbor{Params: params}
}

func (nn *NearestNeighbor) Name() string { return EngineGreedy }

// Unassigned loads, held as input indices in ascending load id order.
// A loadSet is owned by exactly one construction at a time.
type loadSet struct {
	members []int
}

func newLoadSet(loads []domain.Load) loadSet {
	members := make([]int, len(loads))
	for i := range loads {
		members[i] = i
	}
	slices.SortFunc(members, func(a, b int) int { return cmp.Compare(loads[a].ID, loads[b].ID) })
	return loadSet{members: members}
}

func (s loadSet) Len() int { return len(s.members) }

// Return the member whose pickup is nearest to the dropoff of prev (or the
// depot when prev < 0). Members are id ordered, so the first minimum found
// is the one with the lowest id.
func (s loadSet) nearest(t *distanceTable, prev int) int {
	best := -1
	bestDist := 0.0
	for _, m := range s.members {
		d := t.approach(prev, m)
		if best < 0 || d < bestDist {
			best, bestDist = m, d
		}
	}
	return best
}

func (s loadSet) without(idx int) loadSet {
	members := make([]int, 0, len(s.members))
	for _, m := range s.members {
		if m != idx {
			members = append(members, m)
		}
	}
	return loadSet{members: members}
}

// Build one route from remaining and return it along with what is left.
func (nn *NearestNeighbor) buildRoute(t *distanceTable, remaining loadSet) ([]int, float64, loadSet) {
	route := make([]int, 0, remaining.Len())
	open := 0.0
	closed := 0.0
	prev := -1

	for remaining.Len() > 0 {
		next := remaining.nearest(t, prev)
		candOpen := open + t.approach(prev, next) + t.length[next]
		candClosed := candOpen + t.toDepot[next]

		if !nn.fits(candClosed) {
			break
		}

		route = append(route, next)
		open, closed, prev = candOpen, candClosed, next
		remaining = remaining.without(next)
	}

	return route, closed, remaining
}

func (nn *NearestNeighbor) fits(routeTime float64) bool {
	if nn.StrictBudget {
		return routeTime < nn.Params.MaxTime
	}
	return routeTime <= nn.Params.MaxTime
}

// Solve never fails on unroutable loads; they are reported in
// Result.Unassigned with StatusPartial.
func (nn *NearestNeighbor) Solve(ctx context.Context, loads []domain.Load) (_ *Result, err error) {
	defer obs.Time(ctx, "nearest_neighbor")(&err)

	if err := nn.Params.Validate(); err != nil {
		return nil, fmt.Errorf("nearest neighbor: %w", err)
	}
	if err := domain.ValidateLoads(loads); err != nil {
		return nil, fmt.Errorf("nearest neighbor: %w", err)
	}

	start := time.Now()
	table := newDistanceTable(nn.Params.Depot, loads)

	remaining := newLoadSet(loads)
	var residual []int
	var routes []domain.Route
	var warnings []string

	for remaining.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("nearest neighbor: %w", err)
		}

		var idx []int
		var routeTime float64
		idx, routeTime, remaining = nn.buildRoute(table, remaining)

		if len(idx) == 0 {
			blocked := remaining.nearest(table, -1)
			if !nn.SkipUnroutable {
				warnings = append(warnings, fmt.Sprintf(
					"load %d does not fit an empty route (round trip %.2f, max time %.2f); construction stopped",
					loads[blocked].ID, table.roundTrip(blocked), nn.Params.MaxTime,
				))
				break
			}
			warnings = append(warnings, fmt.Sprintf(
				"load %d does not fit an empty route (round trip %.2f, max time %.2f); skipped",
				loads[blocked].ID, table.roundTrip(blocked), nn.Params.MaxTime,
			))
			residual = append(residual, blocked)
			remaining = remaining.without(blocked)
			continue
		}

		routeLoads := make([]domain.Load, len(idx))
		for i, k := range idx {
			routeLoads[i] = loads[k]
		}
		r := domain.NewRoute(nn.Params, routeLoads)
		if !r.Valid {
			warnings = append(warnings, fmt.Sprintf(
				"route %s time %.2f reaches max time %.2f and is not valid",
				r, routeTime, nn.Params.MaxTime,
			))
		}
		routes = append(routes, r)
	}

	residual = append(residual, remaining.members...)
	slices.SortFunc(residual, func(a, b int) int { return cmp.Compare(loads[a].ID, loads[b].ID) })

	res := &Result{
		Engine:      nn.Name(),
		Solution:    domain.NewSolution(nn.Params, routes),
		HasSolution: true,
		Warnings:    warnings,
		Elapsed:     time.Since(start),
		Status:      StatusComplete,
	}
	if len(residual) > 0 {
		res.Status = StatusPartial
		res.Unassigned = make([]domain.Load, len(residual))
		for i, k := range residual {
			res.Unassigned[i] = loads[k]
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%d of %d loads left unassigned: %v", len(residual), len(loads), res.UnassignedIDs(),
		))
	}

	return res, nil
}
