package services

import (
	"driver-route-planner/internal/domain"
)

// Memoized travel times for a fixed load list and depot, indexed by
// position in the input slice. Values are computed with domain.Distance
// using the same argument order as domain.RouteTime, so sums built from
// the table in route order match domain.NewRoute exactly.
type distanceTable struct {
	fromDepot []float64   // depot -> pickup[i]
	length    []float64   // pickup[i] -> dropoff[i]
	toDepot   []float64   // dropoff[i] -> depot, 0 when dropoff[i] is the depot
	hop       [][]float64 // dropoff[i] -> pickup[j]
}

func newDistanceTable(depot domain.Point, loads []domain.Load) *distanceTable {
	n := len(loads)
	t := &distanceTable{
		fromDepot: make([]float64, n),
		length:    make([]float64, n),
		toDepot:   make([]float64, n),
		hop:       make([][]float64, n),
	}

	for i, l := range loads {
		t.fromDepot[i] = domain.Distance(depot, l.Pickup)
		t.length[i] = domain.Distance(l.Pickup, l.Dropoff)
		if l.Dropoff != depot {
			t.toDepot[i] = domain.Distance(l.Dropoff, depot)
		}

		t.hop[i] = make([]float64, n)
		for j, next := range loads {
			t.hop[i][j] = domain.Distance(l.Dropoff, next.Pickup)
		}
	}

	return t
}

// Travel time to reach load j's pickup from prev's dropoff, or from the
// depot when prev is negative.
func (t *distanceTable) approach(prev, j int) float64 {
	if prev < 0 {
		return t.fromDepot[j]
	}
	return t.hop[prev][j]
}

// Duration of a single-load route depot -> pickup -> dropoff -> depot.
func (t *distanceTable) roundTrip(i int) float64 {
	return t.fromDepot[i] + t.length[i] + t.toDepot[i]
}
