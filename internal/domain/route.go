package domain

import (
	"strconv"
	"strings"
)

// Represents the ordered loads handled by a single driver.
// A Route starts and ends at the depot. Time and Valid are computed once
// on construction; a Route is immutable planning data.
type Route struct {
	Loads []Load
	Time  float64
	Valid bool
}

// NewRoute computes the duty time of a driver serving loads in order.
func NewRoute(params Params, loads []Load) Route {
	t := RouteTime(params.Depot, loads)
	return Route{Loads: loads, Time: t, Valid: t < params.MaxTime}
}

// RouteTime sums depot -> pickup -> dropoff -> ... -> depot.
// The return leg is skipped when the driver already stands at the depot,
// which also makes an empty route cost nothing.
func RouteTime(depot Point, loads []Load) float64 {
	pos := depot
	t := 0.0
	for _, l := range loads {
		t += Distance(pos, l.Pickup)
		t += Distance(l.Pickup, l.Dropoff)
		pos = l.Dropoff
	}
	if pos != depot {
		t += Distance(pos, depot)
	}
	return t
}

func (r Route) LoadIDs() []int { return LoadIDs(r.Loads) }

// String renders the route as "[1,2,3]".
func (r Route) String() string {
	ids := make([]string, 0, len(r.Loads))
	for _, l := range r.Loads {
		ids = append(ids, strconv.Itoa(l.ID))
	}
	return "[" + strings.Join(ids, ",") + "]"
}
