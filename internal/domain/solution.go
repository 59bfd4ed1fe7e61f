package domain

// Represents a complete assignment of loads to driver routes.
// NumDrivers, Cost and Valid are derived once on construction.
type Solution struct {
	Routes     []Route
	NumDrivers int
	Cost       float64
	Valid      bool
}

// NewSolution scores routes as DriverCost per route plus the sum of route times.
func NewSolution(params Params, routes []Route) Solution {
	if routes == nil {
		routes = []Route{}
	}

	total := 0.0
	valid := true
	for _, r := range routes {
		total += r.Time
		valid = valid && r.Valid
	}

	return Solution{
		Routes:     routes,
		NumDrivers: len(routes),
		Cost:       params.DriverCost*float64(len(routes)) + total,
		Valid:      valid,
	}
}

// TotalTime is the sum of all route times.
func (s Solution) TotalTime() float64 {
	total := 0.0
	for _, r := range s.Routes {
		total += r.Time
	}
	return total
}

// RouteIDs returns the load ids of each route in route order.
func (s Solution) RouteIDs() [][]int {
	out := make([][]int, 0, len(s.Routes))
	for _, r := range s.Routes {
		out = append(out, r.LoadIDs())
	}
	return out
}

// LoadCount is the number of loads across all routes.
func (s Solution) LoadCount() int {
	n := 0
	for _, r := range s.Routes {
		n += len(r.Loads)
	}
	return n
}
