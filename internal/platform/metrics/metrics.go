package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the planner.
	Registry = prometheus.NewRegistry()

	// Solves counts engine runs by engine and outcome status.
	Solves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "planner_solves_total", Help: "Engine runs by engine and status."},
		[]string{"engine", "status"},
	)
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planner_solve_duration_seconds",
			Help:    "Engine run duration in seconds.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"engine"},
	)
	SearchNodes = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "planner_exact_nodes_total", Help: "Nodes visited by the exact search."},
	)
	SolutionCost = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "planner_solution_cost", Help: "Cost of the last returned solution."},
	)
	Drivers = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "planner_solution_drivers", Help: "Drivers used by the last returned solution."},
	)
	UnassignedLoads = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "planner_unassigned_loads", Help: "Loads left unassigned by the last run."},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "planner_cache_lookups_total", Help: "Solution cache lookups by result."},
		[]string{"result"},
	)
)

var regOnce sync.Once

// RegisterDefault registers collectors to Registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(Solves)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(SearchNodes)
		Registry.MustRegister(SolutionCost)
		Registry.MustRegister(Drivers)
		Registry.MustRegister(UnassignedLoads)
		Registry.MustRegister(CacheLookups)
		Registry.MustRegister(collectors.NewGoCollector())
	})
}

// ObserveSolve records one engine run.
func ObserveSolve(engine, status string, elapsed time.Duration, explored int64) {
	Solves.WithLabelValues(engine, status).Inc()
	SolveDuration.WithLabelValues(engine).Observe(elapsed.Seconds())
	if explored > 0 {
		SearchNodes.Add(float64(explored))
	}
}

// ObserveSolution records the shape of the solution handed to the caller.
func ObserveSolution(cost float64, drivers, unassigned int) {
	SolutionCost.Set(cost)
	Drivers.Set(float64(drivers))
	UnassignedLoads.Set(float64(unassigned))
}

func ObserveCache(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

// WriteTextfile dumps Registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("metrics: write textfile %q: %w", path, err)
	}
	return nil
}
