package services

import (
	"context"
	"driver-route-planner/internal/domain"
	"driver-route-planner/internal/platform/obs"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxExactLoads = 9

	// Nodes between context checks.
	checkEvery = 4096
)

// ExactSearch finds the minimum-cost solution whose routes are all valid by
// enumerating every ordered partition of the loads into routes.
//
// Each partition is visited once: blocks are generated in ascending order of
// the input index of their first load, so permutations that only reorder
// whole routes are never scored twice. A block is abandoned as soon as its
// time (return leg included) reaches MaxTime, and a branch is abandoned when
// its cost so far already exceeds the best complete solution.
//
// Equal-cost solutions are ranked by the lexicographic order of their route
// id sequences, which makes the answer independent of Workers.
type ExactSearch struct {
	Params domain.Params
	// Instances above this size are rejected. Zero means DefaultMaxExactLoads.
	MaxLoads int
	// Parallel top-level branches. Zero or one searches sequentially.
	Workers int
	// Interval between progress log lines. Zero disables progress logging.
	ProgressEvery time.Duration
}

func NewExactSearch(params domain.Params) *ExactSearch {
	return &ExactSearch{Params: params, MaxLoads: DefaultMaxExactLoads, Workers: 1}
}

func (e *ExactSearch) Name() string { return EngineExact }

// Solve returns a non-nil Result whenever the search ran. On infeasible
// instances the error wraps ErrNoFeasibleSolution; on cancellation it wraps
// the context error and the Result carries the best incumbent, if any.
func (e *ExactSearch) Solve(ctx context.Context, loads []domain.Load) (_ *Result, err error) {
	defer obs.Time(ctx, "exact_search")(&err)

	if err := e.Params.Validate(); err != nil {
		return nil, fmt.Errorf("exact search: %w", err)
	}
	if err := domain.ValidateLoads(loads); err != nil {
		return nil, fmt.Errorf("exact search: %w", err)
	}

	start := time.Now()
	res := &Result{Engine: e.Name()}

	if len(loads) == 0 {
		res.Status = StatusOptimal
		res.Solution = domain.NewSolution(e.Params, nil)
		res.HasSolution = true
		return res, nil
	}

	limit := e.MaxLoads
	if limit <= 0 {
		limit = DefaultMaxExactLoads
	}
	if len(loads) > limit {
		return nil, fmt.Errorf("exact search: %d loads, limit %d: %w", len(loads), limit, ErrInstanceTooLarge)
	}

	table := newDistanceTable(e.Params.Depot, loads)

	// Every route containing a load is at least as long as that load's own
	// round trip, so one oversized load makes the whole instance infeasible.
	for i := range loads {
		if table.roundTrip(i) >= e.Params.MaxTime {
			res.Status = StatusInfeasible
			res.Elapsed = time.Since(start)
			return res, fmt.Errorf(
				"exact search: load_id=%d round trip %.2f exceeds max time %.2f: %w",
				loads[i].ID, table.roundTrip(i), e.Params.MaxTime, ErrNoFeasibleSolution,
			)
		}
	}

	s := &search{
		params: e.Params,
		table:  table,
		loads:  loads,
	}
	s.bestCost.Store(math.Float64bits(math.Inf(1)))
	if e.ProgressEvery > 0 {
		s.progress = &rate.Sometimes{Interval: e.ProgressEvery}
		s.runID = obs.RunID(ctx)
		s.start = start
	}

	workers := e.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for first := range loads {
		g.Go(func() error {
			return s.newWalker().run(gctx, first)
		})
	}
	searchErr := g.Wait()

	res.Explored = s.nodes.Load()
	res.Elapsed = time.Since(start)

	if s.best.found {
		res.Solution = s.solution()
		res.HasSolution = true
	}

	if searchErr != nil {
		res.Status = StatusInterrupted
		res.Warnings = append(res.Warnings, "exact search interrupted before completion; solution is not proven optimal")
		return res, fmt.Errorf("exact search: interrupted after %d nodes: %w", res.Explored, searchErr)
	}

	if !s.best.found {
		res.Status = StatusInfeasible
		return res, fmt.Errorf("exact search: %d loads: %w", len(loads), ErrNoFeasibleSolution)
	}

	res.Status = StatusOptimal
	return res, nil
}

// Incumbent, stored as blocks of input indices in canonical order.
type incumbent struct {
	found  bool
	cost   float64
	blocks [][]int
	ids    [][]int
}

// Shared state of one Solve call.
type search struct {
	params domain.Params
	table  *distanceTable
	loads  []domain.Load

	mu   sync.Mutex
	best incumbent
	// Mirrors best.cost for lock-free bound checks.
	bestCost atomic.Uint64

	nodes    atomic.Int64
	progress *rate.Sometimes
	runID    string
	start    time.Time
}

// Report whether a branch whose cost is at least lb can be skipped.
func (s *search) exceeds(lb float64) bool {
	return lb > math.Float64frombits(s.bestCost.Load())
}

// Offer a complete all-valid partition.
func (s *search) offer(cost float64, blocks [][]int, cur []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.best.found && cost > s.best.cost {
		return
	}

	candidate := make([][]int, 0, len(blocks)+1)
	for _, b := range blocks {
		candidate = append(candidate, append([]int(nil), b...))
	}
	candidate = append(candidate, append([]int(nil), cur...))

	ids := make([][]int, len(candidate))
	for i, b := range candidate {
		ids[i] = make([]int, len(b))
		for k, idx := range b {
			ids[i][k] = s.loads[idx].ID
		}
	}

	if s.best.found && cost == s.best.cost && !lessIDs(ids, s.best.ids) {
		return
	}

	s.best = incumbent{found: true, cost: cost, blocks: candidate, ids: ids}
	s.bestCost.Store(math.Float64bits(cost))
}

func (s *search) solution() domain.Solution {
	s.mu.Lock()
	defer s.mu.Unlock()

	routes := make([]domain.Route, 0, len(s.best.blocks))
	for _, b := range s.best.blocks {
		loads := make([]domain.Load, len(b))
		for k, idx := range b {
			loads[k] = s.loads[idx]
		}
		routes = append(routes, domain.NewRoute(s.params, loads))
	}
	return domain.NewSolution(s.params, routes)
}

func (s *search) logProgress() {
	if s.progress == nil {
		return
	}
	s.progress.Do(func() {
		s.mu.Lock()
		found, cost := s.best.found, s.best.cost
		s.mu.Unlock()
		log.Printf(
			"run_id=%s op=exact_search progress nodes=%d best_found=%t best_cost=%.2f elapsed=%dms",
			s.runID, s.nodes.Load(), found, cost, time.Since(s.start).Milliseconds(),
		)
	})
}

// Depth-first state owned by a single goroutine.
type walker struct {
	s *search
	n int

	used   []bool
	placed int

	blocks      [][]int
	closedTimes float64 // sum of closed block times, in block order

	cur     []int
	curOpen float64 // current block time without the return leg

	// One reusable buffer per block position.
	bufs [][]int

	ticks int
}

func (s *search) newWalker() *walker {
	n := len(s.loads)
	w := &walker{
		s:      s,
		n:      n,
		used:   make([]bool, n),
		blocks: make([][]int, 0, n),
		bufs:   make([][]int, n),
	}
	for i := range w.bufs {
		w.bufs[i] = make([]int, 0, n)
	}
	w.cur = w.bufs[0]
	return w
}

// Explore every canonical partition whose first block starts with load first.
func (w *walker) run(ctx context.Context, first int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() { w.s.nodes.Add(int64(w.ticks)) }()

	t := w.s.table
	w.used[first] = true
	w.placed = 1
	w.cur = append(w.cur, first)
	w.curOpen = t.approach(-1, first) + t.length[first]
	return w.visit(ctx)
}

func (w *walker) visit(ctx context.Context) error {
	w.ticks++
	if w.ticks == checkEvery {
		w.s.nodes.Add(int64(w.ticks))
		w.ticks = 0
		if err := ctx.Err(); err != nil {
			return err
		}
		w.s.logProgress()
	}

	t := w.s.table
	last := w.cur[len(w.cur)-1]
	curTime := w.curOpen + t.toDepot[last]
	if curTime >= w.s.params.MaxTime {
		return nil
	}

	// Lower bound: remaining loads may still join the current block, and
	// block time never decreases as loads are appended.
	lb := w.s.params.DriverCost*float64(len(w.blocks)+1) + (w.closedTimes + curTime)
	if w.s.exceeds(lb) {
		return nil
	}

	if w.placed == w.n {
		w.s.offer(lb, w.blocks, w.cur)
		return nil
	}

	// Extend the current block.
	for j := 0; j < w.n; j++ {
		if w.used[j] {
			continue
		}
		savedOpen := w.curOpen
		w.used[j] = true
		w.placed++
		w.cur = append(w.cur, j)
		w.curOpen = w.curOpen + t.approach(last, j) + t.length[j]

		err := w.visit(ctx)

		w.curOpen = savedOpen
		w.cur = w.cur[:len(w.cur)-1]
		w.placed--
		w.used[j] = false
		if err != nil {
			return err
		}
	}

	// Close the current block and open a new one whose first load has a
	// higher input index than the current block's first load.
	savedCur, savedOpen, savedClosed := w.cur, w.curOpen, w.closedTimes
	for k := w.cur[0] + 1; k < w.n; k++ {
		if w.used[k] {
			continue
		}
		w.blocks = append(w.blocks, savedCur)
		w.closedTimes = savedClosed + curTime
		w.used[k] = true
		w.placed++
		w.cur = append(w.bufs[len(w.blocks)][:0], k)
		w.curOpen = t.approach(-1, k) + t.length[k]

		err := w.visit(ctx)

		w.placed--
		w.used[k] = false
		w.blocks = w.blocks[:len(w.blocks)-1]
		w.cur, w.curOpen, w.closedTimes = savedCur, savedOpen, savedClosed
		if err != nil {
			return err
		}
	}

	return nil
}

// Lexicographic comparison of route id sequences.
func lessIDs(a, b [][]int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		for k := 0; k < len(a[i]) && k < len(b[i]); k++ {
			if a[i][k] != b[i][k] {
				return a[i][k] < b[i][k]
			}
		}
		if len(a[i]) != len(b[i]) {
			return len(a[i]) < len(b[i])
		}
	}
	return len(a) < len(b)
}
