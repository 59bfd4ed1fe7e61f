package services

import (
	"context"
	"driver-route-planner/internal/domain"
	"driver-route-planner/internal/platform/metrics"
	"driver-route-planner/internal/platform/obs"
	"driver-route-planner/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

// Options select and tune the engine used by Planner.
type Options struct {
	// auto, exact or greedy. Empty means auto.
	Engine        string
	MaxExactLoads int
	// Deadline for the exact search. Zero means no deadline.
	SearchTimeout  time.Duration
	Workers        int
	ProgressEvery  time.Duration
	StrictBudget   bool
	SkipUnroutable bool
	// Lifetime of cached results. Zero disables caching.
	CacheTTL time.Duration
}

func (o Options) engine() string {
	if o.Engine == "" {
		return EngineAuto
	}
	return o.Engine
}

func (o Options) maxExactLoads() int {
	if o.MaxExactLoads <= 0 {
		return DefaultMaxExactLoads
	}
	return o.MaxExactLoads
}

// Planner is the entry point used by commands: it validates input, consults
// the cache, runs an engine and records metrics.
type Planner struct {
	Params  domain.Params
	Options Options
	// Optional.
	Cache ports.SolutionCache
}

func NewPlanner(params domain.Params, opts Options, cache ports.SolutionCache) *Planner {
	return &Planner{Params: params, Options: opts, Cache: cache}
}

func (p *Planner) exact() *ExactSearch {
	return &ExactSearch{
		Params:        p.Params,
		MaxLoads:      p.Options.maxExactLoads(),
		Workers:       p.Options.Workers,
		ProgressEvery: p.Options.ProgressEvery,
	}
}

func (p *Planner) greedy() *NearestNeighbor {
	return &NearestNeighbor{
		Params:         p.Params,
		StrictBudget:   p.Options.StrictBudget,
		SkipUnroutable: p.Options.SkipUnroutable,
	}
}

// Plan assigns loads to routes with the configured engine.
//
// With the exact engine, an infeasible instance returns a Result with
// StatusInfeasible together with an error wrapping ErrNoFeasibleSolution.
// The auto engine falls back to the greedy engine instead of failing when
// exact search is infeasible, too large or interrupted without a solution.
func (p *Planner) Plan(ctx context.Context, loads []domain.Load) (_ *Result, err error) {
	ctx, runID := obs.WithRunID(ctx)
	defer obs.Time(ctx, "plan")(&err)

	if err := p.Params.Validate(); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	if err := domain.ValidateLoads(loads); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	engine := p.Options.engine()
	switch engine {
	case EngineAuto, EngineExact, EngineGreedy:
	default:
		return nil, fmt.Errorf("plan: engine %q: %w", engine, ErrUnknownEngine)
	}

	key := Fingerprint(p.Params, p.Options, loads)
	if res, ok := p.lookup(ctx, key, loads); ok {
		res.RunID = runID
		return res, nil
	}

	res, err := p.solve(ctx, engine, loads)
	if res != nil {
		res.RunID = runID
		if res.HasSolution {
			metrics.ObserveSolution(res.Solution.Cost, res.Solution.NumDrivers, len(res.Unassigned))
		}
	}
	if err != nil {
		return res, fmt.Errorf("plan: %w", err)
	}

	log.Printf(
		"run_id=%s op=plan engine=%s status=%s loads=%d drivers=%d cost=%.2f unassigned=%d",
		runID, res.Engine, res.Status, len(loads), res.Solution.NumDrivers, res.Solution.Cost, len(res.Unassigned),
	)

	p.store(ctx, key, res)
	return res, nil
}

func (p *Planner) solve(ctx context.Context, engine string, loads []domain.Load) (*Result, error) {
	switch engine {
	case EngineExact:
		return p.runExact(ctx, loads)
	case EngineGreedy:
		return p.runGreedy(ctx, loads)
	}

	if len(loads) > p.Options.maxExactLoads() {
		res, err := p.runGreedy(ctx, loads)
		if res != nil {
			res.Warnings = append([]string{fmt.Sprintf(
				"%d loads exceed the exact search limit of %d; used greedy engine",
				len(loads), p.Options.maxExactLoads(),
			)}, res.Warnings...)
		}
		return res, err
	}

	res, err := p.runExact(ctx, loads)
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, ErrNoFeasibleSolution):
		return p.fallback(ctx, loads, "exact search found no feasible solution")
	case res != nil && res.Status == StatusInterrupted && ctx.Err() == nil:
		// Only the search deadline expired; the caller's context is still live.
		if res.HasSolution {
			return res, nil
		}
		return p.fallback(ctx, loads, "exact search timed out without a solution")
	default:
		return res, err
	}
}

func (p *Planner) fallback(ctx context.Context, loads []domain.Load, reason string) (*Result, error) {
	log.Printf("run_id=%s op=plan fallback=greedy reason=%q", obs.RunID(ctx), reason)
	res, err := p.runGreedy(ctx, loads)
	if res != nil {
		res.Warnings = append([]string{reason + "; used greedy engine"}, res.Warnings...)
	}
	return res, err
}

func (p *Planner) runExact(ctx context.Context, loads []domain.Load) (*Result, error) {
	if p.Options.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Options.SearchTimeout)
		defer cancel()
	}

	res, err := p.exact().Solve(ctx, loads)
	if res != nil {
		metrics.ObserveSolve(res.Engine, string(res.Status), res.Elapsed, res.Explored)
	}
	return res, err
}

func (p *Planner) runGreedy(ctx context.Context, loads []domain.Load) (*Result, error) {
	res, err := p.greedy().Solve(ctx, loads)
	if res != nil {
		metrics.ObserveSolve(res.Engine, string(res.Status), res.Elapsed, 0)
	}
	return res, err
}

// Encoded form of a Result kept in the solution cache.
type cacheEntry struct {
	Engine     string   `json:"engine"`
	Status     Status   `json:"status"`
	Routes     [][]int  `json:"routes"`
	Unassigned []int    `json:"unassigned,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

func cacheable(s Status) bool {
	return s == StatusOptimal || s == StatusComplete || s == StatusPartial
}

func (p *Planner) lookup(ctx context.Context, key string, loads []domain.Load) (*Result, bool) {
	if p.Cache == nil || p.Options.CacheTTL <= 0 {
		return nil, false
	}

	payload, ok, err := p.Cache.Get(ctx, key)
	if err != nil {
		log.Printf("run_id=%s op=plan cache=get key=%s err=%v", obs.RunID(ctx), key, err)
		return nil, false
	}
	metrics.ObserveCache(ok)
	if !ok {
		return nil, false
	}

	res, err := p.decode(payload, loads)
	if err != nil {
		log.Printf("run_id=%s op=plan cache=decode key=%s err=%v", obs.RunID(ctx), key, err)
		return nil, false
	}

	log.Printf("run_id=%s op=plan cache=hit key=%s", obs.RunID(ctx), key)
	return res, true
}

func (p *Planner) store(ctx context.Context, key string, res *Result) {
	if p.Cache == nil || p.Options.CacheTTL <= 0 || !cacheable(res.Status) {
		return
	}

	entry := cacheEntry{
		Engine:     res.Engine,
		Status:     res.Status,
		Routes:     res.Solution.RouteIDs(),
		Unassigned: res.UnassignedIDs(),
		Warnings:   res.Warnings,
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		log.Printf("run_id=%s op=plan cache=encode err=%v", obs.RunID(ctx), err)
		return
	}

	if err := p.Cache.Set(ctx, key, payload, p.Options.CacheTTL); err != nil {
		log.Printf("run_id=%s op=plan cache=set key=%s err=%v", obs.RunID(ctx), key, err)
	}
}

// Rebuild a Result from cached ids. Route times and cost are recomputed.
func (p *Planner) decode(payload []byte, loads []domain.Load) (*Result, error) {
	var entry cacheEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}

	byID := make(map[int]domain.Load, len(loads))
	for _, l := range loads {
		byID[l.ID] = l
	}

	pick := func(ids []int) ([]domain.Load, error) {
		out := make([]domain.Load, 0, len(ids))
		for _, id := range ids {
			l, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("decode cache entry: unknown load_id=%d", id)
			}
			out = append(out, l)
		}
		return out, nil
	}

	routes := make([]domain.Route, 0, len(entry.Routes))
	for _, ids := range entry.Routes {
		rl, err := pick(ids)
		if err != nil {
			return nil, err
		}
		routes = append(routes, domain.NewRoute(p.Params, rl))
	}

	unassigned, err := pick(entry.Unassigned)
	if err != nil {
		return nil, err
	}
	if len(unassigned) == 0 {
		unassigned = nil
	}

	return &Result{
		Engine:      entry.Engine,
		Status:      entry.Status,
		Solution:    domain.NewSolution(p.Params, routes),
		HasSolution: true,
		Unassigned:  unassigned,
		Warnings:    entry.Warnings,
		Cached:      true,
	}, nil
}
