package services

import (
	"context"
	"driver-route-planner/internal/adapters/cache"
	"driver-route-planner/internal/domain"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlannerAutoUsesExactForSmallInstances(t *testing.T) {
	p := NewPlanner(domain.DefaultParams(), Options{}, nil)

	res, err := p.Plan(context.Background(), scenarioB())
	require.NoError(t, err)

	assert.Equal(t, EngineExact, res.Engine)
	assert.Equal(t, StatusOptimal, res.Status)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 1800.0, res.Solution.Cost)
}

func TestPlannerAutoFallsBackToGreedyWhenInfeasible(t *testing.T) {
	loads := []domain.Load{
		{ID: 1, Pickup: pt(0, 0), Dropoff: pt(0, 400)},
	}
	p := NewPlanner(domain.DefaultParams(), Options{Engine: EngineAuto}, nil)

	res, err := p.Plan(context.Background(), loads)
	require.NoError(t, err)

	assert.Equal(t, EngineGreedy, res.Engine)
	assert.Equal(t, StatusPartial, res.Status)
	assert.Equal(t, []int{1}, res.UnassignedIDs())
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "no feasible solution")
}

func TestPlannerExactReportsInfeasible(t *testing.T) {
	loads := []domain.Load{
		{ID: 1, Pickup: pt(0, 0), Dropoff: pt(0, 400)},
	}
	p := NewPlanner(domain.DefaultParams(), Options{Engine: EngineExact}, nil)

	res, err := p.Plan(context.Background(), loads)
	require.ErrorIs(t, err, ErrNoFeasibleSolution)
	require.NotNil(t, res)
	assert.Equal(t, StatusInfeasible, res.Status)
}

func TestPlannerAutoUsesGreedyForLargeInstances(t *testing.T) {
	loads := randomLoads(rand.New(rand.NewPCG(2, 2)), 12, 50)
	p := NewPlanner(domain.DefaultParams(), Options{MaxExactLoads: 5}, nil)

	res, err := p.Plan(context.Background(), loads)
	require.NoError(t, err)

	assert.Equal(t, EngineGreedy, res.Engine)
	assert.Equal(t, StatusComplete, res.Status)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "exceed the exact search limit")
}

func TestPlannerRejectsUnknownEngine(t *testing.T) {
	p := NewPlanner(domain.DefaultParams(), Options{Engine: "annealing"}, nil)

	_, err := p.Plan(context.Background(), scenarioB())
	require.ErrorIs(t, err, ErrUnknownEngine)
}

func TestPlannerRejectsDuplicateLoads(t *testing.T) {
	loads := append(scenarioB(), domain.Load{ID: 1, Pickup: pt(1, 1), Dropoff: pt(2, 2)})
	p := NewPlanner(domain.DefaultParams(), Options{}, nil)

	_, err := p.Plan(context.Background(), loads)
	require.ErrorIs(t, err, domain.ErrDuplicateLoad)
}

func TestPlannerServesRepeatedRunsFromCache(t *testing.T) {
	c := cache.NewMemorySolutionCache()
	p := NewPlanner(domain.DefaultParams(), Options{CacheTTL: time.Hour}, c)
	loads := randomLoads(rand.New(rand.NewPCG(4, 4)), 6, 70)

	first, err := p.Plan(context.Background(), loads)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, c.Len())

	second, err := p.Plan(context.Background(), loads)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Solution.RouteIDs(), second.Solution.RouteIDs())
	assert.Equal(t, first.Solution.Cost, second.Solution.Cost)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestPlannerDoesNotCacheInfeasibleResults(t *testing.T) {
	c := cache.NewMemorySolutionCache()
	p := NewPlanner(domain.DefaultParams(), Options{Engine: EngineExact, CacheTTL: time.Hour}, c)
	loads := []domain.Load{{ID: 1, Pickup: pt(0, 0), Dropoff: pt(0, 400)}}

	_, err := p.Plan(context.Background(), loads)
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestFingerprint(t *testing.T) {
	params := domain.DefaultParams()
	loads := scenarioB()

	a := Fingerprint(params, Options{}, loads)
	assert.Equal(t, a, Fingerprint(params, Options{Engine: EngineAuto}, loads))

	other := params
	other.MaxTime = 700
	assert.NotEqual(t, a, Fingerprint(other, Options{}, loads))
	assert.NotEqual(t, a, Fingerprint(params, Options{Engine: EngineGreedy}, loads))
	assert.NotEqual(t, a, Fingerprint(params, Options{}, loads[:1]))

	swapped := []domain.Load{loads[1], loads[0]}
	assert.NotEqual(t, a, Fingerprint(params, Options{}, swapped))
}
