package matcher

import (
	"math"
	"testing"

	"github.com/janusz-anue/valhalla/pkg"
	"github.com/janusz-anue/valhalla/pkg/costfunction"
	"github.com/janusz-anue/valhalla/pkg/datastructure"
	"github.com/janusz-anue/valhalla/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeroTurnCostTable(t *testing.T) *TurnCostTable {
	t.Helper()
	table, err := NewTurnCostTable(0)
	require.NoError(t, err)
	return &table
}

func TestFindShortestPathAlongLine(t *testing.T) {
	// V0 --e0-- V1 --e1-- V2 --e2-- V3, 100m each, 10 m/s
	graph, edges := lineGraphEastward(10.0, 0, 100, 200, 300)

	origin := NewCandidate(edges[0], 0.0, coordAt(0, 0), 0)
	dest := NewCandidate(edges[2], 0.5, coordAt(250, 0), 0)
	locations := []Candidate{origin, dest}

	approximator := geo.NewDistanceApproximator(coordAt(250, 0))

	testCases := []struct {
		name        string
		maxDistance float64
		reachable   bool
	}{
		{name: "within distance budget", maxDistance: 300, reachable: true},
		{name: "distance budget exceeded", maxDistance: 200, reachable: false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			labelSet := NewLabelSet(tt.maxDistance)
			results := FindShortestPath(graph, locations, 0, labelSet, approximator, 50,
				costfunction.NewCarCostFunction(), nil, zeroTurnCostTable(t), 1000)

			labelIdx, ok := results[1]
			if !tt.reachable {
				// unreachable within budget is absence, not an error
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			label := labelSet.At(labelIdx)
			assert.InDelta(t, 250.0, label.Distance(), 1.0)
			assert.InDelta(t, 25.0, label.Cost().Secs, 0.1)
			assert.Zero(t, label.TurnCost())
		})
	}
}

func TestFindShortestPathTimeBudget(t *testing.T) {
	graph, edges := lineGraphEastward(10.0, 0, 100, 200)

	origin := NewCandidate(edges[0], 0.0, coordAt(0, 0), 0)
	dest := NewCandidate(edges[1], 1.0, coordAt(200, 0), 0)
	locations := []Candidate{origin, dest}
	approximator := geo.NewDistanceApproximator(coordAt(200, 0))

	labelSet := NewLabelSet(1000)
	results := FindShortestPath(graph, locations, 0, labelSet, approximator, 50,
		costfunction.NewCarCostFunction(), nil, zeroTurnCostTable(t), 10)

	// 200m at 10 m/s needs 20s, budget is 10s
	_, ok := results[1]
	assert.False(t, ok)
}

func TestFindShortestPathDestinationsBatch(t *testing.T) {
	graph, edges := lineGraphEastward(10.0, 0, 100, 200)

	origin := NewCandidate(edges[0], 0.2, coordAt(20, 0), 0)
	destsNear := NewCandidate(edges[0], 0.9, coordAt(90, 0), 0)
	destFar := NewCandidate(edges[1], 0.5, coordAt(150, 0), 0)
	locations := []Candidate{origin, destsNear, destFar}
	approximator := geo.NewDistanceApproximator(coordAt(100, 0))

	labelSet := NewLabelSet(1000)
	results := FindShortestPath(graph, locations, 0, labelSet, approximator, 50,
		costfunction.NewCarCostFunction(), nil, zeroTurnCostTable(t), 1000)

	// origin itself settles as destination 0 with a trivial label
	require.Contains(t, results, 0)
	assert.Zero(t, labelSet.At(results[0]).Distance())

	require.Contains(t, results, 1)
	assert.InDelta(t, 70.0, labelSet.At(results[1]).Distance(), 1.0)

	require.Contains(t, results, 2)
	assert.InDelta(t, 130.0, labelSet.At(results[2]).Distance(), 1.0)
}

func TestFindShortestPathAppliesTurnCost(t *testing.T) {
	// right-angle corner: e0 heads east, e1 heads north
	graph := datastructure.NewGraph()
	c0 := coordAt(0, 0)
	c1 := coordAt(100, 0)
	c2 := coordAt(100, 100)
	v0 := graph.AddVertex(c0.GetLat(), c0.GetLon())
	v1 := graph.AddVertex(c1.GetLat(), c1.GetLon())
	v2 := graph.AddVertex(c2.GetLat(), c2.GetLon())
	e0 := graph.AddEdge(v0, v1, 10.0, pkg.RESIDENTIAL)
	e1 := graph.AddEdge(v1, v2, 10.0, pkg.RESIDENTIAL)

	origin := NewCandidate(e0, 0.0, c0, 0)
	dest := NewCandidate(e1, 1.0, c2, 0)
	locations := []Candidate{origin, dest}
	approximator := geo.NewDistanceApproximator(c2)

	turnPenaltyFactor := 10.0
	table, err := NewTurnCostTable(turnPenaltyFactor)
	require.NoError(t, err)

	labelSet := NewLabelSet(1000)
	results := FindShortestPath(graph, locations, 0, labelSet, approximator, 50,
		costfunction.NewCarCostFunction(), nil, &table, 1000)

	require.Contains(t, results, 1)
	label := labelSet.At(results[1])

	// a 90 degree corner sits halfway between u-turn (full penalty) and
	// straight on: table index 90, penalty p*exp(-2)
	assert.InDelta(t, turnPenaltyFactor*math.Exp(-2), label.TurnCost(), 1e-3)
}

func TestFindShortestPathSeedLabelTurnCost(t *testing.T) {
	// the seed label arrives heading north, the origin edge heads east:
	// the first move of the search pays the corresponding turn cost
	graph := datastructure.NewGraph()
	cSouth := coordAt(0, -100)
	c0 := coordAt(0, 0)
	c1 := coordAt(100, 0)
	vSouth := graph.AddVertex(cSouth.GetLat(), cSouth.GetLon())
	v0 := graph.AddVertex(c0.GetLat(), c0.GetLon())
	v1 := graph.AddVertex(c1.GetLat(), c1.GetLon())
	eIn := graph.AddEdge(vSouth, v0, 10.0, pkg.RESIDENTIAL) // heads north
	e0 := graph.AddEdge(v0, v1, 10.0, pkg.RESIDENTIAL)      // heads east

	turnPenaltyFactor := 10.0
	table, err := NewTurnCostTable(turnPenaltyFactor)
	require.NoError(t, err)

	origin := NewCandidate(e0, 0.0, c0, 0)
	dest := NewCandidate(e0, 1.0, c1, 0)
	locations := []Candidate{origin, dest}
	approximator := geo.NewDistanceApproximator(c1)

	seed := &Label{edgeId: eIn, endVertex: v0}

	labelSet := NewLabelSet(1000)
	results := FindShortestPath(graph, locations, 0, labelSet, approximator, 50,
		costfunction.NewCarCostFunction(), seed, &table, 1000)

	require.Contains(t, results, 1)
	label := labelSet.At(results[1])
	assert.InDelta(t, turnPenaltyFactor*math.Exp(-2), label.TurnCost(), 1e-3)
}
