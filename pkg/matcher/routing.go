package matcher

import (
	"github.com/janusz-anue/valhalla/pkg/costfunction"
	da "github.com/janusz-anue/valhalla/pkg/datastructure"
	"github.com/janusz-anue/valhalla/pkg/geo"
)

// upper bound on travel speed used by the expansion-shaping estimate, so the
// estimate never overestimates remaining travel time.
const maxHeuristicSpeedMPS = 33.0

type destOnEdge struct {
	locIdx int
	offset float64
}

// FindShortestPath runs one bounded label-correcting search over the road
// graph from locations[originIdx] toward every other location in the list.
// expansion stops along a branch once accumulated distance exceeds the
// labelSet's distance budget or accumulated time exceeds maxTime, and
// globally once every destination is settled or the queue drains. the result
// maps destination location index to the arena index of its best label inside
// labelSet; destinations absent from the result were unreachable within
// budget, which is a normal outcome, not an error.
//
// seedLabel optionally carries the last label of a previous route segment
// ending on the origin edge, so the turn cost of the first vertex transition
// accounts for the incoming travel direction.
func FindShortestPath(
	graph GraphReader,
	locations []Candidate,
	originIdx int,
	labelSet *LabelSet,
	approximator geo.DistanceApproximator,
	searchRadius float64,
	costFn costfunction.CostFunction,
	seedLabel *Label,
	turnCostTable *TurnCostTable,
	maxTime float64,
) map[int]uint32 {
	results := make(map[int]uint32, len(locations))
	if originIdx < 0 || originIdx >= len(locations) {
		return results
	}

	// destination candidates grouped by the edge they sit on
	dests := make(map[da.Index][]destOnEdge, len(locations))
	for i, loc := range locations {
		dests[loc.EdgeId()] = append(dests[loc.EdgeId()], destOnEdge{locIdx: i, offset: loc.Offset()})
	}
	remaining := len(locations)

	pq := da.NewFourAryHeap[uint32]()

	// best known rank per arrival edge (lazy decrease-key: improvements push a
	// fresh arena label, stale heap entries are skipped on pop so no label is
	// ever mutated after installation)
	edgeLabelIdx := make(map[da.Index]uint32)

	// best settled rank per destination, prunes dominated destination labels
	destBest := make([]float64, len(locations))
	for i := range destBest {
		destBest[i] = -1
	}

	rank := func(l *Label) float64 {
		return l.cost.Value + l.turnCost
	}

	remainingEstimate := func(v da.Index) float64 {
		vertex := graph.GetVertex(v)
		d := approximator.Distance(geo.NewCoordinate(vertex.GetLat(), vertex.GetLon())) - searchRadius
		if d < 0 {
			return 0
		}
		return d / maxHeuristicSpeedMPS
	}

	withinBudget := func(l *Label) bool {
		return l.distance <= labelSet.MaxDistance() && l.cost.Secs <= maxTime
	}

	pushDest := func(l Label) {
		if !withinBudget(&l) {
			return
		}
		if destBest[l.destination] >= 0 && rank(&l) >= destBest[l.destination] {
			return
		}
		destBest[l.destination] = rank(&l)
		idx := labelSet.Put(l)
		pq.Insert(da.NewPriorityQueueNode(l.sortcost, idx))
	}

	relaxEdge := func(l Label) {
		if !withinBudget(&l) {
			return
		}
		if existingIdx, ok := edgeLabelIdx[l.edgeId]; ok && rank(labelSet.At(existingIdx)) <= rank(&l) {
			return
		}
		idx := labelSet.Put(l)
		edgeLabelIdx[l.edgeId] = idx
		pq.Insert(da.NewPriorityQueueNode(l.sortcost, idx))
	}

	// seed the search at the origin candidate
	origin := locations[originIdx]
	originEdge := graph.GetOutEdge(origin.EdgeId())
	originEdgeCost := costFn.EdgeCost(originEdge)

	// turn cost of entering the origin edge from the previous route segment.
	// zero when the seed continues along the same edge or there is no seed.
	originTurnCost := 0.0
	if seedLabel != nil && seedLabel.EdgeId() != da.INVALID_INDEX && seedLabel.EdgeId() != origin.EdgeId() {
		inEdge := graph.GetOutEdge(seedLabel.EdgeId())
		turnDeg := geo.TurnDegree180(inEdge.GetEntryHeading(), originEdge.GetExitHeading())
		originTurnCost = turnCostTable.Cost(turnDeg)
	}

	rootIdx := labelSet.Put(Label{
		predecessor: INVALID_LABEL_INDEX,
		edgeId:      origin.EdgeId(),
		endVertex:   da.INVALID_INDEX,
		destination: -1,
	})

	// destinations on the origin edge, reachable without leaving it
	for _, dst := range dests[origin.EdgeId()] {
		if dst.offset < origin.Offset() {
			continue
		}
		frac := dst.offset - origin.Offset()
		partCost := originEdgeCost.Scale(frac)
		turnCost := 0.0
		if frac > 0 {
			turnCost = originTurnCost
		}
		pushDest(Label{
			predecessor: rootIdx,
			edgeId:      origin.EdgeId(),
			endVertex:   da.INVALID_INDEX,
			destination: dst.locIdx,
			cost:        partCost,
			turnCost:    turnCost,
			distance:    originEdge.GetLength() * frac,
			sortcost:    partCost.Value + turnCost,
		})
	}

	// continuation along the remainder of the origin edge to its head vertex
	contFrac := 1.0 - origin.Offset()
	contCost := originEdgeCost.Scale(contFrac)
	relaxEdge(Label{
		predecessor: rootIdx,
		edgeId:      origin.EdgeId(),
		endVertex:   originEdge.GetHead(),
		destination: -1,
		cost:        contCost,
		turnCost:    originTurnCost,
		distance:    originEdge.GetLength() * contFrac,
		sortcost:    contCost.Value + originTurnCost + remainingEstimate(originEdge.GetHead()),
	})

	for !pq.IsEmpty() && remaining > 0 {
		node, err := pq.ExtractMin()
		if err != nil {
			break
		}
		labelIdx := node.GetItem()
		label := *labelSet.At(labelIdx)

		if label.destination >= 0 {
			if _, settled := results[label.destination]; !settled {
				results[label.destination] = labelIdx
				remaining--
			}
			continue
		}

		if edgeLabelIdx[label.edgeId] != labelIdx {
			continue // stale entry, a cheaper label for this edge exists
		}

		inEdge := graph.GetOutEdge(label.edgeId)
		graph.ForOutEdgesOf(label.endVertex, func(e *da.Edge) {
			turnDeg := geo.TurnDegree180(inEdge.GetEntryHeading(), e.GetExitHeading())
			turnCost := turnCostTable.Cost(turnDeg)

			edgeCost := costFn.EdgeCost(e)

			for _, dst := range dests[e.GetEdgeId()] {
				partCost := label.cost.Add(edgeCost.Scale(dst.offset))
				pushDest(Label{
					predecessor: labelIdx,
					edgeId:      e.GetEdgeId(),
					endVertex:   da.INVALID_INDEX,
					destination: dst.locIdx,
					cost:        partCost,
					turnCost:    label.turnCost + turnCost,
					distance:    label.distance + e.GetLength()*dst.offset,
					sortcost:    partCost.Value + label.turnCost + turnCost,
				})
			}

			newCost := label.cost.Add(edgeCost)
			relaxEdge(Label{
				predecessor: labelIdx,
				edgeId:      e.GetEdgeId(),
				endVertex:   e.GetHead(),
				destination: -1,
				cost:        newCost,
				turnCost:    label.turnCost + turnCost,
				distance:    label.distance + e.GetLength(),
				sortcost:    newCost.Value + label.turnCost + turnCost + remainingEstimate(e.GetHead()),
			})
		})
	}

	return results
}
