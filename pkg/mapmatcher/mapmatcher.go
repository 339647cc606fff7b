package mapmatcher

import (
	"errors"
	"sort"

	"github.com/janusz-anue/valhalla/pkg"
	"github.com/janusz-anue/valhalla/pkg/costfunction"
	"github.com/janusz-anue/valhalla/pkg/datastructure"
	"github.com/janusz-anue/valhalla/pkg/geo"
	"github.com/janusz-anue/valhalla/pkg/matcher"
	"github.com/janusz-anue/valhalla/pkg/spatialindex"
	"github.com/janusz-anue/valhalla/pkg/util"
	"github.com/janusz-anue/valhalla/pkg/viterbi"
	"go.uber.org/zap"
)

var ErrNoCandidates = errors.New("no trace point could be snapped to the road network")

const maxCandidatesPerColumn = 8

// MapMatcher ties candidate generation, the transition cost model and the
// decoder into one reusable service. the graph, index and costings are shared
// read-only between concurrent Match calls, everything mutable is created per
// call.
type MapMatcher struct {
	log         *zap.Logger
	graph       *datastructure.Graph
	rt          *spatialindex.Rtree
	modeCosting []costfunction.CostFunction
	cfg         util.MatcherConfig
}

func NewMapMatcher(log *zap.Logger, graph *datastructure.Graph, rt *spatialindex.Rtree,
	modeCosting []costfunction.CostFunction, cfg util.MatcherConfig) *MapMatcher {
	return &MapMatcher{
		log:         log,
		graph:       graph,
		rt:          rt,
		modeCosting: modeCosting,
		cfg:         cfg,
	}
}

// Match finds the most likely road positions explaining the trace. trace
// points that cannot be snapped to any edge within the search radius are
// dropped from the output.
func (mm *MapMatcher) Match(trace []*datastructure.GPSPoint, mode pkg.TravelMode) ([]*datastructure.MatchedGPSPoint, error) {
	kept := make([]*datastructure.GPSPoint, 0, len(trace))
	columns := make([]matcher.Column, 0, len(trace))

	for _, gps := range trace {
		candidates := mm.findCandidates(gps)
		if len(candidates) == 0 {
			mm.log.Debug("trace point has no candidates, dropping",
				zap.Float64("lat", gps.Lat()), zap.Float64("lon", gps.Lon()))
			continue
		}

		t := uint32(len(columns))
		column := make(matcher.Column, len(candidates))
		for i, cand := range candidates {
			column[i] = matcher.NewState(matcher.NewStateId(t, uint32(i)), cand)
		}
		columns = append(columns, column)
		kept = append(kept, gps)
	}

	if len(columns) == 0 {
		return nil, util.WrapErrorf(nil, ErrNoCandidates, "trace of %d points", len(trace))
	}

	vs, err := viterbi.NewNaiveViterbiSearch(mm.cfg.SigmaZ)
	if err != nil {
		return nil, err
	}

	tcm, err := matcher.NewTransitionCostModelFromConfig(
		mm.graph,
		vs,
		func(time uint32) matcher.Column { return columns[time] },
		func(time uint32) *datastructure.GPSPoint { return kept[time] },
		mm.modeCosting,
		mode,
		mm.cfg)
	if err != nil {
		return nil, err
	}

	stateIds, err := vs.Decode(columns, tcm)
	if err != nil {
		return nil, err
	}

	matched := make([]*datastructure.MatchedGPSPoint, len(stateIds))
	for t, sid := range stateIds {
		state := columns[sid.Time()][sid.Id()]
		matched[t] = datastructure.NewMatchedGPSPoint(kept[t], state.Candidate().EdgeId(), state.Candidate().Point())
	}
	return matched, nil
}

// findCandidates snaps one gps fix onto nearby edges, ranked by snap distance
// ascending. the rank order is load-bearing: the transition cost model
// resolves right-hand states by rank, so columns must stay distance-ordered.
func (mm *MapMatcher) findCandidates(gps *datastructure.GPSPoint) []matcher.Candidate {
	searchRadiusKm := gps.SearchRadius() / 1000.0
	edgeIds := mm.rt.SearchWithinRadius(gps.Lat(), gps.Lon(), searchRadiusKm)

	candidates := make([]matcher.Candidate, 0, len(edgeIds))
	for _, edgeId := range edgeIds {
		e := mm.graph.GetOutEdge(edgeId)
		tailLat, tailLon := mm.graph.GetVertexCoordinates(e.GetTail())
		headLat, headLon := mm.graph.GetVertexCoordinates(e.GetHead())

		tail := geo.NewCoordinate(tailLat, tailLon)
		head := geo.NewCoordinate(headLat, headLon)

		snapped := geo.ProjectPointToLineCoord(tail, head, gps.Coordinate())
		snapDist := geo.PointLinePerpendicularDistance(tail, head, gps.Coordinate())
		if snapDist > gps.SearchRadius() {
			continue
		}

		offset := 0.0
		if e.GetLength() > 0 {
			offset = geo.GreatCircleDistance(tail, snapped) / e.GetLength()
		}
		if offset < 0 {
			offset = 0
		}
		if offset > 1 {
			offset = 1
		}

		candidates = append(candidates, matcher.NewCandidate(edgeId, offset, snapped, snapDist))
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Distance() < candidates[j].Distance()
	})
	if len(candidates) > maxCandidatesPerColumn {
		candidates = candidates[:maxCandidatesPerColumn]
	}
	return candidates
}
