package matcher

import (
	"sync/atomic"

	"github.com/janusz-anue/valhalla/pkg/datastructure"
	"github.com/janusz-anue/valhalla/pkg/geo"
	"github.com/janusz-anue/valhalla/pkg/util"
)

// StateId identifies one candidate of one measurement: (time index of the
// measurement, rank of the candidate within its column). the zero value is
// the invalid id, used for start-of-sequence predecessors.
type StateId struct {
	timePlusOne uint32
	id          uint32
}

func NewStateId(time, id uint32) StateId {
	return StateId{timePlusOne: time + 1, id: id}
}

func (s StateId) Time() uint32 {
	return s.timePlusOne - 1
}

func (s StateId) Id() uint32 {
	return s.id
}

func (s StateId) IsValid() bool {
	return s.timePlusOne != 0
}

// Candidate is a measurement snapped onto the road network: a directed edge,
// a fractional offset along it, the snapped coordinate and the snap distance.
type Candidate struct {
	edgeId   datastructure.Index
	offset   float64 // fraction along the edge, in [0,1]
	point    geo.Coordinate
	distance float64 // meter from the raw measurement to point
}

func NewCandidate(edgeId datastructure.Index, offset float64, point geo.Coordinate, distance float64) Candidate {
	return Candidate{
		edgeId:   edgeId,
		offset:   offset,
		point:    point,
		distance: distance,
	}
}

func (c Candidate) EdgeId() datastructure.Index {
	return c.edgeId
}

func (c Candidate) Offset() float64 {
	return c.offset
}

func (c Candidate) Point() geo.Coordinate {
	return c.point
}

func (c Candidate) Distance() float64 {
	return c.distance
}

// routeRecord is the Routed half of the state's Unrouted|Routed transition.
// installed exactly once, read-only afterwards.
type routeRecord struct {
	labelSet *LabelSet
	labels   map[StateId]uint32 // peer state -> arena index of the best label
}

// State is one routing candidate for one time index. the route record is
// installed exactly once by SetRoute; after that, LastLabel is authoritative:
// a missing peer means unreachable within budget, not "not yet searched".
type State struct {
	stateid   StateId
	candidate Candidate
	route     atomic.Pointer[routeRecord]
}

func NewState(stateid StateId, candidate Candidate) *State {
	return &State{
		stateid:   stateid,
		candidate: candidate,
	}
}

func (s *State) Stateid() StateId {
	return s.stateid
}

func (s *State) Candidate() Candidate {
	return s.candidate
}

func (s *State) Routed() bool {
	return s.route.Load() != nil
}

// SetRoute installs the result of one bounded router invocation: results maps
// destination location index (0 = this state itself, i+1 = unreached[i]) to
// label arena indices inside labelSet. the record becomes visible atomically,
// so concurrent readers either see no route or the whole batch.
func (s *State) SetRoute(unreached []StateId, results map[int]uint32, labelSet *LabelSet) {
	labels := make(map[StateId]uint32, len(unreached))
	for i, sid := range unreached {
		if labelIdx, ok := results[i+1]; ok {
			labels[sid] = labelIdx
		}
	}

	installed := s.route.CompareAndSwap(nil, &routeRecord{
		labelSet: labelSet,
		labels:   labels,
	})
	util.AssertPanic(installed, "SetRoute must be called exactly once per state")
}

// LastLabel returns the best label from this state to right, nil if right was
// unreachable within budget or this state has not been routed yet.
func (s *State) LastLabel(right *State) *Label {
	record := s.route.Load()
	if record == nil {
		return nil
	}
	labelIdx, ok := record.labels[right.Stateid()]
	if !ok {
		return nil
	}
	return record.labelSet.At(labelIdx)
}

// Column is the ordered candidate set of one measurement, ranked by snap
// distance ascending.
type Column []*State
