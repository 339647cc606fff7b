package matcher

import (
	"math"

	"github.com/janusz-anue/valhalla/pkg/costfunction"
	"github.com/janusz-anue/valhalla/pkg/datastructure"
)

const INVALID_LABEL_INDEX uint32 = math.MaxUint32

// Label is the result of expanding a path up to either the head vertex of an
// edge or a destination candidate on it. predecessor chaining is by arena
// index into the owning LabelSet, never by pointer.
type Label struct {
	predecessor uint32 // arena index, INVALID_LABEL_INDEX for search roots
	edgeId      datastructure.Index
	endVertex   datastructure.Index // head vertex of edgeId, INVALID_INDEX for mid-edge destination labels
	destination int                 // destination location index settled by this label, -1 otherwise
	cost        costfunction.Cost   // accumulated edge traversal cost (turn cost folded into Value)
	turnCost    float64             // accumulated turn cost only
	distance    float64             // accumulated meter
	sortcost    float64             // cost shaped with the remaining-distance estimate, heap rank
}

func (l *Label) Predecessor() uint32 {
	return l.predecessor
}

func (l *Label) EdgeId() datastructure.Index {
	return l.edgeId
}

func (l *Label) EndVertex() datastructure.Index {
	return l.endVertex
}

func (l *Label) Destination() int {
	return l.destination
}

func (l *Label) Cost() costfunction.Cost {
	return l.cost
}

func (l *Label) TurnCost() float64 {
	return l.turnCost
}

func (l *Label) Distance() float64 {
	return l.distance
}

// LabelSet is the working memory and result store of one bounded router
// invocation: an arena of labels addressed by index, capped by the maximum
// path distance of that search. shared with the State it populates so labels
// outlive the search call. labels are never mutated after the search ends.
type LabelSet struct {
	labels      []Label
	maxDistance float64
}

func NewLabelSet(maxDistance float64) *LabelSet {
	return &LabelSet{
		labels:      make([]Label, 0, 64),
		maxDistance: maxDistance,
	}
}

// MaxDistance is the distance budget of the search this set belongs to; no
// label whose accumulated distance exceeds it is ever admitted.
func (ls *LabelSet) MaxDistance() float64 {
	return ls.maxDistance
}

func (ls *LabelSet) Put(l Label) uint32 {
	idx := uint32(len(ls.labels))
	ls.labels = append(ls.labels, l)
	return idx
}

func (ls *LabelSet) At(idx uint32) *Label {
	return &ls.labels[idx]
}

func (ls *LabelSet) Len() int {
	return len(ls.labels)
}
