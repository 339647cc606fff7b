package viterbi

import (
	"errors"

	"github.com/janusz-anue/valhalla/pkg"
	"github.com/janusz-anue/valhalla/pkg/matcher"
	"github.com/janusz-anue/valhalla/pkg/util"
)

var ErrInvalidSigmaZ = errors.New("expect gps sigma to be positive")

// NaiveViterbiSearch decodes a candidate column sequence with a plain
// column-by-column dynamic program: each column is fully finalized before any
// transition into the next column is scored, which is exactly the ordering
// the transition cost model's routing invariant requires. costs are negative
// log likelihoods, lower is better.
//
// implements matcher.ViterbiCapability: Predecessor reports the chosen
// predecessor of a finalized state, the invalid id otherwise.
type NaiveViterbiSearch struct {
	sigmaZ            float64
	invDoubleSqSigmaZ float64

	predecessors map[matcher.StateId]matcher.StateId
	costs        map[matcher.StateId]float64
}

func NewNaiveViterbiSearch(sigmaZ float64) (*NaiveViterbiSearch, error) {
	if sigmaZ <= 0 {
		return nil, util.WrapErrorf(nil, ErrInvalidSigmaZ, "sigma_z %f is not positive", sigmaZ)
	}
	return &NaiveViterbiSearch{
		sigmaZ:            sigmaZ,
		invDoubleSqSigmaZ: 1.0 / (2.0 * sigmaZ * sigmaZ),
		predecessors:      make(map[matcher.StateId]matcher.StateId),
		costs:             make(map[matcher.StateId]float64),
	}, nil
}

func (vs *NaiveViterbiSearch) Predecessor(id matcher.StateId) matcher.StateId {
	return vs.predecessors[id] // zero value = invalid
}

// emissionCost. gaussian negative log likelihood of the snap distance,
// constant terms dropped (they cancel inside one column).
func (vs *NaiveViterbiSearch) emissionCost(c matcher.Candidate) float64 {
	return c.Distance() * c.Distance() * vs.invDoubleSqSigmaZ
}

// Decode picks the most likely state per column given all prior columns and
// returns one state per measurement. when an entire column has no viable
// transition from its predecessor column (every candidate pair unreachable
// within budget), the sequence is broken at that point and decoding restarts
// fresh: the states before and after the break carry no predecessor link
// across it, which callers surface as separate match segments.
func (vs *NaiveViterbiSearch) Decode(columns []matcher.Column, tcm *matcher.TransitionCostModel) ([]matcher.StateId, error) {
	if len(columns) == 0 {
		return nil, nil
	}

	for _, state := range columns[0] {
		vs.costs[state.Stateid()] = vs.emissionCost(state.Candidate())
	}

	for t := 1; t < len(columns); t++ {
		leftColumn := columns[t-1]
		rightColumn := columns[t]

		bestCost := make([]float64, len(rightColumn))
		bestPred := make([]matcher.StateId, len(rightColumn))
		for j := range bestCost {
			bestCost[j] = pkg.INF_WEIGHT
		}

		for _, left := range leftColumn {
			leftCost, reached := vs.costs[left.Stateid()]
			if !reached {
				continue
			}
			// columns are rank-aligned: the model resolves the right-hand
			// state by the left state's rank, so a left state whose rank has
			// no counterpart in the right column cannot be scored
			if int(left.Stateid().Id()) >= len(rightColumn) {
				continue
			}
			for _, right := range rightColumn {
				transitionCost, err := tcm.TransitionCost(left.Stateid(), right.Stateid())
				if err != nil {
					return nil, err
				}
				if transitionCost == pkg.UNREACHABLE_TRANSITION_COST {
					continue
				}
				j := right.Stateid().Id()
				if total := leftCost + transitionCost; total < bestCost[j] {
					bestCost[j] = total
					bestPred[j] = left.Stateid()
				}
			}
		}

		// finalize the column only after every transition into it has been
		// scored, so the batched routing sees the whole column as unreached
		columnReached := false
		for j, right := range rightColumn {
			if bestCost[j] >= pkg.INF_WEIGHT {
				continue
			}
			vs.costs[right.Stateid()] = bestCost[j] + vs.emissionCost(right.Candidate())
			vs.predecessors[right.Stateid()] = bestPred[j]
			columnReached = true
		}

		if !columnReached {
			// broken sequence: restart from this column
			for _, right := range rightColumn {
				vs.costs[right.Stateid()] = vs.emissionCost(right.Candidate())
			}
		}
	}

	return vs.backtrack(columns), nil
}

func (vs *NaiveViterbiSearch) backtrack(columns []matcher.Column) []matcher.StateId {
	result := make([]matcher.StateId, len(columns))

	cur := vs.argminOfColumn(columns[len(columns)-1])
	for t := len(columns) - 1; t >= 0; t-- {
		result[t] = cur
		if t == 0 {
			break
		}
		if pred := vs.Predecessor(cur); pred.IsValid() {
			cur = pred
		} else {
			// sequence break: continue from the best state of the previous column
			cur = vs.argminOfColumn(columns[t-1])
		}
	}
	return result
}

func (vs *NaiveViterbiSearch) argminOfColumn(column matcher.Column) matcher.StateId {
	best := matcher.StateId{}
	bestCost := pkg.INF_WEIGHT
	for _, state := range column {
		if cost, ok := vs.costs[state.Stateid()]; ok && cost < bestCost {
			bestCost = cost
			best = state.Stateid()
		}
	}
	if !best.IsValid() && len(column) > 0 {
		best = column[0].Stateid()
	}
	return best
}
