package matcher

import (
	"errors"
	"math"

	"github.com/janusz-anue/valhalla/pkg"
	"github.com/janusz-anue/valhalla/pkg/util"
)

var (
	ErrInvalidBeta              = errors.New("expect beta to be positive")
	ErrInvalidTurnPenaltyFactor = errors.New("expect turn penalty factor to be nonnegative")
	ErrPredecessorNotRouted     = errors.New("the predecessor of current state must have been routed")
)

// TurnCostTable maps the turn angle measured from the reversal of the
// incoming direction (0 = u-turn, 180 = straight on, see geo.TurnDegree180)
// to its penalty contribution: factor * exp(-index/45). u-turns are penalized
// hardest. all zeros when the factor is zero.
type TurnCostTable [pkg.MAX_TURN_DEGREE + 1]float64

func NewTurnCostTable(turnPenaltyFactor float64) (TurnCostTable, error) {
	var table TurnCostTable

	if turnPenaltyFactor < 0 {
		return table, util.WrapErrorf(nil, ErrInvalidTurnPenaltyFactor,
			"turn penalty factor %f is negative", turnPenaltyFactor)
	}

	if turnPenaltyFactor > 0 {
		for i := 0; i <= pkg.MAX_TURN_DEGREE; i++ {
			table[i] = turnPenaltyFactor * math.Exp(-float64(i)/pkg.TURN_PENALTY_DECAY_DEGREE)
		}
	}

	return table, nil
}

func (t *TurnCostTable) Cost(turnDegree int) float64 {
	if turnDegree < 0 {
		turnDegree = 0
	}
	if turnDegree > pkg.MAX_TURN_DEGREE {
		turnDegree = pkg.MAX_TURN_DEGREE
	}
	return t[turnDegree]
}
