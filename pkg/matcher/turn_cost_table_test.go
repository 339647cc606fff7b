package matcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnCostTable(t *testing.T) {
	testCases := []struct {
		name              string
		turnPenaltyFactor float64
	}{
		{name: "factor 10", turnPenaltyFactor: 10.0},
		{name: "factor 0.5", turnPenaltyFactor: 0.5},
		{name: "factor 500", turnPenaltyFactor: 500.0},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTurnCostTable(tt.turnPenaltyFactor)
			require.NoError(t, err)

			assert.InDelta(t, tt.turnPenaltyFactor, table[0], 1e-9)
			assert.InDelta(t, tt.turnPenaltyFactor*math.Exp(-4), table[180], 1e-9)

			for i := 1; i <= 180; i++ {
				assert.LessOrEqual(t, table[i], table[i-1],
					"turn cost must be non-increasing in angle")
			}
		})
	}
}

func TestTurnCostTableZeroFactor(t *testing.T) {
	table, err := NewTurnCostTable(0)
	require.NoError(t, err)
	for i := 0; i <= 180; i++ {
		assert.Zero(t, table[i])
	}
}

func TestTurnCostTableNegativeFactor(t *testing.T) {
	_, err := NewTurnCostTable(-1.0)
	assert.ErrorIs(t, err, ErrInvalidTurnPenaltyFactor)
}

func TestTurnCostTableClamp(t *testing.T) {
	table, err := NewTurnCostTable(10.0)
	require.NoError(t, err)

	assert.Equal(t, table[0], table.Cost(-5))
	assert.Equal(t, table[180], table.Cost(200))
	assert.Equal(t, table[90], table.Cost(90))
}
