package matcher

import (
	"testing"

	"github.com/janusz-anue/valhalla/pkg/costfunction"
	"github.com/janusz-anue/valhalla/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateIdValidity(t *testing.T) {
	var zero StateId
	assert.False(t, zero.IsValid())

	sid := NewStateId(0, 0)
	assert.True(t, sid.IsValid())
	assert.Equal(t, uint32(0), sid.Time())
	assert.Equal(t, uint32(0), sid.Id())

	sid = NewStateId(3, 7)
	assert.Equal(t, uint32(3), sid.Time())
	assert.Equal(t, uint32(7), sid.Id())
}

func TestStateSetRoute(t *testing.T) {
	cand := NewCandidate(0, 0.5, geo.NewCoordinate(0, 0), 3.0)
	left := NewState(NewStateId(0, 0), cand)
	right := NewState(NewStateId(1, 0), cand)
	other := NewState(NewStateId(1, 1), cand)

	assert.False(t, left.Routed())
	assert.Nil(t, left.LastLabel(right))

	labelSet := NewLabelSet(100)
	labelIdx := labelSet.Put(Label{
		destination: 1,
		cost:        costfunction.NewCost(6, 6),
		distance:    60,
	})

	// destination 1 corresponds to the first unreached state, destination 0
	// is the origin itself
	left.SetRoute([]StateId{right.Stateid(), other.Stateid()}, map[int]uint32{1: labelIdx}, labelSet)

	require.True(t, left.Routed())

	label := left.LastLabel(right)
	require.NotNil(t, label)
	assert.InDelta(t, 6.0, label.Cost().Value, 1e-9)
	assert.InDelta(t, 60.0, label.Distance(), 1e-9)

	// absence after routing means unreachable, not "not yet searched"
	assert.Nil(t, left.LastLabel(other))
}

func TestStateSetRoutePanicsOnSecondInstall(t *testing.T) {
	cand := NewCandidate(0, 0.5, geo.NewCoordinate(0, 0), 3.0)
	state := NewState(NewStateId(0, 0), cand)
	labelSet := NewLabelSet(100)

	state.SetRoute(nil, nil, labelSet)
	assert.Panics(t, func() {
		state.SetRoute(nil, nil, labelSet)
	})
}
