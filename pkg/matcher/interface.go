package matcher

import (
	"github.com/janusz-anue/valhalla/pkg/datastructure"
)

// GraphReader is the read-only road network view the router expands over.
// implementations must be safe for concurrent readers.
type GraphReader interface {
	GetOutEdge(id datastructure.Index) *datastructure.Edge
	ForOutEdgesOf(v datastructure.Index, fn func(e *datastructure.Edge))
	GetVertex(id datastructure.Index) *datastructure.Vertex
}

// ViterbiCapability is the one thing the cost model needs from the sequence
// decoder: which predecessor it has chosen so far for a state. an invalid
// result means the state has not been finalized yet. the cost model never
// mutates decoder state.
type ViterbiCapability interface {
	Predecessor(id StateId) StateId
}

// ColumnGetter returns the candidate column of one measurement time index.
type ColumnGetter func(time uint32) Column

// MeasurementGetter returns the raw measurement of one time index.
type MeasurementGetter func(time uint32) *datastructure.GPSPoint
