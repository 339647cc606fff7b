package matcher

import (
	"github.com/janusz-anue/valhalla/pkg"
	"github.com/janusz-anue/valhalla/pkg/datastructure"
	"github.com/janusz-anue/valhalla/pkg/geo"
)

// one degree of longitude at the equator in meter
const metersPerDegree = 111194.92664455873

func coordAt(xMeters, yMeters float64) geo.Coordinate {
	return geo.NewCoordinate(yMeters/metersPerDegree, xMeters/metersPerDegree)
}

// lineGraphEastward builds vertices along the equator at the given x offsets
// (meter) connected by consecutive one-way edges, all with the same speed.
func lineGraphEastward(speedMPS float64, xs ...float64) (*datastructure.Graph, []datastructure.Index) {
	g := datastructure.NewGraph()
	vertices := make([]datastructure.Index, len(xs))
	for i, x := range xs {
		c := coordAt(x, 0)
		vertices[i] = g.AddVertex(c.GetLat(), c.GetLon())
	}
	edges := make([]datastructure.Index, 0, len(xs)-1)
	for i := 0; i+1 < len(xs); i++ {
		edges = append(edges, g.AddEdge(vertices[i], vertices[i+1], speedMPS, pkg.RESIDENTIAL))
	}
	return g, edges
}

type fakeViterbi struct {
	preds map[StateId]StateId
}

func newFakeViterbi() *fakeViterbi {
	return &fakeViterbi{preds: make(map[StateId]StateId)}
}

func (f *fakeViterbi) Predecessor(id StateId) StateId {
	return f.preds[id]
}

// countingGraphReader counts edge lookups so tests can prove the router was
// not re-invoked.
type countingGraphReader struct {
	graph        *datastructure.Graph
	edgeLookups  int
	edgeForCalls int
}

func (c *countingGraphReader) GetOutEdge(id datastructure.Index) *datastructure.Edge {
	c.edgeLookups++
	return c.graph.GetOutEdge(id)
}

func (c *countingGraphReader) ForOutEdgesOf(v datastructure.Index, fn func(e *datastructure.Edge)) {
	c.edgeForCalls++
	c.graph.ForOutEdgesOf(v, fn)
}

func (c *countingGraphReader) GetVertex(id datastructure.Index) *datastructure.Vertex {
	return c.graph.GetVertex(id)
}
