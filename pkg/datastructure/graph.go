package datastructure

import (
	"math"

	"github.com/janusz-anue/valhalla/pkg"
	"github.com/janusz-anue/valhalla/pkg/geo"
)

type Index uint32

const INVALID_INDEX Index = math.MaxUint32

type Vertex struct {
	lat float64
	lon float64
	id  Index
}

func NewVertex(lat, lon float64, id Index) *Vertex {
	return &Vertex{
		lat: lat,
		lon: lon,
		id:  id,
	}
}

func (v *Vertex) GetID() Index {
	return v.id
}

func (v *Vertex) GetLat() float64 {
	return v.lat
}

func (v *Vertex) GetLon() float64 {
	return v.lon
}

// Edge is one directed road segment. two-way roads become two edges.
type Edge struct {
	edgeId      Index
	tail        Index
	head        Index
	dist        float64 // meter
	speed       float64 // meter/second
	highwayType pkg.OsmHighwayType
	// bearing of the segment leaving tail / entering head, in degree.
	// used for the turn-angle lookup when the router crosses a vertex.
	exitHeading  float64
	entryHeading float64
}

func (e *Edge) GetEdgeId() Index {
	return e.edgeId
}

func (e *Edge) GetTail() Index {
	return e.tail
}

func (e *Edge) GetHead() Index {
	return e.head
}

func (e *Edge) GetLength() float64 {
	return e.dist
}

func (e *Edge) GetSpeed() float64 {
	return e.speed
}

func (e *Edge) GetHighwayType() pkg.OsmHighwayType {
	return e.highwayType
}

func (e *Edge) GetExitHeading() float64 {
	return e.exitHeading
}

func (e *Edge) GetEntryHeading() float64 {
	return e.entryHeading
}

// Graph is an in-memory directed road network with adjacency lists.
// read-only after construction, safe for concurrent readers.
type Graph struct {
	vertices []*Vertex
	edges    []*Edge
	outEdges [][]Index // vertex id -> out edge ids
}

func NewGraph() *Graph {
	return &Graph{
		vertices: make([]*Vertex, 0),
		edges:    make([]*Edge, 0),
		outEdges: make([][]Index, 0),
	}
}

func (g *Graph) AddVertex(lat, lon float64) Index {
	id := Index(len(g.vertices))
	g.vertices = append(g.vertices, NewVertex(lat, lon, id))
	g.outEdges = append(g.outEdges, nil)
	return id
}

func (g *Graph) AddEdge(tail, head Index, speed float64, highwayType pkg.OsmHighwayType) Index {
	t := g.vertices[tail]
	h := g.vertices[head]

	dist := geo.CalculateHaversineDistance(t.GetLat(), t.GetLon(), h.GetLat(), h.GetLon()) * 1000.0
	heading := geo.BearingTo(t.GetLat(), t.GetLon(), h.GetLat(), h.GetLon())

	id := Index(len(g.edges))
	g.edges = append(g.edges, &Edge{
		edgeId:       id,
		tail:         tail,
		head:         head,
		dist:         dist,
		speed:        speed,
		highwayType:  highwayType,
		exitHeading:  heading,
		entryHeading: heading,
	})
	g.outEdges[tail] = append(g.outEdges[tail], id)
	return id
}

func (g *Graph) NumberOfVertices() int {
	return len(g.vertices)
}

func (g *Graph) NumberOfEdges() int {
	return len(g.edges)
}

func (g *Graph) GetVertex(id Index) *Vertex {
	return g.vertices[id]
}

func (g *Graph) GetVertexCoordinates(id Index) (float64, float64) {
	v := g.vertices[id]
	return v.lat, v.lon
}

func (g *Graph) GetOutEdge(id Index) *Edge {
	return g.edges[id]
}

func (g *Graph) ForOutEdgesOf(v Index, fn func(e *Edge)) {
	for _, edgeId := range g.outEdges[v] {
		fn(g.edges[edgeId])
	}
}

func (g *Graph) ForOutEdges(fn func(e *Edge)) {
	for _, e := range g.edges {
		fn(e)
	}
}
