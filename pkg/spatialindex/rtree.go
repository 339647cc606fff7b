package spatialindex

import (
	"math"

	"github.com/janusz-anue/valhalla/pkg/datastructure"
	"github.com/janusz-anue/valhalla/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

const maxCandidateEdges = 20

// Rtree indexes directed edges by the bounding box of their endpoints, used
// to find the edges a gps fix can snap to.
type Rtree struct {
	tr *rtree.RTreeG[datastructure.Index]
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[datastructure.Index]
	return &Rtree{
		tr: &tr,
	}
}

// Build. build r-tree, with each edge inflated by boundingBoxRadius (in km)
// so a radius search around a fix also hits edges it sits next to.
func (rt *Rtree) Build(graph *datastructure.Graph, boundingBoxRadius float64, log *zap.Logger) {
	log.Info("Building R-tree spatial index...", zap.Int("edges", graph.NumberOfEdges()))
	graph.ForOutEdges(func(e *datastructure.Edge) {
		fromLat, fromLon := graph.GetVertexCoordinates(e.GetTail())
		toLat, toLon := graph.GetVertexCoordinates(e.GetHead())

		lowerFromLat, lowerFromLon := geo.GetDestinationPoint(fromLat, fromLon, 225, boundingBoxRadius)
		upperFromLat, upperFromLon := geo.GetDestinationPoint(fromLat, fromLon, 45, boundingBoxRadius)

		lowerToLat, lowerToLon := geo.GetDestinationPoint(toLat, toLon, 225, boundingBoxRadius)
		upperToLat, upperToLon := geo.GetDestinationPoint(toLat, toLon, 45, boundingBoxRadius)

		minLat := math.Min(lowerFromLat, lowerToLat)
		minLon := math.Min(lowerFromLon, lowerToLon)
		maxLat := math.Max(upperFromLat, upperToLat)
		maxLon := math.Max(upperFromLon, upperToLon)

		rt.tr.Insert([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat}, e.GetEdgeId())
	})

	log.Info("R-tree spatial index built.")
}

// SearchWithinRadius search for all edges within radius (in km) from the
// query point (qLat, qLon), capped at maxCandidateEdges results.
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64) []datastructure.Index {
	lowerLat, lowerLon := geo.GetDestinationPoint(qLat, qLon, 225, radius)
	upperLat, upperLon := geo.GetDestinationPoint(qLat, qLon, 45, radius)

	results := make([]datastructure.Index, 0, 10)
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, edgeId datastructure.Index) bool {
			results = append(results, edgeId)
			return len(results) < maxCandidateEdges
		})
	return results
}
