package osmparser

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/janusz-anue/valhalla/pkg"
	"github.com/janusz-anue/valhalla/pkg/datastructure"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

type nodeCoord struct {
	lat float64
	lon float64
}

// default speeds in km/h per highway class, used when a way carries no usable
// maxspeed tag
var defaultSpeedKMH = map[pkg.OsmHighwayType]float64{
	pkg.MOTORWAY:       100,
	pkg.TRUNK:          85,
	pkg.PRIMARY:        65,
	pkg.SECONDARY:      55,
	pkg.TERTIARY:       45,
	pkg.RESIDENTIAL:    30,
	pkg.SERVICE:        20,
	pkg.UNCLASSIFIED:   40,
	pkg.MOTORWAY_LINK:  60,
	pkg.TRUNK_LINK:     50,
	pkg.PRIMARY_LINK:   45,
	pkg.SECONDARY_LINK: 40,
	pkg.TERTIARY_LINK:  35,
	pkg.LIVING_STREET:  10,
	pkg.ROAD:           40,
	pkg.TRACK:          15,
	pkg.MOTORROAD:      90,
}

// BuildGraphFromPBF reads an osm pbf extract and builds the routable graph:
// one vertex per way node, one directed edge per consecutive node pair (two
// edges unless the way is oneway).
func BuildGraphFromPBF(mapFile string, log *zap.Logger) (*datastructure.Graph, error) {
	// pass 1: collect the ids of nodes referenced by routable ways
	wayNodes := make(map[int64]struct{})

	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := osmpbf.New(context.Background(), f, 0)
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || !isRoutableWay(way) {
			continue
		}
		for _, wn := range way.Nodes {
			wayNodes[int64(wn.ID)] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, err
	}
	scanner.Close()

	log.Info("collected routable way nodes", zap.Int("nodes", len(wayNodes)))

	// pass 2: node coordinates, then edges
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}

	coords := make(map[int64]nodeCoord, len(wayNodes))
	graph := datastructure.NewGraph()
	vertexIds := make(map[int64]datastructure.Index, len(wayNodes))

	scanner = osmpbf.New(context.Background(), f, 0)
	defer scanner.Close()
	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			if _, used := wayNodes[int64(obj.ID)]; used {
				coords[int64(obj.ID)] = nodeCoord{lat: obj.Lat, lon: obj.Lon}
			}
		case *osm.Way:
			if !isRoutableWay(obj) {
				continue
			}
			addWayEdges(graph, obj, coords, vertexIds)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	log.Info("graph built",
		zap.Int("vertices", graph.NumberOfVertices()),
		zap.Int("edges", graph.NumberOfEdges()))
	return graph, nil
}

func isRoutableWay(way *osm.Way) bool {
	hw := way.Tags.Find("highway")
	if hw == "" || len(way.Nodes) < 2 {
		return false
	}
	return pkg.GetHighwayType(hw) != pkg.UNKNOWN
}

func addWayEdges(graph *datastructure.Graph, way *osm.Way,
	coords map[int64]nodeCoord, vertexIds map[int64]datastructure.Index) {
	highwayType := pkg.GetHighwayType(way.Tags.Find("highway"))
	speed := waySpeedMPS(way, highwayType)
	oneway := way.Tags.Find("oneway") == "yes" || highwayType == pkg.MOTORWAY || highwayType == pkg.MOTORWAY_LINK

	vertexOf := func(osmId int64) (datastructure.Index, bool) {
		if v, ok := vertexIds[osmId]; ok {
			return v, true
		}
		c, ok := coords[osmId]
		if !ok {
			return datastructure.INVALID_INDEX, false
		}
		v := graph.AddVertex(c.lat, c.lon)
		vertexIds[osmId] = v
		return v, true
	}

	for i := 0; i+1 < len(way.Nodes); i++ {
		from, okFrom := vertexOf(int64(way.Nodes[i].ID))
		to, okTo := vertexOf(int64(way.Nodes[i+1].ID))
		if !okFrom || !okTo {
			continue // node outside the extract
		}
		graph.AddEdge(from, to, speed, highwayType)
		if !oneway {
			graph.AddEdge(to, from, speed, highwayType)
		}
	}
}

func waySpeedMPS(way *osm.Way, highwayType pkg.OsmHighwayType) float64 {
	kmh := defaultSpeedKMH[pkg.UNCLASSIFIED]
	if v, ok := defaultSpeedKMH[highwayType]; ok {
		kmh = v
	}

	if val := way.Tags.Find("maxspeed"); val != "" {
		val = strings.TrimSuffix(strings.TrimSpace(val), " km/h")
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed > 0 {
			kmh = parsed
		}
	}

	return kmh / 3.6
}
