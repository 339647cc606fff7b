package datastructure

import (
	"time"

	"github.com/janusz-anue/valhalla/pkg/geo"
)

// GPSPoint is one raw measurement of a trace. immutable once ingested, the
// matcher only reads it through accessors.
type GPSPoint struct {
	lon          float64
	lat          float64
	time         time.Time
	searchRadius float64 // meter, candidate snapping radius around the fix
}

func NewGPSPoint(lat, lon float64, t time.Time, searchRadius float64) *GPSPoint {
	return &GPSPoint{
		lon:          lon,
		lat:          lat,
		time:         t,
		searchRadius: searchRadius,
	}
}

func (gp *GPSPoint) Lon() float64 {
	return gp.lon
}

func (gp *GPSPoint) Lat() float64 {
	return gp.lat
}

func (gp *GPSPoint) Time() time.Time {
	return gp.time
}

func (gp *GPSPoint) SearchRadius() float64 {
	return gp.searchRadius
}

func (gp *GPSPoint) Coordinate() geo.Coordinate {
	return geo.NewCoordinate(gp.lat, gp.lon)
}

type MatchedGPSPoint struct {
	gpsPoint     *GPSPoint
	edgeId       Index
	matchedCoord geo.Coordinate
}

func NewMatchedGPSPoint(gpsPoint *GPSPoint, edgeId Index, matchedCoord geo.Coordinate) *MatchedGPSPoint {
	return &MatchedGPSPoint{
		gpsPoint:     gpsPoint,
		edgeId:       edgeId,
		matchedCoord: matchedCoord,
	}
}

func (m *MatchedGPSPoint) GetGpsPoint() *GPSPoint {
	return m.gpsPoint
}

func (m *MatchedGPSPoint) GetEdgeId() Index {
	return m.edgeId
}

func (m *MatchedGPSPoint) GetMatchedCoord() geo.Coordinate {
	return m.matchedCoord
}
