package geo

import (
	"math"

	"github.com/janusz-anue/valhalla/pkg/util"
)

/*
BearingTo. compute the initial bearing of the segment (p1,p2) in degree [0,360).
https://www.movable-type.co.uk/scripts/latlong.html
*/
func BearingTo(p1Lat, p1Lon, p2Lat, p2Lon float64) float64 {

	dLon := util.DegreeToRadians(p2Lon - p1Lon)

	lat1 := util.DegreeToRadians(p1Lat)
	lat2 := util.DegreeToRadians(p2Lat)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brng := math.Mod(util.RadiansToDegree(math.Atan2(y, x))+360, 360.0)

	return brng
}

// TurnDegree. absolute turn angle in degree [0,180] between an incoming
// heading and an outgoing heading. 0 = straight on, 180 = u-turn.
func TurnDegree(inHeading, outHeading float64) int {
	delta := math.Abs(outHeading - inHeading)
	if delta > 180 {
		delta = 360 - delta
	}
	return int(math.Round(delta))
}

// TurnDegree180. turn angle measured from the reversal of the incoming
// direction: 0 = u-turn, 180 = straight on. this is the index convention of
// the matcher's turn-cost table, which penalizes u-turns hardest.
func TurnDegree180(inHeading, outHeading float64) int {
	return 180 - TurnDegree(inHeading, outHeading)
}
