package geo

import (
	"math"

	"github.com/janusz-anue/valhalla/pkg/util"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) GetLat() float64 {
	return c.Lat
}

func (c Coordinate) GetLon() float64 {
	return c.Lon
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

const (
	earthRadiusKM = 6371.0

	metersPerDegreeLat = 110567.0
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

// CalculateHaversineDistance. calculate haversine distance in km
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = util.DegreeToRadians(latOne)
	longOne = util.DegreeToRadians(longOne)
	latTwo = util.DegreeToRadians(latTwo)
	longTwo = util.DegreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

// GreatCircleDistance. haversine distance between two coordinates in meter.
func GreatCircleDistance(a, b Coordinate) float64 {
	return CalculateHaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon) * 1000.0
}

// GetDestinationPoint returns the destination point given the starting point, bearing and distance
// dist in km
func GetDestinationPoint(lat1, lon1 float64, bearing float64, dist float64) (float64, float64) {

	dr := dist / earthRadiusKM

	bearing = util.DegreeToRadians(bearing)

	lat1 = util.DegreeToRadians(lat1)
	lon1 = util.DegreeToRadians(lon1)

	lat2Part1 := math.Sin(lat1) * math.Cos(dr)
	lat2Part2 := math.Cos(lat1) * math.Sin(dr) * math.Cos(bearing)

	lat2 := math.Asin(lat2Part1 + lat2Part2)

	lon2Part1 := math.Sin(bearing) * math.Sin(dr) * math.Cos(lat1)
	lon2Part2 := math.Cos(dr) - (math.Sin(lat1) * math.Sin(lat2))

	lon2 := lon1 + math.Atan2(lon2Part1, lon2Part2)

	return util.RadiansToDegree(lat2), normalizeLongitude(util.RadiansToDegree(lon2))
}

// normalizeLongitude. long in degree
func normalizeLongitude(long float64) float64 {
	return math.Mod((long+540), 360) - 180.0
}

// DistanceApproximator approximates squared distances in meter around a fixed
// reference coordinate with a flat equirectangular projection. much cheaper
// than haversine inside the router's inner loop, accurate enough within a
// search-radius sized neighborhood.
type DistanceApproximator struct {
	refLat          float64
	refLon          float64
	metersPerLonDeg float64
}

func NewDistanceApproximator(ref Coordinate) DistanceApproximator {
	return DistanceApproximator{
		refLat:          ref.Lat,
		refLon:          ref.Lon,
		metersPerLonDeg: metersPerDegreeLat * math.Cos(util.DegreeToRadians(ref.Lat)),
	}
}

func (da DistanceApproximator) DistanceSquared(c Coordinate) float64 {
	x := (c.Lon - da.refLon) * da.metersPerLonDeg
	y := (c.Lat - da.refLat) * metersPerDegreeLat
	return x*x + y*y
}

func (da DistanceApproximator) Distance(c Coordinate) float64 {
	return math.Sqrt(da.DistanceSquared(c))
}
