package costfunction

import (
	"github.com/janusz-anue/valhalla/pkg"
	"github.com/janusz-anue/valhalla/pkg/datastructure"
)

// Cost is an accumulated (cost, elapsed time) pair. cost is in abstract cost
// units (seconds for the default costings), secs is always wall-clock travel
// time in seconds.
type Cost struct {
	Value float64
	Secs  float64
}

func NewCost(value, secs float64) Cost {
	return Cost{Value: value, Secs: secs}
}

func (c Cost) Add(o Cost) Cost {
	return Cost{Value: c.Value + o.Value, Secs: c.Secs + o.Secs}
}

func (c Cost) Scale(f float64) Cost {
	return Cost{Value: c.Value * f, Secs: c.Secs * f}
}

type EdgeAttributes interface {
	GetLength() float64
	GetSpeed() float64
	GetHighwayType() pkg.OsmHighwayType
	GetEdgeId() datastructure.Index
}

// CostFunction prices a full traversal of one directed edge for one travel
// mode. implementations must be safe for concurrent readers.
type CostFunction interface {
	EdgeCost(e EdgeAttributes) Cost
}

const (
	bicycleSpeedCapMPS  = 4.5
	pedestrianSpeedMPS  = 1.4
	serviceRoadPenalty  = 1.15
	trackRoadPenalty    = 1.4
	minDrivableSpeedMPS = 1.0
)

// CarCostFunction. edge cost is driving time in seconds at the edge speed,
// with mild penalties on service/track roads so the router prefers the
// regular network when times tie.
type CarCostFunction struct{}

func NewCarCostFunction() *CarCostFunction {
	return &CarCostFunction{}
}

func (c *CarCostFunction) EdgeCost(e EdgeAttributes) Cost {
	speed := e.GetSpeed()
	if speed < minDrivableSpeedMPS {
		speed = minDrivableSpeedMPS
	}
	secs := e.GetLength() / speed

	factor := 1.0
	switch e.GetHighwayType() {
	case pkg.SERVICE:
		factor = serviceRoadPenalty
	case pkg.TRACK:
		factor = trackRoadPenalty
	}

	return NewCost(secs*factor, secs)
}

type BicycleCostFunction struct{}

func NewBicycleCostFunction() *BicycleCostFunction {
	return &BicycleCostFunction{}
}

func (c *BicycleCostFunction) EdgeCost(e EdgeAttributes) Cost {
	speed := e.GetSpeed()
	if speed > bicycleSpeedCapMPS {
		speed = bicycleSpeedCapMPS
	}
	if speed < minDrivableSpeedMPS {
		speed = minDrivableSpeedMPS
	}
	secs := e.GetLength() / speed
	return NewCost(secs, secs)
}

type PedestrianCostFunction struct{}

func NewPedestrianCostFunction() *PedestrianCostFunction {
	return &PedestrianCostFunction{}
}

func (c *PedestrianCostFunction) EdgeCost(e EdgeAttributes) Cost {
	secs := e.GetLength() / pedestrianSpeedMPS
	return NewCost(secs, secs)
}

// DefaultModeCosting returns the cost-function table indexed by
// pkg.TravelMode.
func DefaultModeCosting() []CostFunction {
	table := make([]CostFunction, pkg.NUM_TRAVEL_MODES)
	table[pkg.CAR] = NewCarCostFunction()
	table[pkg.BICYCLE] = NewBicycleCostFunction()
	table[pkg.PEDESTRIAN] = NewPedestrianCostFunction()
	return table
}
