package robot

import (
	"fmt"

	"github.com/teslashibe/go-spacejockey/pkg/geom"
	"github.com/teslashibe/go-spacejockey/pkg/protocol"
)

// Configuration is the pose of the three feet. It stores values only;
// keeping the chain lengths inside the extension limits is the planner's job.
type Configuration struct {
	Front  geom.AngledPoint `json:"front_foot"`
	Middle geom.AngledPoint `json:"middle_foot"`
	Rear   geom.AngledPoint `json:"rear_foot"`
}

// NewConfiguration lays the feet out in a straight line through origin,
// spacing meters apart, all facing origin.Theta.
func NewConfiguration(origin geom.AngledPoint, spacing float64) Configuration {
	front := geom.Offset(origin.Point, spacing, origin.Theta)
	rear := geom.Offset(origin.Point, -spacing, origin.Theta)
	return Configuration{
		Front:  geom.AngledPoint{Point: front, Theta: origin.Theta},
		Middle: origin,
		Rear:   geom.AngledPoint{Point: rear, Theta: origin.Theta},
	}
}

// At returns the foot at configuration index i (0 front, 1 middle, 2 rear).
func (c Configuration) At(i int) geom.AngledPoint {
	switch i {
	case 1:
		return c.Middle
	case 2:
		return c.Rear
	default:
		return c.Front
	}
}

// Foot returns the named foot.
func (c Configuration) Foot(s Segment) (geom.AngledPoint, bool) {
	i, ok := IndexOf(string(s))
	if !ok {
		return geom.AngledPoint{}, false
	}
	return c.At(i), true
}

// Feet returns the feet in configuration order.
func (c Configuration) Feet() [3]geom.AngledPoint {
	return [3]geom.AngledPoint{c.Front, c.Middle, c.Rear}
}

// Clone returns an independent copy.
func (c Configuration) Clone() Configuration {
	return c
}

// FrontSpan is the distance from the middle foot to the front foot.
func (c Configuration) FrontSpan() float64 {
	return geom.Distance(c.Middle.Point, c.Front.Point)
}

// RearSpan is the distance from the middle foot to the rear foot.
func (c Configuration) RearSpan() float64 {
	return geom.Distance(c.Middle.Point, c.Rear.Point)
}

// WithinLimits reports whether both spans lie in [min, max], allowing ferr
// of slack at either end.
func (c Configuration) WithinLimits(min, max, ferr float64) bool {
	in := func(d float64) bool { return d >= min-ferr && d <= max+ferr }
	return in(c.FrontSpan()) && in(c.RearSpan())
}

func (c Configuration) String() string {
	return fmt.Sprintf("front=%s middle=%s rear=%s", c.Front, c.Middle, c.Rear)
}

func (c *Configuration) set(i int, p geom.AngledPoint) {
	switch i {
	case 1:
		c.Middle = p
	case 2:
		c.Rear = p
	default:
		c.Front = p
	}
}

// Apply writes the action's target pose into the foot it names, then
// copies the rear heading onto the middle foot. Actions naming something
// other than a foot (the camera) land on the front foot; fellBack reports
// when that happened.
func (c *Configuration) Apply(a protocol.PlannerAction) (fellBack bool) {
	idx, fellBack := IndexOrDefault(a.NodeName)
	c.set(idx, geom.Pose(a.X, a.Y, a.Theta))
	c.Middle.Theta = c.Rear.Theta
	return fellBack
}
