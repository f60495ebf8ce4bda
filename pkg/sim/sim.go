// Package sim runs a planner offline against its own dead-reckoned
// estimate and plots the result.
package sim

import (
	"errors"
	"fmt"

	"github.com/teslashibe/go-spacejockey/pkg/geom"
	"github.com/teslashibe/go-spacejockey/pkg/planner"
	"github.com/teslashibe/go-spacejockey/pkg/protocol"
	"github.com/teslashibe/go-spacejockey/pkg/robot"
	"github.com/teslashibe/go-spacejockey/pkg/waypoint"
)

// ErrTickLimit is returned when the queue has not drained in time.
var ErrTickLimit = errors.New("tick limit reached before queue drained")

// Step is one recorded tick.
type Step struct {
	Tick    uint64
	State   planner.State
	Action  *protocol.PlannerAction
	Reached *waypoint.Waypoint
	// Pose is the planner's estimate after the tick.
	Pose robot.Configuration
}

// Trace is the outcome of a simulation.
type Trace struct {
	Start robot.Configuration
	Steps []Step
	// Completed is true when the planner went idle.
	Completed bool
}

// Run ticks p until its queue drains or maxTicks ticks have elapsed.
// The planner should already hold its waypoints.
func Run(p *planner.Planner, maxTicks int) (Trace, error) {
	if maxTicks <= 0 {
		return Trace{}, fmt.Errorf("maxTicks must be positive, got %d", maxTicks)
	}

	tr := Trace{Start: p.Current()}
	for i := 0; i < maxTicks; i++ {
		res := p.Tick()
		tr.Steps = append(tr.Steps, Step{
			Tick:    p.Status().Ticks,
			State:   res.State,
			Action:  res.Action,
			Reached: res.Reached,
			Pose:    p.Next(),
		})
		if res.State == planner.Idle {
			tr.Completed = true
			return tr, nil
		}
	}
	return tr, fmt.Errorf("%w (%d ticks, %d waypoints left)", ErrTickLimit, maxTicks, len(p.Pending()))
}

// Actions returns every emitted action in order.
func (t Trace) Actions() []protocol.PlannerAction {
	var out []protocol.PlannerAction
	for _, s := range t.Steps {
		if s.Action != nil {
			out = append(out, *s.Action)
		}
	}
	return out
}

// Reached returns the waypoints popped during the run.
func (t Trace) Reached() []waypoint.Waypoint {
	var out []waypoint.Waypoint
	for _, s := range t.Steps {
		if s.Reached != nil {
			out = append(out, *s.Reached)
		}
	}
	return out
}

// Path returns the middle foot positions, starting with the initial pose
// and adding a point whenever the middle foot moved.
func (t Trace) Path() []geom.Point {
	path := []geom.Point{t.Start.Middle.Point}
	for _, s := range t.Steps {
		if p := s.Pose.Middle.Point; p != path[len(path)-1] {
			path = append(path, p)
		}
	}
	return path
}

// Final returns the last estimated pose.
func (t Trace) Final() robot.Configuration {
	if len(t.Steps) == 0 {
		return t.Start
	}
	return t.Steps[len(t.Steps)-1].Pose
}
