package planner

import (
	"errors"
	"math"

	"github.com/teslashibe/go-spacejockey/internal/config"
	"github.com/teslashibe/go-spacejockey/pkg/geom"
	"github.com/teslashibe/go-spacejockey/pkg/protocol"
	"github.com/teslashibe/go-spacejockey/pkg/robot"
	"github.com/teslashibe/go-spacejockey/pkg/waypoint"
)

// ErrCoincident is returned when the target sits on the middle foot and
// has no defined bearing.
var ErrCoincident = errors.New("target coincides with middle foot")

// Constants are the geometric limits the engine plans within.
type Constants struct {
	ExtendMin float64
	ExtendMax float64
	AngleMax  float64
	ViewMin   float64
	ViewOpt   float64
	ViewMax   float64
	Ferr      float64
}

// ConstantsFrom extracts engine constants from the planner configuration.
func ConstantsFrom(cfg config.Planner) Constants {
	return Constants{
		ExtendMin: cfg.Extend.Min,
		ExtendMax: cfg.Extend.Max,
		AngleMax:  cfg.Angle.Max,
		ViewMin:   cfg.View.Min,
		ViewOpt:   cfg.View.Opt,
		ViewMax:   cfg.View.Max,
		Ferr:      cfg.Ferr,
	}
}

// Branch names the rule that produced a decision.
type Branch int

const (
	BranchRotateFront Branch = iota + 1
	BranchRotateRear
	BranchView
	BranchExtendFront
	BranchRetractRear
	BranchAdvanceMiddle
)

func (b Branch) String() string {
	switch b {
	case BranchRotateFront:
		return "rotate-front"
	case BranchRotateRear:
		return "rotate-rear"
	case BranchView:
		return "view"
	case BranchExtendFront:
		return "extend-front"
	case BranchRetractRear:
		return "retract-rear"
	case BranchAdvanceMiddle:
		return "advance-middle"
	default:
		return "unknown"
	}
}

// Rotating reports whether the branch turns a foot.
func (b Branch) Rotating() bool {
	return b == BranchRotateFront || b == BranchRotateRear
}

// Decision is one incremental move: which node goes where.
type Decision struct {
	Branch     Branch
	Node       robot.Segment
	ActionType protocol.ActionType
	Theta      float64
	// Extension is the signed distance from the middle foot along Theta.
	Extension float64
	Target    geom.Point
}

// Action turns the decision into a planner action with the given id.
func (d Decision) Action(id uint64) protocol.PlannerAction {
	return protocol.PlannerAction{
		MajorID:    id,
		NodeName:   string(d.Node),
		ActionType: d.ActionType,
		Theta:      d.Theta,
		X:          d.Target.X,
		Y:          d.Target.Y,
	}
}

// Decide picks the single move that best advances conf toward wp.
// It is pure: the same inputs always give the same decision.
//
// Misaligned feet are turned first, the one further off the target
// bearing going first (front on ties), each turn limited to AngleMax.
// Once both ends face the target the robot inches forward: extend the
// front, pull in the rear, then advance the middle. VIEW waypoints stop
// ViewOpt short and end with a camera action once inside ViewMax.
func Decide(k Constants, conf robot.Configuration, wp waypoint.Waypoint) (Decision, error) {
	middle := conf.Middle
	targetDist := geom.Distance(middle.Point, wp.Point)
	if targetDist < k.Ferr {
		return Decision{}, ErrCoincident
	}
	targetAngle := geom.Bearing(middle.Point, wp.Point)

	if wp.Kind == waypoint.View {
		targetDist -= k.ViewOpt
	}

	frontErr := geom.AngleDiff(targetAngle, conf.Front.Theta)
	rearErr := geom.AngleDiff(targetAngle, conf.Rear.Theta)

	d := Decision{
		ActionType: protocol.ActionStep,
		Theta:      targetAngle,
		Extension:  k.ExtendMin,
	}

	switch {
	case math.Abs(frontErr) > k.Ferr || math.Abs(rearErr) > k.Ferr:
		if math.Abs(frontErr) >= math.Abs(rearErr) {
			// swing the front about the rear
			d.Branch = BranchRotateFront
			d.Node = robot.FrontFoot
			d.Theta = geom.AngleDiff(conf.Rear.Theta+geom.ClampMagnitude(rearErr, k.AngleMax), 0)
		} else {
			// swing the rear about the front
			d.Branch = BranchRotateRear
			d.Node = robot.RearFoot
			d.Theta = geom.AngleDiff(conf.Front.Theta+geom.ClampMagnitude(frontErr, k.AngleMax), 0)
			d.Extension = -k.ExtendMin
		}
	case wp.Kind == waypoint.View && targetDist < k.ViewMax:
		d.Branch = BranchView
		d.Node = robot.Camera
		d.ActionType = protocol.ActionView
	case conf.FrontSpan() < k.ExtendMax-k.Ferr:
		d.Branch = BranchExtendFront
		d.Node = robot.FrontFoot
		d.Extension = k.ExtendMax
	case conf.RearSpan() > k.ExtendMin+k.Ferr:
		d.Branch = BranchRetractRear
		d.Node = robot.RearFoot
		d.Extension = -k.ExtendMin
	default:
		d.Branch = BranchAdvanceMiddle
		d.Node = robot.MiddleFoot
		d.Extension = math.Min(targetDist, k.ExtendMax-k.ExtendMin)
	}

	d.Target = geom.Offset(middle.Point, d.Extension, d.Theta)
	return d, nil
}
