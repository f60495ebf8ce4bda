package planner

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-spacejockey/internal/config"
	"github.com/teslashibe/go-spacejockey/pkg/geom"
	"github.com/teslashibe/go-spacejockey/pkg/protocol"
	"github.com/teslashibe/go-spacejockey/pkg/robot"
	"github.com/teslashibe/go-spacejockey/pkg/waypoint"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func testConstants() Constants {
	return ConstantsFrom(config.DefaultPlanner())
}

func moveTo(x, y float64) waypoint.Waypoint {
	return waypoint.Waypoint{Point: geom.Point{X: x, Y: y}, Kind: waypoint.Move}
}

func viewAt(x, y float64) waypoint.Waypoint {
	return waypoint.Waypoint{Point: geom.Point{X: x, Y: y}, Kind: waypoint.View}
}

// chain builds a configuration from explicit foot poses.
func chain(front, middle, rear geom.AngledPoint) robot.Configuration {
	return robot.Configuration{Front: front, Middle: middle, Rear: rear}
}

func TestDecide_AlignedAheadExtendsFront(t *testing.T) {
	k := testConstants()
	conf := robot.NewConfiguration(geom.Pose(0, 0, 0), k.ExtendMin)

	d, err := Decide(k, conf, moveTo(0.5, 0))
	require.NoError(t, err)

	assert.Equal(t, BranchExtendFront, d.Branch)
	assert.Equal(t, robot.FrontFoot, d.Node)
	assert.Equal(t, protocol.ActionStep, d.ActionType)
	assert.True(t, floatEquals(d.Theta, 0))
	assert.True(t, floatEquals(d.Target.X, k.ExtendMax), "x = %v", d.Target.X)
	assert.True(t, floatEquals(d.Target.Y, 0), "y = %v", d.Target.Y)
}

func TestDecide_AlignedNeverRotates(t *testing.T) {
	k := testConstants()
	for _, bearing := range []float64{0, 0.7, -2.1, math.Pi / 2, 3.0} {
		target := geom.Offset(geom.Point{X: 0.2, Y: -0.1}, 0.8, bearing)
		conf := robot.NewConfiguration(geom.Pose(0.2, -0.1, bearing), k.ExtendMin)

		d, err := Decide(k, conf, waypoint.Waypoint{Point: target, Kind: waypoint.Move})
		require.NoError(t, err)
		assert.False(t, d.Branch.Rotating(), "bearing %v chose %v", bearing, d.Branch)

		want := geom.Offset(conf.Middle.Point, k.ExtendMax, bearing)
		assert.InDelta(t, want.X, d.Target.X, floatTolerance)
		assert.InDelta(t, want.Y, d.Target.Y, floatTolerance)
	}
}

func TestDecide_RotationPicksLargerError(t *testing.T) {
	k := testConstants()
	target := moveTo(0, 1) // bearing π/2 from the origin

	tests := []struct {
		name      string
		frontTh   float64
		rearTh    float64
		wantNode  robot.Segment
		wantTheta float64
		wantExt   float64
	}{
		{
			name:      "front further off turns about rear",
			frontTh:   0,
			rearTh:    1.0,
			wantNode:  robot.FrontFoot,
			wantTheta: 1.3, // rear + clamp(π/2-1, 0.3)
			wantExt:   0.05,
		},
		{
			name:      "rear further off turns about front",
			frontTh:   1.2,
			rearTh:    0,
			wantNode:  robot.RearFoot,
			wantTheta: 1.5, // front + clamp(π/2-1.2, 0.3)
			wantExt:   -0.05,
		},
		{
			name:      "tie goes to front",
			frontTh:   0,
			rearTh:    0,
			wantNode:  robot.FrontFoot,
			wantTheta: 0.3,
			wantExt:   0.05,
		},
		{
			name:      "small error is not inflated",
			frontTh:   0,
			rearTh:    math.Pi/2 - 0.1,
			wantNode:  robot.FrontFoot,
			wantTheta: math.Pi / 2,
			wantExt:   0.05,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := chain(geom.Pose(0.05, 0, tt.frontTh), geom.Pose(0, 0, tt.rearTh), geom.Pose(-0.05, 0, tt.rearTh))

			d, err := Decide(k, conf, target)
			require.NoError(t, err)
			assert.True(t, d.Branch.Rotating())
			assert.Equal(t, tt.wantNode, d.Node)
			assert.InDelta(t, tt.wantTheta, d.Theta, floatTolerance)
			assert.InDelta(t, tt.wantExt, d.Extension, floatTolerance)

			want := geom.Offset(conf.Middle.Point, tt.wantExt, tt.wantTheta)
			assert.InDelta(t, want.X, d.Target.X, floatTolerance)
			assert.InDelta(t, want.Y, d.Target.Y, floatTolerance)
		})
	}
}

func TestDecide_RotationKeepsDirection(t *testing.T) {
	k := testConstants()
	conf := robot.NewConfiguration(geom.Pose(0, 0, 0), k.ExtendMin)

	d, err := Decide(k, conf, moveTo(0, -1))
	require.NoError(t, err)
	assert.Equal(t, BranchRotateFront, d.Branch)
	assert.InDelta(t, -k.AngleMax, d.Theta, floatTolerance)
}

func TestDecide_NegativeErrorsStillRotate(t *testing.T) {
	k := testConstants()
	// Both feet point slightly left of a target dead ahead.
	conf := robot.NewConfiguration(geom.Pose(0, 0, 0.01), k.ExtendMin)

	d, err := Decide(k, conf, moveTo(1, 0))
	require.NoError(t, err)
	assert.True(t, d.Branch.Rotating(), "got %v", d.Branch)
	assert.InDelta(t, 0, d.Theta, floatTolerance)
}

func TestDecide_RotationBoundedByAngleMax(t *testing.T) {
	k := testConstants()
	rng := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 500; i++ {
		frontTh := (rng.Float64()*2 - 1) * math.Pi
		rearTh := (rng.Float64()*2 - 1) * math.Pi
		conf := chain(
			geom.AngledPoint{Point: geom.Offset(geom.Point{}, 0.1, frontTh), Theta: frontTh},
			geom.Pose(0, 0, rearTh),
			geom.AngledPoint{Point: geom.Offset(geom.Point{}, -0.1, rearTh), Theta: rearTh},
		)
		target := moveTo((rng.Float64()*2-1)*3, (rng.Float64()*2-1)*3)

		d, err := Decide(k, conf, target)
		if err != nil {
			continue
		}
		var pivot float64
		switch d.Branch {
		case BranchRotateFront:
			pivot = rearTh
		case BranchRotateRear:
			pivot = frontTh
		default:
			continue
		}
		step := math.Abs(geom.AngleDiff(d.Theta, pivot))
		assert.LessOrEqual(t, step, k.AngleMax+floatTolerance, "case %d: step %v", i, step)
		assert.True(t, d.Theta > -math.Pi && d.Theta <= math.Pi, "case %d: theta %v not wrapped", i, d.Theta)
	}
}

func TestDecide_RotationWrapsAcrossPi(t *testing.T) {
	k := testConstants()
	conf := robot.NewConfiguration(geom.Pose(0, 0, 3.0), k.ExtendMin)

	d, err := Decide(k, conf, moveTo(math.Cos(3.3), math.Sin(3.3)))
	require.NoError(t, err)

	assert.Equal(t, BranchRotateFront, d.Branch)
	assert.InDelta(t, 3.3-2*math.Pi, d.Theta, 1e-9)
	assert.InDelta(t, 3.3-2*math.Pi, d.Action(0).Theta, 1e-9)
}

func TestDecide_TranslationOrder(t *testing.T) {
	k := testConstants()

	tests := []struct {
		name     string
		conf     robot.Configuration
		target   waypoint.Waypoint
		branch   Branch
		node     robot.Segment
		wantX    float64
		wantExt  float64
	}{
		{
			name:    "rear stretched is pulled in",
			conf:    chain(geom.Pose(0.15, 0, 0), geom.Pose(0, 0, 0), geom.Pose(-0.15, 0, 0)),
			target:  moveTo(1, 0),
			branch:  BranchRetractRear,
			node:    robot.RearFoot,
			wantX:   -0.05,
			wantExt: -0.05,
		},
		{
			name:    "fully set chain advances middle by the stroke",
			conf:    chain(geom.Pose(0.15, 0, 0), geom.Pose(0, 0, 0), geom.Pose(-0.05, 0, 0)),
			target:  moveTo(1, 0),
			branch:  BranchAdvanceMiddle,
			node:    robot.MiddleFoot,
			wantX:   0.1,
			wantExt: 0.1,
		},
		{
			name:    "short final advance lands on target",
			conf:    chain(geom.Pose(0.15, 0, 0), geom.Pose(0, 0, 0), geom.Pose(-0.05, 0, 0)),
			target:  moveTo(0.04, 0),
			branch:  BranchAdvanceMiddle,
			node:    robot.MiddleFoot,
			wantX:   0.04,
			wantExt: 0.04,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decide(k, tt.conf, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.branch, d.Branch)
			assert.Equal(t, tt.node, d.Node)
			assert.InDelta(t, tt.wantExt, d.Extension, floatTolerance)
			assert.InDelta(t, tt.wantX, d.Target.X, floatTolerance)
			assert.InDelta(t, 0, d.Target.Y, floatTolerance)
		})
	}
}

func TestDecide_ViewInsideRangeUsesCamera(t *testing.T) {
	k := testConstants()
	conf := robot.NewConfiguration(geom.Pose(0, 0, 0), k.ExtendMin)

	d, err := Decide(k, conf, viewAt(k.ViewMax-1e-3, 0))
	require.NoError(t, err)
	assert.Equal(t, BranchView, d.Branch)
	assert.Equal(t, robot.Camera, d.Node)
	assert.Equal(t, protocol.ActionView, d.ActionType)
	assert.InDelta(t, k.ExtendMin, d.Target.X, floatTolerance)
}

func TestDecide_ViewStopsShort(t *testing.T) {
	k := testConstants()
	// Narrow band so the camera does not take over before the final stroke.
	k.ViewMin, k.ViewMax = 0.01, 0.04
	conf := chain(geom.Pose(0.15, 0, 0), geom.Pose(0, 0, 0), geom.Pose(-0.05, 0, 0))
	far := viewAt(k.ViewOpt+0.05, 0)

	d, err := Decide(k, conf, far)
	require.NoError(t, err)
	assert.Equal(t, BranchAdvanceMiddle, d.Branch)
	assert.InDelta(t, 0.05, d.Extension, floatTolerance)
}

func TestDecide_Coincident(t *testing.T) {
	k := testConstants()
	conf := robot.NewConfiguration(geom.Pose(0.3, 0.3, 0), k.ExtendMin)

	_, err := Decide(k, conf, moveTo(0.3, 0.3))
	assert.ErrorIs(t, err, ErrCoincident)
	assert.True(t, IsCoincident(err))
}

func TestDecide_Deterministic(t *testing.T) {
	k := testConstants()
	conf := chain(geom.Pose(0.05, 0.01, 0.4), geom.Pose(0, 0, -0.2), geom.Pose(-0.05, 0, -0.2))
	target := viewAt(-1, 2)

	first, err := Decide(k, conf, target)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Decide(k, conf, target)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDecision_Action(t *testing.T) {
	d := Decision{Node: robot.RearFoot, ActionType: protocol.ActionStep, Theta: 0.2, Target: geom.Point{X: 1, Y: 2}}
	a := d.Action(42)
	assert.Equal(t, protocol.PlannerAction{MajorID: 42, NodeName: "rear_foot", ActionType: protocol.ActionStep, Theta: 0.2, X: 1, Y: 2}, a)
}
