package geom

import (
	"math"
	"testing"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"same point", Point{1, 2}, Point{1, 2}, 0},
		{"3-4-5", Point{0, 0}, Point{3, 4}, 5},
		{"negative quadrant", Point{-1, -1}, Point{-4, -5}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); !floatEquals(got, tt.want) {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
			if got := Distance(tt.b, tt.a); !floatEquals(got, tt.want) {
				t.Errorf("Distance() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name string
		b    Point
		want float64
	}{
		{"east", Point{1, 0}, 0},
		{"north", Point{0, 2}, math.Pi / 2},
		{"west", Point{-1, 0}, math.Pi},
		{"south", Point{0, -1}, -math.Pi / 2},
		{"north-east", Point{1, 1}, math.Pi / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bearing(Point{}, tt.b); !floatEquals(got, tt.want) {
				t.Errorf("Bearing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBearing_Coincident(t *testing.T) {
	p := Point{0.3, -0.2}
	if got := Bearing(p, p); got != 0 || math.IsNaN(got) {
		t.Errorf("Bearing(p, p) = %v, want 0", got)
	}
}

func TestAngleDiff_Identity(t *testing.T) {
	for _, a := range []float64{0, 0.3, -1.2, math.Pi / 2, 3, -3, 7.5, -12} {
		if got := AngleDiff(a, a); got != 0 {
			t.Errorf("AngleDiff(%v, %v) = %v, want 0", a, a, got)
		}
	}
}

func TestAngleDiff_Antisymmetric(t *testing.T) {
	angles := []float64{0, 0.1, -0.4, 1.5, -2.9, 3.1, 6.0, -7.2}
	for _, a := range angles {
		for _, b := range angles {
			ab := AngleDiff(a, b)
			ba := AngleDiff(b, a)
			// At exactly ±π the sign convention is free.
			if floatEquals(math.Abs(ab), math.Pi) {
				continue
			}
			if !floatEquals(ab, -ba) {
				t.Errorf("AngleDiff(%v,%v)=%v, AngleDiff(%v,%v)=%v", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestAngleDiff_Wraps(t *testing.T) {
	// 179° - (-179°) is -2°, not 358°.
	x := 179 * math.Pi / 180
	y := -179 * math.Pi / 180
	want := -2 * math.Pi / 180
	if got := AngleDiff(x, y); !floatEquals(got, want) {
		t.Errorf("AngleDiff() = %v, want %v", got, want)
	}

	if got := AngleDiff(2*math.Pi+0.25, 0); !floatEquals(got, 0.25) {
		t.Errorf("AngleDiff(2π+0.25, 0) = %v, want 0.25", got)
	}
}

func TestClampMagnitude(t *testing.T) {
	tests := []struct {
		v, limit, want float64
	}{
		{0.1, 0.3, 0.1},
		{-0.1, 0.3, -0.1},
		{1.2, 0.3, 0.3},
		{-1.2, 0.3, -0.3},
		{0.3, 0.3, 0.3},
		{0, 0.3, 0},
		{-2, -0.5, -0.5},
	}
	for _, tt := range tests {
		if got := ClampMagnitude(tt.v, tt.limit); !floatEquals(got, tt.want) {
			t.Errorf("ClampMagnitude(%v, %v) = %v, want %v", tt.v, tt.limit, got, tt.want)
		}
	}
}

func TestOffset(t *testing.T) {
	got := Offset(Point{1, 1}, 0.15, math.Pi/2)
	if !floatEquals(got.X, 1) || !floatEquals(got.Y, 1.15) {
		t.Errorf("Offset() = %v, want (1, 1.15)", got)
	}

	back := Offset(Point{0, 0}, -0.05, 0)
	if !floatEquals(back.X, -0.05) || !floatEquals(back.Y, 0) {
		t.Errorf("Offset() negative = %v, want (-0.05, 0)", back)
	}
}

func TestPoint_Finite(t *testing.T) {
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{0, 0}, true},
		{Point{-1.5, 1e300}, true},
		{Point{math.NaN(), 0}, false},
		{Point{0, math.NaN()}, false},
		{Point{math.Inf(1), 0}, false},
		{Point{0, math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		if got := tt.p.Finite(); got != tt.want {
			t.Errorf("%v.Finite() = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestViewport_RoundTrip(t *testing.T) {
	v := Viewport{Width: 800, Height: 600, Scale: 0.005, Origin: Point{400, 300}}

	w := v.ToWorld(500, 200)
	if !floatEquals(w.X, 0.5) || !floatEquals(w.Y, 0.5) {
		t.Fatalf("ToWorld() = %v, want (0.5, 0.5)", w)
	}

	x, y := v.ToScreen(w)
	if !floatEquals(x, 500) || !floatEquals(y, 200) {
		t.Errorf("ToScreen() = (%v, %v), want (500, 200)", x, y)
	}

	if !v.Contains(0, 0) || v.Contains(801, 10) {
		t.Error("Contains() gave the wrong answer at the edges")
	}
}
