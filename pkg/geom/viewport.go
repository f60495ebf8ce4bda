package geom

// Viewport maps operator screen pixels onto the world frame.
// Screen y grows downward; world y grows upward.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"` // meters per pixel
	Origin Point   `json:"origin"` // pixel position of the world origin
}

// ToWorld converts a pixel position to meters.
func (v Viewport) ToWorld(px, py float64) Point {
	return Point{
		X: (px - v.Origin.X) * v.Scale,
		Y: (v.Origin.Y - py) * v.Scale,
	}
}

// ToScreen converts a world position to pixels.
func (v Viewport) ToScreen(p Point) (x, y float64) {
	if v.Scale == 0 {
		return v.Origin.X, v.Origin.Y
	}
	return p.X/v.Scale + v.Origin.X, v.Origin.Y - p.Y/v.Scale
}

// Contains reports whether a pixel position lies inside the viewport.
func (v Viewport) Contains(px, py float64) bool {
	return px >= 0 && py >= 0 && px <= v.Width && py <= v.Height
}
