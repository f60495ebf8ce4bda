package sim

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/teslashibe/go-spacejockey/pkg/geom"
	"github.com/teslashibe/go-spacejockey/pkg/waypoint"
)

var (
	pathColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	frontColor = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	rearColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	moveColor  = color.RGBA{A: 255}
	viewColor  = color.RGBA{R: 148, G: 103, B: 189, A: 255}
)

// Render plots the middle foot path, the end feet after every step and
// the waypoints. The format follows the file extension (.png, .svg, .pdf).
func (t Trace) Render(path string, waypoints []waypoint.Waypoint) error {
	if len(t.Steps) == 0 {
		return errors.New("nothing to render")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%d ticks, %d actions", len(t.Steps), len(t.Actions()))
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(toXYs(t.Path()))
	if err != nil {
		return fmt.Errorf("middle path: %w", err)
	}
	line.Width = vg.Points(1.5)
	line.Color = pathColor
	p.Add(line)
	p.Legend.Add("middle", line)

	var front, rear []geom.Point
	for _, s := range t.Steps {
		front = append(front, s.Pose.Front.Point)
		rear = append(rear, s.Pose.Rear.Point)
	}
	if err := addScatter(p, "front", front, draw.CircleGlyph{}, frontColor); err != nil {
		return err
	}
	if err := addScatter(p, "rear", rear, draw.CircleGlyph{}, rearColor); err != nil {
		return err
	}

	var moves, views []geom.Point
	for _, w := range waypoints {
		if w.Kind == waypoint.View {
			views = append(views, w.Point)
		} else {
			moves = append(moves, w.Point)
		}
	}
	if err := addScatter(p, "MOVE", moves, draw.CrossGlyph{}, moveColor); err != nil {
		return err
	}
	if err := addScatter(p, "VIEW", views, draw.SquareGlyph{}, viewColor); err != nil {
		return err
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}

func addScatter(p *plot.Plot, label string, pts []geom.Point, shape draw.GlyphDrawer, c color.Color) error {
	if len(pts) == 0 {
		return nil
	}
	s, err := plotter.NewScatter(toXYs(pts))
	if err != nil {
		return fmt.Errorf("%s points: %w", label, err)
	}
	s.GlyphStyle.Shape = shape
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(2)
	p.Add(s)
	p.Legend.Add(label, s)
	return nil
}

func toXYs(pts []geom.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	return xys
}
