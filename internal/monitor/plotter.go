package monitor

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/sightline-data/sightline/internal/scene"
	"github.com/sightline-data/sightline/internal/visibility"
)

// PolygonPlot renders one sensor's visibility fan over the obstacle set to a
// PNG (or any format gonum/plot infers from the filename). The Y axis is
// inverted so the output matches screen-space orientation.
func PolygonPlot(result *visibility.Result, snap scene.Snapshot, filename string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("visibility sensor=%s vertices=%d", result.SensorID, len(result.Vertices))
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y (screen)"

	// Visibility fan as a filled polygon.
	fan := result.Polygon()
	fanXYs := make(plotter.XYs, len(fan))
	for i, pt := range fan {
		fanXYs[i] = plotter.XY{X: pt.X, Y: -pt.Y}
	}
	poly, err := plotter.NewPolygon(fanXYs)
	if err != nil {
		return fmt.Errorf("build fan polygon: %w", err)
	}
	poly.Color = color.RGBA{R: 70, G: 140, B: 240, A: 90}
	poly.LineStyle.Color = color.RGBA{R: 30, G: 90, B: 200, A: 255}
	p.Add(poly)

	// Obstacle edges.
	for _, o := range snap.Obstacles {
		for _, seg := range o.Segments() {
			if seg.IsDegenerate() {
				continue
			}
			line, err := plotter.NewLine(plotter.XYs{
				{X: seg.P1.X, Y: -seg.P1.Y},
				{X: seg.P2.X, Y: -seg.P2.Y},
			})
			if err != nil {
				return fmt.Errorf("build obstacle line: %w", err)
			}
			line.Color = color.RGBA{R: 200, G: 60, B: 60, A: 255}
			line.Width = vg.Points(1.5)
			p.Add(line)
		}
	}

	// Sensor position.
	sensorPt, err := plotter.NewScatter(plotter.XYs{{X: result.Origin.X, Y: -result.Origin.Y}})
	if err != nil {
		return fmt.Errorf("build sensor marker: %w", err)
	}
	sensorPt.GlyphStyle.Shape = draw.CircleGlyph{}
	sensorPt.GlyphStyle.Radius = vg.Points(3)
	sensorPt.GlyphStyle.Color = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	p.Add(sensorPt)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, filename); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
