package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/paddock-data/drivestyle/internal/analysis"
	"github.com/paddock-data/drivestyle/internal/config"
)

// WriteProjectionPNG writes a standalone PNG scatter of the 2-D style
// projection, one glyph per driver coloured by team.
func WriteProjectionPNG(path string, res *analysis.TrackResult, cfg *config.Config) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - Driving Style Projection", res.Track)
	p.X.Label.Text = "PC1"
	p.Y.Label.Text = "PC2"
	if len(res.Similarity.VarianceExplained) > 0 {
		p.X.Label.Text = fmt.Sprintf("PC1 (%.1f%% variance)", res.Similarity.VarianceExplained[0]*100)
	}
	if len(res.Similarity.VarianceExplained) > 1 {
		p.Y.Label.Text = fmt.Sprintf("PC2 (%.1f%% variance)", res.Similarity.VarianceExplained[1]*100)
	}
	p.Add(plotter.NewGrid())

	labelXYs := make(plotter.XYs, 0, len(res.Drivers))
	labels := make([]string, 0, len(res.Drivers))

	for i, driver := range res.Drivers {
		x, y := projectedXY(res.Similarity.Projection, i)

		s, err := plotter.NewScatter(plotter.XYs{{X: x, Y: y}})
		if err != nil {
			return fmt.Errorf("failed to build scatter for %s: %w", driver, err)
		}
		s.GlyphStyle.Color = parseHexColor(cfg.ColorFor(cfg.TeamFor(driver)))
		s.GlyphStyle.Radius = vg.Points(6)
		p.Add(s)
		p.Legend.Add(driver, s)

		labelXYs = append(labelXYs, plotter.XY{X: x, Y: y})
		labels = append(labels, driver)
	}

	l, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: labels})
	if err != nil {
		return fmt.Errorf("failed to build labels: %w", err)
	}
	p.Add(l)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save projection plot: %w", err)
	}
	return nil
}

// parseHexColor parses a #RRGGBB colour, falling back to grey on malformed
// input.
func parseHexColor(s string) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
