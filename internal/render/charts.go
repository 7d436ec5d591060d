// Package render turns a track's analysis result into visual artifacts: an
// HTML report (similarity heatmap, style projection, radar profiles) and a
// PNG of the 2-D projection. The renderer only lays out numbers it is
// handed; it recomputes nothing.
package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/paddock-data/drivestyle/internal/analysis"
	"github.com/paddock-data/drivestyle/internal/config"
	"github.com/paddock-data/drivestyle/internal/profile"
)

// radarMetrics are the profile fields shown on the radar chart, min-max
// normalized across the track's drivers.
var radarMetrics = []struct {
	label string
	value func(profile.Profile) float64
}{
	{"Throttle Aggression", func(p profile.Profile) float64 { return p.ThrottleAggression }},
	{"Throttle Smoothness", func(p profile.Profile) float64 { return p.ThrottleSmoothness }},
	{"Brake Intensity", func(p profile.Profile) float64 { return p.BrakeIntensity }},
	{"Speed Variability", func(p profile.Profile) float64 { return p.SpeedVariability }},
	{"Acceleration Pattern", func(p profile.Profile) float64 { return p.AccelerationPattern }},
}

// WriteTrackReport writes the track's HTML report and projection PNG into
// outDir. Tracks with fewer than two compared drivers get no report; that
// is logged by the caller, not an error here.
func WriteTrackReport(outDir string, res *analysis.TrackResult, cfg *config.Config) error {
	if res.InsufficientDrivers || len(res.Drivers) < 2 {
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s - Driving Style Analysis", res.Track)
	page.AddCharts(
		similarityHeatmap(res),
		projectionScatter(res, cfg),
		profileRadar(res, cfg),
	)

	htmlPath := filepath.Join(outDir, fmt.Sprintf("%s_analysis.html", res.Track))
	f, err := os.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	pngPath := filepath.Join(outDir, fmt.Sprintf("%s_projection.png", res.Track))
	if err := WriteProjectionPNG(pngPath, res, cfg); err != nil {
		return err
	}

	return nil
}

// similarityHeatmap renders the cosine-similarity matrix with drivers on
// both axes.
func similarityHeatmap(res *analysis.TrackResult) components.Charter {
	drivers := res.Drivers

	data := make([]opts.HeatMapData, 0, len(drivers)*len(drivers))
	for i := range drivers {
		for j := range drivers {
			v := res.Similarity.Similarity[i][j]
			data = append(data, opts.HeatMapData{Value: [3]interface{}{i, j, roundTo(v, 3)}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "700px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s - Driver Similarity Matrix", res.Track),
			Subtitle: "higher values = more similar driving",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: drivers}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: drivers}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: []string{"#313695", "#74add1", "#ffffff", "#f46d43", "#a50026"}},
		}),
	)
	hm.AddSeries("similarity", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)
	return hm
}

// projectionScatter renders the 2-component projection, one point per
// driver, coloured by team. Similar drivers plot close together.
func projectionScatter(res *analysis.TrackResult, cfg *config.Config) components.Charter {
	sc := charts.NewScatter()

	xLabel, yLabel := "PC1", "PC2"
	if len(res.Similarity.VarianceExplained) > 0 {
		xLabel = fmt.Sprintf("PC1 (%.1f%% variance)", res.Similarity.VarianceExplained[0]*100)
	}
	if len(res.Similarity.VarianceExplained) > 1 {
		yLabel = fmt.Sprintf("PC2 (%.1f%% variance)", res.Similarity.VarianceExplained[1]*100)
	}

	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "700px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s - Driving Style Principal Components", res.Track),
			Subtitle: "similar drivers cluster together",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: xLabel, NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel, NameLocation: "middle", NameGap: 40}),
	)

	for i, driver := range res.Drivers {
		x, y := projectedXY(res.Similarity.Projection, i)
		team := cfg.TeamFor(driver)
		sc.AddSeries(driver, []opts.ScatterData{{
			Name:  driver,
			Value: []interface{}{roundTo(x, 4), roundTo(y, 4)},
		}},
			charts.WithItemStyleOpts(opts.ItemStyle{Color: cfg.ColorFor(team)}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{a}", Position: "top"}),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 25}),
		)
	}
	return sc
}

// profileRadar renders the five style metrics per driver, min-max
// normalized across the driver set. The second seat of each team is drawn
// dashed, matching the scatter colouring.
func profileRadar(res *analysis.TrackResult, cfg *config.Config) components.Charter {
	indicators := make([]*opts.Indicator, len(radarMetrics))
	for i, m := range radarMetrics {
		indicators[i] = &opts.Indicator{Name: m.label, Max: 1}
	}

	rd := charts.NewRadar()
	rd.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "700px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s - Driving Style Profiles", res.Track),
			Subtitle: "larger area = more extreme style",
		}),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	for _, driver := range res.Drivers {
		values := make([]float64, len(radarMetrics))
		for i, m := range radarMetrics {
			values[i] = normalizedMetric(res, m.value, m.value(res.Profiles[driver]))
		}

		team := cfg.TeamFor(driver)
		lineType := "solid"
		if cfg.IsSecondDriver(driver, team) {
			lineType = "dashed"
		}
		rd.AddSeries(driver, []opts.RadarData{{Name: driver, Value: values}},
			charts.WithLineStyleOpts(opts.LineStyle{Color: cfg.ColorFor(team), Type: lineType}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.15)}),
		)
	}
	return rd
}

// normalizedMetric min-max scales a metric value over the track's drivers.
// Degenerate spreads (all drivers equal, or a non-finite value) map to the
// neutral 0.5.
func normalizedMetric(res *analysis.TrackResult, metric func(profile.Profile) float64, value float64) float64 {
	minV := math.Inf(1)
	maxV := math.Inf(-1)
	for _, driver := range res.Drivers {
		v := metric(res.Profiles[driver])
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if maxV == minV {
		return 0.5
	}
	norm := (value - minV) / (maxV - minV)
	if math.IsNaN(norm) || math.IsInf(norm, 0) {
		return 0.5
	}
	return norm
}

// projectedXY returns a driver's projection coordinates, substituting 0
// when fewer than two components were retained.
func projectedXY(projection [][]float64, i int) (x, y float64) {
	if i >= len(projection) || len(projection[i]) == 0 {
		return 0, 0
	}
	x = projection[i][0]
	if len(projection[i]) > 1 {
		y = projection[i][1]
	}
	return x, y
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
