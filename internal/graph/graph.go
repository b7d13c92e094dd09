// Package graph renders the metrics time series as SVG line charts in a
// GitHub dark theme.
package graph

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/georgepearse/github-metrics/internal/domain"
)

// Fixed output filenames inside the configured directory.
const (
	OverviewFile  = "metrics_overview.svg"
	FollowersFile = "followers_graph.svg"
	StarsFile     = "stars_graph.svg"
)

// GitHub dark theme palette.
var (
	darkBG      = color.RGBA{R: 0x0d, G: 0x11, B: 0x17, A: 0xff}
	darkFG      = color.RGBA{R: 0xc9, G: 0xd1, B: 0xd9, A: 0xff}
	darkBorder  = color.RGBA{R: 0x30, G: 0x36, B: 0x3d, A: 0xff}
	gridColor   = color.RGBA{R: 0x30, G: 0x36, B: 0x3d, A: 0x66}
	accentBlue  = color.RGBA{R: 0x58, G: 0xa6, B: 0xff, A: 0xff}
	accentGreen = color.RGBA{R: 0x3f, G: 0xb9, B: 0x50, A: 0xff}
)

// ErrNoRecords is returned when there is nothing to plot.
var ErrNoRecords = errors.New("no metrics records to render")

// Generator renders metrics records to SVG files in a fixed output
// directory.
type Generator struct {
	outputDir string
	logger    *zap.Logger
}

// NewGenerator creates a generator writing into outputDir. The directory
// is created on first render if absent.
func NewGenerator(outputDir string, logger *zap.Logger) *Generator {
	return &Generator{outputDir: outputDir, logger: logger}
}

// Generate renders the combined side-by-side overview plus one standalone
// chart per metric, and returns the paths of the followers and stars
// charts. It fails with ErrNoRecords on an empty series.
func (g *Generator) Generate(records []domain.MetricsRecord) (string, string, error) {
	if len(records) == 0 {
		return "", "", ErrNoRecords
	}
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory %s: %w", g.outputDir, err)
	}

	followers := make(plotter.XYs, len(records))
	stars := make(plotter.XYs, len(records))
	for i, record := range records {
		x := float64(record.Date.Unix())
		followers[i] = plotter.XY{X: x, Y: float64(record.Followers)}
		stars[i] = plotter.XY{X: x, Y: float64(record.TotalStars)}
	}

	if err := g.writeOverview(followers, stars); err != nil {
		return "", "", err
	}

	followersPath := filepath.Join(g.outputDir, FollowersFile)
	if err := g.writeSingle(followers, "Followers Over Time", accentBlue, followersPath); err != nil {
		return "", "", err
	}
	starsPath := filepath.Join(g.outputDir, StarsFile)
	if err := g.writeSingle(stars, "Total Repository Stars", accentGreen, starsPath); err != nil {
		return "", "", err
	}

	g.logger.Debug("rendered charts",
		zap.String("followers", followersPath),
		zap.String("stars", starsPath))
	return followersPath, starsPath, nil
}

// writeOverview draws the followers and stars plots side by side into a
// single SVG.
func (g *Generator) writeOverview(followers, stars plotter.XYs) error {
	left, err := g.seriesPlot("Followers Over Time", "Followers", followers, accentBlue)
	if err != nil {
		return err
	}
	right, err := g.seriesPlot("Total Repository Stars Over Time", "Stars", stars, accentGreen)
	if err != nil {
		return err
	}

	canvas := vgsvg.New(14*vg.Inch, 5*vg.Inch)
	tiles := draw.Tiles{
		Rows: 1,
		Cols: 2,
		PadX: vg.Points(15),
	}
	plots := [][]*plot.Plot{{left, right}}
	canvases := plot.Align(plots, tiles, draw.New(canvas))
	left.Draw(canvases[0][0])
	right.Draw(canvases[0][1])

	path := filepath.Join(g.outputDir, OverviewFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := canvas.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// writeSingle draws one standalone chart.
func (g *Generator) writeSingle(xys plotter.XYs, title string, accent color.Color, path string) error {
	p, err := g.seriesPlot(title, "Count", xys, accent)
	if err != nil {
		return err
	}
	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// seriesPlot builds a dark-themed line+points plot of one metric with a
// date axis and a "Current: N" annotation at the final point.
func (g *Generator) seriesPlot(title, yLabel string, xys plotter.XYs, accent color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.BackgroundColor = darkBG
	p.Title.Text = title
	p.Title.TextStyle.Color = darkFG
	p.Title.TextStyle.Font.Weight = font.WeightBold
	p.Title.Padding = vg.Points(10)
	styleAxis(&p.X, "Date")
	styleAxis(&p.Y, yLabel)
	p.X.Tick.Marker = plot.TimeTicks{
		Format: "Jan",
		Time:   plot.UnixTimeIn(time.Local),
	}

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Horizontal.Color = gridColor
	p.Add(grid)

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("failed to build line plot: %w", err)
	}
	line.Color = accent
	line.Width = vg.Points(2.5)
	points.GlyphStyle.Color = accent
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(2)
	p.Add(line, points)

	last := xys[len(xys)-1]
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{last},
		Labels: []string{fmt.Sprintf("Current: %.0f", last.Y)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build annotation: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = darkFG
		labels.TextStyle[i].XAlign = text.XRight
		labels.TextStyle[i].YAlign = text.YBottom
	}
	p.Add(labels)

	return p, nil
}

func styleAxis(a *plot.Axis, label string) {
	a.Label.Text = label
	a.Label.TextStyle.Color = darkFG
	a.LineStyle.Color = darkBorder
	a.Tick.LineStyle.Color = darkBorder
	a.Tick.Label.Color = darkFG
}
