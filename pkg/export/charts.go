// Package export renders the dashboard's outputs outside the terminal: bar
// charts as SVG or PNG files, the full report as markdown, and a SQLite
// snapshot of the built table for downstream tooling.
package export

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/fixboard/pkg/insight"
	"github.com/vanderheijden86/fixboard/pkg/metrics"
)

// ChartOptions controls a single chart export.
type ChartOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Chart  insight.Chart
}

// SaveChart renders one insight as a horizontal bar chart: category axis on
// the left, magnitude axis as bar length, the fixed 8-color palette cycled
// across bars.
func SaveChart(opts ChartOptions) error {
	defer metrics.Timer(metrics.ChartExport)()

	if len(opts.Chart.Counts) == 0 {
		return fmt.Errorf("no data to chart for %q", opts.Chart.Title)
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildChartLayout(opts.Chart)

	switch format {
	case "svg":
		return renderChartSVG(opts.Path, layout)
	case "png":
		return renderChartPNG(opts.Path, layout)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// SaveCharts renders every chart into dir, one file per insight, named from
// the insight title. Rendering is independent per chart, so the charts are
// written concurrently; the fetch/flatten pipeline upstream stays sequential.
func SaveCharts(ctx context.Context, dir, format string, charts []insight.Chart) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, c := range charts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := createSlug(c.Title) + "." + format
			return SaveChart(ChartOptions{
				Path:   filepath.Join(dir, name),
				Format: format,
				Chart:  c,
			})
		})
	}
	return g.Wait()
}

// --- layout computation ----------------------------------------------------

const (
	chartWidth  = 640
	chartPad    = 24.0
	titleHeight = 36.0
	barHeight   = 24.0
	barGap      = 12.0
	labelWidth  = 170.0
	countWidth  = 56.0
)

type chartBar struct {
	Label string
	Count int
	Share float64
	Color string // palette hex
	X, Y  float64
	W, H  float64
}

type chartLayout struct {
	Title  string
	Bars   []chartBar
	Width  int
	Height int
}

func buildChartLayout(c insight.Chart) chartLayout {
	maxCount := float64(c.Max())
	shares := c.Shares()
	plotW := float64(chartWidth) - chartPad*2 - labelWidth - countWidth

	bars := make([]chartBar, 0, len(c.Counts))
	for i, vc := range c.Counts {
		w := plotW * float64(vc.Count) / maxCount
		bars = append(bars, chartBar{
			Label: truncate(vc.Value, 24),
			Count: vc.Count,
			Share: shares[i],
			Color: insight.BarColor(i),
			X:     chartPad + labelWidth,
			Y:     chartPad + titleHeight + float64(i)*(barHeight+barGap),
			W:     w,
			H:     barHeight,
		})
	}

	height := int(chartPad*2 + titleHeight + float64(len(bars))*(barHeight+barGap))
	if height < 160 {
		height = 160
	}
	return chartLayout{
		Title:  c.Title,
		Bars:   bars,
		Width:  chartWidth,
		Height: height,
	}
}

// --- rendering -------------------------------------------------------------

// Dark chart theme, matching the dashboard's dark rendering.
var (
	chartBackdrop = color.RGBA{0x11, 0x18, 0x27, 0xff}
	chartText     = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	chartSubtle   = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
)

func renderChartPNG(path string, layout chartLayout) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(chartBackdrop)
	dc.Clear()

	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(chartText)
	dc.DrawStringAnchored(layout.Title, chartPad, chartPad+10, 0, 0.5)

	for _, b := range layout.Bars {
		dc.SetColor(chartSubtle)
		dc.DrawStringAnchored(b.Label, chartPad, b.Y+b.H/2, 0, 0.5)

		dc.SetHexColor(b.Color)
		dc.DrawRectangle(b.X, b.Y, b.W, b.H)
		dc.Fill()

		dc.SetColor(chartText)
		dc.DrawStringAnchored(fmt.Sprintf("%d", b.Count), b.X+b.W+8, b.Y+b.H/2, 0, 0.5)
	}

	return dc.SavePNG(path)
}

func renderChartSVG(path string, layout chartLayout) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	canvas := svg.New(file)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(chartBackdrop)))
	canvas.Text(int(chartPad), int(chartPad)+14, layout.Title,
		fmt.Sprintf("fill:%s;font-size:15px;font-family:monospace;font-weight:bold", css(chartText)))

	for _, b := range layout.Bars {
		y := int(b.Y)
		canvas.Text(int(chartPad), y+int(b.H/2)+4, b.Label,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(chartSubtle)))
		canvas.Rect(int(b.X), y, int(b.W), int(b.H), fmt.Sprintf("fill:%s", b.Color))
		canvas.Text(int(b.X+b.W)+8, y+int(b.H/2)+4, fmt.Sprintf("%d", b.Count),
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(chartText)))
	}

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

func createSlug(s string) string {
	slug := slugNonAlphanumericRegex.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
