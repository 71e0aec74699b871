package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"
)

// HTMLOptions controls the page produced by RenderHTML and RenderOverview.
type HTMLOptions struct {
	Theme      string
	AssetsHost string
	Width      string
	Height     string
}

func (o HTMLOptions) withDefaults() HTMLOptions {
	if o.Theme == "" {
		o.Theme = "dark"
	}
	if o.Width == "" {
		o.Width = "100%"
	}
	if o.Height == "" {
		o.Height = "600px"
	}
	return o
}

// newLine builds the go-echarts line chart for s.
func newLine(s Spec, o HTMLOptions, chartID string) *charts.Line {
	o = o.withDefaults()

	subtitle := fmt.Sprintf("%d points", s.Len())
	if s.Dataset != "" {
		subtitle = s.Dataset + ", " + subtitle
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  strings.TrimSpace(s.Title),
			Theme:      o.Theme,
			Width:      o.Width,
			Height:     o.Height,
			AssetsHost: o.AssetsHost,
			ChartID:    chartID,
		}),
		charts.WithTitleOpts(opts.Title{Title: s.Title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: s.XLabel, NameLocation: "middle", NameGap: 30, Min: "dataMin", Max: "dataMax"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: s.YLabel, NameLocation: "middle", NameGap: 50}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", XAxisIndex: []int{0}}),
	)

	for _, series := range s.Series {
		data := make([]opts.LineData, 0, len(series.Points))
		for _, p := range series.Points {
			// "-" is the echarts marker for a missing value; it breaks the line
			var v interface{} = p.Value
			if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
				v = "-"
			}
			data = append(data, opts.LineData{Value: []interface{}{p.DOY, v}})
		}
		line.AddSeries(series.Name, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: series.Color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: series.Color}),
		)
	}
	return line
}

// RenderHTML writes a standalone interactive page for s.
func RenderHTML(w io.Writer, s Spec, o HTMLOptions) error {
	if err := newLine(s, o, "").Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderOverview writes a single page holding one chart per spec, typically
// every metric for one site.
func RenderOverview(w io.Writer, specs []Spec, o HTMLOptions) error {
	o = o.withDefaults()
	if o.Height == "600px" {
		o.Height = "420px"
	}

	page := components.NewPage()
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}
	for _, s := range specs {
		page.AddCharts(newLine(s, o, chartID()))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render overview: %w", err)
	}
	return nil
}

// chartID returns a DOM id usable as a JavaScript identifier suffix.
func chartID() string {
	return "q" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
