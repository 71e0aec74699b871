package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/ringoview/internal/quality"
)

// Image formats supported by RenderImage.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// ErrUnsupportedFormat is returned for image formats other than png and svg.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Image size of static renders.
const (
	imageWidth  = 10 * vg.Inch
	imageHeight = 5 * vg.Inch
)

// ContentType returns the MIME type for a supported image format.
func ContentType(format string) (string, error) {
	switch format {
	case FormatPNG:
		return "image/png", nil
	case FormatSVG:
		return "image/svg+xml", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// RenderImage writes s as a static png or svg plot. Missing values split a
// series into separate line segments.
func RenderImage(w io.Writer, s Spec, format string) error {
	if _, err := ContentType(format); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = strings.TrimSpace(s.Title)
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel

	for _, series := range s.Series {
		c := hexColor(series.Color)
		legend := false
		for _, seg := range segments(series.Points) {
			line, err := plotter.NewLine(seg)
			if err != nil {
				return fmt.Errorf("series %s: %w", series.Name, err)
			}
			line.Color = c
			line.Width = vg.Points(1)
			p.Add(line)
			if !legend {
				p.Legend.Add(series.Name, line)
				legend = true
			}
		}
	}

	if s.Empty() {
		p.X.Min, p.X.Max = 1, 366
		p.Y.Min, p.Y.Max = 0, 1
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(imageWidth, imageHeight, format)
	if err != nil {
		return fmt.Errorf("failed to create %s writer: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", format, err)
	}
	return nil
}

// segments splits points into runs of finite values.
func segments(points []quality.Point) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for _, pt := range points {
		if math.IsNaN(pt.Value) || math.IsInf(pt.Value, 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(pt.DOY), Y: pt.Value})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// hexColor parses "#RRGGBB", returning grey for anything else.
func hexColor(s string) color.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 6 {
		if v, err := strconv.ParseUint(s, 16, 32); err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
		}
	}
	return color.RGBA{R: 0xa9, G: 0xa9, B: 0xa9, A: 0xff}
}
