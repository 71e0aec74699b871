// Package chart turns a filtered quality table into a chart description and
// renders it as an interactive go-echarts page or a static gonum/plot image.
package chart

import (
	"strings"

	"github.com/banshee-data/ringoview/internal/quality"
)

// Spec describes one quality chart: day of year on x, one metric on y, one
// coloured series per constellation.
type Spec struct {
	Title   string
	XLabel  string
	YLabel  string
	Site    string
	Metric  quality.Metric
	Dataset string
	Series  []Series
}

// Series is one constellation's line.
type Series struct {
	Name          string
	Constellation quality.Constellation
	Color         string
	Points        []quality.Point
}

// Len returns the total number of points across all series.
func (s Spec) Len() int {
	n := 0
	for _, series := range s.Series {
		n += len(series.Points)
	}
	return n
}

// Empty reports whether the chart has nothing to draw.
func (s Spec) Empty() bool { return s.Len() == 0 }

// Build assembles the chart for a filtered table. dataset is the dataset id
// shown in the subtitle and yearLabel the reporting-year label appended to
// the x-axis title; either may be empty. An unknown metric falls back to its
// raw code in the title and axis.
func Build(f quality.FilteredTable, dataset, yearLabel string) Spec {
	label, ok := quality.LabelForMetric(f.Metric)
	if !ok {
		label = string(f.Metric)
	}
	axis, ok := quality.AxisLabelForMetric(f.Metric)
	if !ok {
		axis = string(f.Metric)
	}

	s := Spec{
		Title:   Title(label, f.Site),
		XLabel:  strings.TrimSpace("Day of year " + yearLabel),
		YLabel:  axis,
		Site:    f.Site,
		Metric:  f.Metric,
		Dataset: dataset,
		Series:  []Series{},
	}
	for _, group := range f.Series() {
		s.Series = append(s.Series, Series{
			Name:          group.Constellation.Name(),
			Constellation: group.Constellation,
			Color:         group.Constellation.Color(),
			Points:        group.Points,
		})
	}
	return s
}

// Title formats the chart heading for a metric label and site. The leading
// space matches the heading of the published dashboard.
func Title(metricLabel, site string) string {
	return " " + metricLabel + " in " + site
}
