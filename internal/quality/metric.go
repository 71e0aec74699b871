// Package quality holds the RINGO quality-metric domain: descriptor tables,
// the observation table and the filter that selects a chartable series.
package quality

import "strings"

// Metric is a RINGO quality-metric column code such as "MP1" or "CRIOD".
type Metric string

const (
	MP1   Metric = "MP1"
	MP2   Metric = "MP2"
	MP5   Metric = "MP5"
	CRMP1 Metric = "CRMP1"
	CRMP2 Metric = "CRMP2"
	CRMP5 Metric = "CRMP5"
	CRGF  Metric = "CRGF"
	CRMW  Metric = "CRMW"
	CRIOD Metric = "CRIOD"
)

// MetricDescriptor describes how a metric is presented.
type MetricDescriptor struct {
	Code      Metric `json:"code"`
	Label     string `json:"label"`
	AxisLabel string `json:"axis_label"`
}

// metricOrder is the display order used by selectors and overview pages.
var metricOrder = []Metric{MP1, MP2, MP5, CRMP1, CRMP2, CRMP5, CRGF, CRMW, CRIOD}

var metricDescriptors = map[Metric]MetricDescriptor{
	MP1:   {Code: MP1, Label: "Multipath12", AxisLabel: "Multipath12 (m)"},
	MP2:   {Code: MP2, Label: "Multipath21", AxisLabel: "Multipath21 (m)"},
	MP5:   {Code: MP5, Label: "Multipath15", AxisLabel: "Multipath15 (m)"},
	CRMP1: {Code: CRMP1, Label: "Obs per Slip:MP12", AxisLabel: "Obs per Slip:MP12"},
	CRMP2: {Code: CRMP2, Label: "Obs per Slip:MP21", AxisLabel: "Obs per Slip:MP21"},
	CRMP5: {Code: CRMP5, Label: "Obs per Slip:MP15", AxisLabel: "Obs per Slip:MP15"},
	CRGF:  {Code: CRGF, Label: "Obs per Slip:GF", AxisLabel: "Obs per Slip:GF"},
	CRMW:  {Code: CRMW, Label: "Obs per Slip:MW", AxisLabel: "Obs per Slip:MW"},
	CRIOD: {Code: CRIOD, Label: "Obs per Slip:IOD", AxisLabel: "Obs per Slip:IOD"},
}

// Metrics returns the descriptors of all known metrics in display order.
func Metrics() []MetricDescriptor {
	out := make([]MetricDescriptor, 0, len(metricOrder))
	for _, m := range metricOrder {
		out = append(out, metricDescriptors[m])
	}
	return out
}

// MetricCodes returns the known metric codes in display order.
func MetricCodes() []Metric {
	return append([]Metric(nil), metricOrder...)
}

// Known reports whether m is one of the supported metric codes.
func (m Metric) Known() bool {
	_, ok := metricDescriptors[m]
	return ok
}

// LabelForMetric returns the display label for code. The boolean is false
// when the code is not recognised; callers fall back to the raw code.
func LabelForMetric(code Metric) (string, bool) {
	d, ok := metricDescriptors[code]
	if !ok {
		return "", false
	}
	return d.Label, true
}

// AxisLabelForMetric returns the unit-qualified y-axis label for code.
func AxisLabelForMetric(code Metric) (string, bool) {
	d, ok := metricDescriptors[code]
	if !ok {
		return "", false
	}
	return d.AxisLabel, true
}

// ParseMetric normalises user input (case, whitespace) into a known Metric.
func ParseMetric(s string) (Metric, bool) {
	m := Metric(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Known() {
		return "", false
	}
	return m, true
}
