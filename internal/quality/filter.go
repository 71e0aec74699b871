package quality

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrUnknownMetric is returned when a metric code has no descriptor.
var ErrUnknownMetric = errors.New("unknown metric")

// Point is one plotted value: the day of year, the selected metric value and
// the constellation used to colour the series.
type Point struct {
	DOY           int
	Value         float64
	Constellation Constellation
}

// MarshalJSON encodes NaN values as null.
func (p Point) MarshalJSON() ([]byte, error) {
	var v *float64
	if !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) {
		v = &p.Value
	}
	return json.Marshal(struct {
		DOY           int           `json:"doy"`
		Value         *float64      `json:"value"`
		Constellation Constellation `json:"const"`
	}{p.DOY, v, p.Constellation})
}

// FilteredTable is the chartable projection of a Table: DOY, one metric
// column and the constellation column, for a single site.
type FilteredTable struct {
	Site   string  `json:"site"`
	Metric Metric  `json:"metric"`
	Points []Point `json:"points"`
}

// Len returns the number of points.
func (f FilteredTable) Len() int { return len(f.Points) }

// FilterObservations selects the rows of t recorded at site whose
// constellation is in constellations, keeping the input order, and projects
// them onto DOY, metric and constellation. A site that is not present or an
// empty constellation set yields an empty result rather than an error.
func FilterObservations(t *Table, site string, metric Metric, constellations []Constellation) (FilteredTable, error) {
	if !metric.Known() {
		return FilteredTable{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	out := FilteredTable{Site: site, Metric: metric, Points: []Point{}}
	if t == nil || len(constellations) == 0 {
		return out, nil
	}

	wanted := make(map[Constellation]struct{}, len(constellations))
	for _, c := range constellations {
		wanted[c] = struct{}{}
	}

	for _, row := range t.Rows {
		if row.Site != site {
			continue
		}
		if _, ok := wanted[row.Constellation]; !ok {
			continue
		}
		v, _ := row.Value(metric)
		out.Points = append(out.Points, Point{
			DOY:           row.DOY,
			Value:         v,
			Constellation: row.Constellation,
		})
	}
	return out, nil
}

// Series is the run of points for one constellation.
type Series struct {
	Constellation Constellation `json:"const"`
	Points        []Point       `json:"points"`
}

// Series groups the points by constellation. Groups appear in the order
// their constellation is first seen and keep the row order within a group.
func (f FilteredTable) Series() []Series {
	pos := make(map[Constellation]int)
	var out []Series
	for _, p := range f.Points {
		i, ok := pos[p.Constellation]
		if !ok {
			i = len(out)
			pos[p.Constellation] = i
			out = append(out, Series{Constellation: p.Constellation})
		}
		out[i].Points = append(out[i].Points, p)
	}
	return out
}
