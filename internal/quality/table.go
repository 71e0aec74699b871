package quality

import "math"

// Observation is one row of a RINGO quality report: one site, one day and one
// constellation, with a value per metric column.
type Observation struct {
	Site          string
	DOY           int
	Constellation Constellation
	Values        map[Metric]float64
}

// Value returns the metric value for the row. Missing cells are NaN; the
// boolean is false only when the table had no such column.
func (o Observation) Value(m Metric) (float64, bool) {
	v, ok := o.Values[m]
	if !ok {
		return math.NaN(), false
	}
	return v, true
}

// Table is an ordered observation table loaded from one dataset file.
// A Table is never modified after it has been loaded, so it may be shared
// between concurrent requests.
type Table struct {
	Dataset string
	Rows    []Observation
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Sites returns the distinct site identifiers in first-seen order.
func (t *Table) Sites() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var sites []string
	for _, row := range t.Rows {
		if _, ok := seen[row.Site]; ok {
			continue
		}
		seen[row.Site] = struct{}{}
		sites = append(sites, row.Site)
	}
	return sites
}

// HasSite reports whether any row belongs to site.
func (t *Table) HasSite(site string) bool {
	if t == nil {
		return false
	}
	for _, row := range t.Rows {
		if row.Site == site {
			return true
		}
	}
	return false
}
