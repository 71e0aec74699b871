package quality

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Column names of the RINGO quality CSV export.
const (
	ColumnSite          = "SITE"
	ColumnDOY           = "DOY"
	ColumnConstellation = "CONST"
)

var (
	// ErrMissingColumn is returned when a required header column is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyFile is returned when the input has no header row.
	ErrEmptyFile = errors.New("empty quality file")
)

// columnIndex maps required columns to their position in a record.
type columnIndex struct {
	site, doy, constellation int
	metrics                  map[Metric]int
}

func indexHeader(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	lookup := func(name string) (int, error) {
		i, ok := pos[name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		return i, nil
	}

	var idx columnIndex
	var err error
	if idx.site, err = lookup(ColumnSite); err != nil {
		return idx, err
	}
	if idx.doy, err = lookup(ColumnDOY); err != nil {
		return idx, err
	}
	if idx.constellation, err = lookup(ColumnConstellation); err != nil {
		return idx, err
	}
	idx.metrics = make(map[Metric]int, len(metricOrder))
	for _, m := range metricOrder {
		i, err := lookup(string(m))
		if err != nil {
			return idx, err
		}
		idx.metrics[m] = i
	}
	return idx, nil
}

// ReadTable parses a RINGO quality CSV export. The header must name SITE,
// DOY, CONST and every metric column; other columns are ignored. Blank or
// NaN metric cells load as NaN. Any other malformed cell fails the load.
func ReadTable(r io.Reader, datasetID string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	idx, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	t := &Table{Dataset: datasetID}
	row := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		obs, err := parseRecord(record, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		t.Rows = append(t.Rows, obs)
	}
	return t, nil
}

func parseRecord(record []string, idx columnIndex) (Observation, error) {
	obs := Observation{
		Site:          strings.TrimSpace(record[idx.site]),
		Constellation: Constellation(strings.ToUpper(strings.TrimSpace(record[idx.constellation]))),
		Values:        make(map[Metric]float64, len(idx.metrics)),
	}

	doy, err := parseDOY(record[idx.doy])
	if err != nil {
		return obs, fmt.Errorf("column %s: %w", ColumnDOY, err)
	}
	obs.DOY = doy

	for m, i := range idx.metrics {
		v, err := parseValue(record[i])
		if err != nil {
			return obs, fmt.Errorf("column %s: %w", m, err)
		}
		obs.Values[m] = v
	}
	return obs, nil
}

func parseDOY(s string) (int, error) {
	s = strings.TrimSpace(s)
	doy, err := strconv.Atoi(s)
	if err != nil {
		// pandas round-trips integer columns with gaps as floats ("10.0")
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("invalid day of year %q", s)
		}
		doy = int(f)
	}
	if doy < 1 || doy > 366 {
		return 0, fmt.Errorf("day of year %d out of range 1-366", doy)
	}
	return doy, nil
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "-":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return v, nil
}
