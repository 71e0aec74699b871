// Package testutil provides shared test fixtures and helpers.
//
// Quality CSV fixtures are built here so that loader, catalog, chart and
// dashboard tests all agree on the RINGO column layout.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// QualityHeader is the header row of a RINGO quality export, including the
// leading unnamed index column that pandas writes.
const QualityHeader = ",SITE,DOY,CONST,MP1,MP2,MP5,CRMP1,CRMP2,CRMP5,CRGF,CRMW,CRIOD"

// Row is a single fixture observation. Only MP1 is set explicitly; the other
// metric columns are derived from it so tests can still tell them apart.
type Row struct {
	Site  string
	DOY   int
	Const string
	MP1   float64
}

// QualityCSV renders rows as a RINGO quality export.
func QualityCSV(rows ...Row) string {
	var b strings.Builder
	b.WriteString(QualityHeader)
	b.WriteByte('\n')
	for i, r := range rows {
		fmt.Fprintf(&b, "%d,%s,%d,%s,%g,%g,%g,%d,%d,%d,%d,%d,%d\n",
			i, r.Site, r.DOY, r.Const,
			r.MP1, r.MP1*2, r.MP1*3,
			1000+r.DOY, 2000+r.DOY, 3000+r.DOY, 4000+r.DOY, 5000+r.DOY, 6000+r.DOY)
	}
	return b.String()
}

// ScenarioRows is the three-row table used by the end-to-end filter example.
func ScenarioRows() []Row {
	return []Row{
		{Site: "ALIG", DOY: 10, Const: "G", MP1: 0.5},
		{Site: "ALIG", DOY: 10, Const: "R", MP1: 0.7},
		{Site: "BJFS", DOY: 10, Const: "G", MP1: 0.9},
	}
}

// WriteFile writes content to dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}
