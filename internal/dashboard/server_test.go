package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/ringoview/internal/catalog"
	"github.com/banshee-data/ringoview/internal/fsutil"
	"github.com/banshee-data/ringoview/internal/metrics"
	"github.com/banshee-data/ringoview/internal/monitoring"
	"github.com/banshee-data/ringoview/internal/quality"
	"github.com/banshee-data/ringoview/internal/testutil"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

const dataDir = "/data"

func newTestServer(t *testing.T) (*Server, *metrics.Metrics) {
	t.Helper()

	fsys := fsutil.NewMemoryFileSystem()
	modTime := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	fsys.WriteFile(filepath.Join(dataDir, quality.Dataset2022), []byte(testutil.QualityCSV(
		testutil.Row{Site: "HYDE", DOY: 1, Const: "G", MP1: 0.3},
		testutil.Row{Site: "ALIG", DOY: 1, Const: "G", MP1: 0.4},
		testutil.Row{Site: "ALIG", DOY: 2, Const: "E", MP1: 0.2},
	)), modTime)
	fsys.WriteFile(filepath.Join(dataDir, quality.Dataset2023), []byte(testutil.QualityCSV(testutil.ScenarioRows()...)), modTime)
	fsys.WriteFile(filepath.Join(dataDir, "broken.csv"), []byte("SITE,DOY\n"), modTime)

	m := metrics.New()
	cat, err := catalog.New(catalog.Options{
		DataDir: dataDir,
		Datasets: append(quality.BuiltinDatasets(),
			quality.DatasetDescriptor{ID: "broken.csv", Label: "(broken)"}),
		ReferenceDataset: quality.Dataset2023,
		CacheSize:        3,
	}, fsys, m)
	require.NoError(t, err)

	return NewServer(cat, m, Options{DefaultSite: "ALIG"}), m
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, target))
	return rec
}

func TestStatusCodes(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	tests := []struct {
		name        string
		target      string
		status      int
		contentType string
	}{
		{"index", "/", http.StatusOK, "text/html"},
		{"chart defaults", "/chart", http.StatusOK, "text/html"},
		{"chart explicit", "/chart?dataset=17SoI23.csv&site=ALIG&metric=MP1&const=G", http.StatusOK, "text/html"},
		{"chart lower case codes", "/chart?metric=crgf&const=g,r", http.StatusOK, "text/html"},
		{"chart missing site", "/chart?site=NOPE", http.StatusOK, "text/html"},
		{"png", "/chart.png", http.StatusOK, "image/png"},
		{"svg", "/chart.svg?const=G&const=E", http.StatusOK, "image/svg+xml"},
		{"overview", "/overview?site=ALIG", http.StatusOK, "text/html"},
		{"unknown metric", "/chart?metric=MP9", http.StatusBadRequest, "application/json"},
		{"unknown dataset", "/chart?dataset=SoI21.csv", http.StatusBadRequest, "application/json"},
		{"unknown constellation", "/chart.png?const=X", http.StatusBadRequest, "application/json"},
		{"path dataset", "/api/sites?dataset=../etc/passwd", http.StatusBadRequest, "application/json"},
		{"broken dataset", "/chart?dataset=broken.csv&site=ALIG", http.StatusInternalServerError, "application/json"},
		{"health", "/healthz", http.StatusOK, "application/json"},
		{"metrics", "/metrics", http.StatusOK, "text/plain"},
		{"unknown route", "/nope", http.StatusNotFound, "application/json"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := get(t, s, tt.target)
			testutil.AssertStatusCode(t, rec.Code, tt.status)
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), tt.contentType),
				"content-type %q, want prefix %q", rec.Header().Get("Content-Type"), tt.contentType)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, testutil.NewTestRequest(http.MethodPost, "/chart"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestChart_Content(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := get(t, s, "/chart?dataset=17SoI23.csv&site=ALIG&metric=MP1&const=G")
	body := rec.Body.String()
	assert.Contains(t, body, "Multipath12 in ALIG")
	assert.Contains(t, body, "Day of year (2023)")
	assert.Contains(t, body, "#FF6347")

	empty := get(t, s, "/chart?site=NOPE&metric=CRIOD")
	assert.Contains(t, empty.Body.String(), "Obs per Slip:IOD in NOPE")
	assert.Contains(t, empty.Body.String(), "0 points")
}

func TestSeries_Scenario(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/series?dataset=17SoI23.csv&site=ALIG&metric=MP1&const=G")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp struct {
		Dataset     string `json:"dataset"`
		YearLabel   string `json:"year_label"`
		Site        string `json:"site"`
		Metric      string `json:"metric"`
		MetricLabel string `json:"metric_label"`
		Points      []struct {
			DOY   int      `json:"doy"`
			Value *float64 `json:"value"`
			Const string   `json:"const"`
		} `json:"points"`
		Summaries []quality.Summary `json:"summaries"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, "(2023)", resp.YearLabel)
	assert.Equal(t, "Multipath12", resp.MetricLabel)
	require.Len(t, resp.Points, 1)
	assert.Equal(t, 10, resp.Points[0].DOY)
	require.NotNil(t, resp.Points[0].Value)
	assert.InDelta(t, 0.5, *resp.Points[0].Value, 1e-12)
	assert.Equal(t, "G", resp.Points[0].Const)
	require.Len(t, resp.Summaries, 1)
	assert.Equal(t, 1, resp.Summaries[0].Count)
}

func TestSeries_EmptyConstellations(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/series?dataset=17SoI23.csv&site=ALIG&const=")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Contains(t, rec.Body.String(), `"points":[]`)
	assert.Contains(t, rec.Body.String(), `"constellations":[]`)
}

func TestSites(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/sites?dataset=SoI22.csv")
	var resp sitesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, sitesResponse{Dataset: quality.Dataset2022, Sites: []string{"HYDE", "ALIG"}}, resp)
}

func TestCatalogListings(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	var datasets []quality.DatasetDescriptor
	require.NoError(t, json.NewDecoder(get(t, s, "/api/datasets").Body).Decode(&datasets))
	assert.Len(t, datasets, 3)
	assert.Equal(t, quality.Dataset2022, datasets[0].ID)

	var metricList []quality.MetricDescriptor
	require.NoError(t, json.NewDecoder(get(t, s, "/api/metrics").Body).Decode(&metricList))
	assert.Equal(t, quality.Metrics(), metricList)

	var consts []quality.ConstellationDescriptor
	require.NoError(t, json.NewDecoder(get(t, s, "/api/constellations").Body).Decode(&consts))
	assert.Equal(t, quality.Constellations(), consts)
}

func TestIndex(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	body := get(t, s, "/").Body.String()
	assert.Contains(t, body, `<option value="SoI22.csv" selected>`)
	assert.Contains(t, body, `<option value="ALIG" selected>`)
	assert.Contains(t, body, `<option value="MP1" selected>Multipath12</option>`)
	assert.Contains(t, body, `value="G" checked`)
	assert.Contains(t, body, `/chart?const=G&amp;dataset=SoI22.csv&amp;metric=MP1&amp;site=ALIG`)

	missing := get(t, s, "/?site=ZZZZ").Body.String()
	assert.Contains(t, missing, "ZZZZ (no data)")
}

func TestIndex_DefaultSiteFallsBackToFirst(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	s.opts.DefaultSite = "IISC"

	body := get(t, s, "/").Body.String()
	assert.Contains(t, body, `<option value="HYDE" selected>`)
}

func TestMetricsRecorded(t *testing.T) {
	t.Parallel()
	s, m := newTestServer(t)

	get(t, s, "/chart")
	get(t, s, "/chart.svg")

	var buf bytes.Buffer
	rec := get(t, s, "/metrics")
	buf.ReadFrom(rec.Body)
	assert.Contains(t, buf.String(), `ringoview_chart_renders_total{format="html"} 1`)
	assert.Contains(t, buf.String(), `ringoview_chart_renders_total{format="svg"} 1`)
	assert.NotNil(t, m)
}

func TestSelectionQueryRoundTrip(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	for _, sel := range []quality.Selection{
		{Dataset: quality.Dataset2023, Site: "BJFS", Metric: quality.CRGF, Constellations: []quality.Constellation{quality.GLONASS, quality.GPS}},
		{Dataset: quality.Dataset2022, Site: "ALIG", Metric: quality.MP5, Constellations: []quality.Constellation{}},
	} {
		r := httptest.NewRequest(http.MethodGet, "/chart?"+selectionQuery(sel).Encode(), nil)
		got, err := s.parseSelection(r)
		require.NoError(t, err)
		assert.Equal(t, sel, got)
	}
}

func TestStatusCodeColor(t *testing.T) {
	t.Parallel()
	assert.Contains(t, statusCodeColor(200), colorBoldGreen)
	assert.Contains(t, statusCodeColor(304), colorYellow)
	assert.Contains(t, statusCodeColor(404), colorBoldRed)
	assert.Contains(t, statusCodeColor(500), colorBoldRed)
	assert.Equal(t, "100", statusCodeColor(100))
}
