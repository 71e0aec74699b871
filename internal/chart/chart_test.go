package chart

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/ringoview/internal/quality"
	"github.com/banshee-data/ringoview/internal/testutil"
)

func filtered(t *testing.T, site string, metric quality.Metric, consts ...quality.Constellation) quality.FilteredTable {
	t.Helper()
	rows := append(testutil.ScenarioRows(),
		testutil.Row{Site: "ALIG", DOY: 11, Const: "G", MP1: 0.6},
		testutil.Row{Site: "ALIG", DOY: 11, Const: "R", MP1: 0.8},
	)
	tbl, err := quality.ReadTable(strings.NewReader(testutil.QualityCSV(rows...)), quality.Dataset2022)
	require.NoError(t, err)
	f, err := quality.FilterObservations(tbl, site, metric, consts)
	require.NoError(t, err)
	return f
}

func TestBuild(t *testing.T) {
	t.Parallel()

	s := Build(filtered(t, "ALIG", quality.MP1, quality.GPS, quality.GLONASS), quality.Dataset2022, "(2022)")

	assert.Equal(t, " Multipath12 in ALIG", s.Title)
	assert.Equal(t, "Day of year (2022)", s.XLabel)
	assert.Equal(t, "Multipath12 (m)", s.YLabel)
	assert.Equal(t, 4, s.Len())

	type summary struct {
		Name  string
		Color string
		DOYs  []int
	}
	var got []summary
	for _, series := range s.Series {
		var doys []int
		for _, p := range series.Points {
			doys = append(doys, p.DOY)
		}
		got = append(got, summary{series.Name, series.Color, doys})
	}
	want := []summary{
		{"GPS", "#FF6347", []int{10, 11}},
		{"GLONASS", "#F0E68C", []int{10, 11}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Fallbacks(t *testing.T) {
	t.Parallel()

	s := Build(quality.FilteredTable{Site: "ZZZZ", Metric: "MP9"}, "", "")
	assert.Equal(t, " MP9 in ZZZZ", s.Title)
	assert.Equal(t, "Day of year", s.XLabel)
	assert.Equal(t, "MP9", s.YLabel)
	assert.True(t, s.Empty())
	assert.NotNil(t, s.Series)

	odd := Build(quality.FilteredTable{
		Site:   "ALIG",
		Metric: quality.CRGF,
		Points: []quality.Point{{DOY: 1, Value: 2, Constellation: "S"}},
	}, quality.Dataset2023, "(2023)")
	require.Len(t, odd.Series, 1)
	assert.Equal(t, "S", odd.Series[0].Name)
	assert.Equal(t, "#A9A9A9", odd.Series[0].Color)
}

func TestBuild_MissingSiteIsEmpty(t *testing.T) {
	t.Parallel()
	s := Build(filtered(t, "NOPE", quality.MP2, quality.GPS), quality.Dataset2022, "(2022)")
	assert.True(t, s.Empty())
	assert.Equal(t, " Multipath21 in NOPE", s.Title)
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	s := Build(filtered(t, "ALIG", quality.MP1, quality.GPS, quality.GLONASS), quality.Dataset2022, "(2022)")
	s.Series[0].Points = append(s.Series[0].Points, quality.Point{DOY: 12, Value: math.NaN(), Constellation: quality.GPS})

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, s, HTMLOptions{AssetsHost: "https://assets.example/"}))

	out := buf.String()
	assert.Contains(t, out, "Multipath12 in ALIG")
	assert.Contains(t, out, "Day of year (2022)")
	assert.Contains(t, out, "#FF6347")
	assert.Contains(t, out, "#F0E68C")
	assert.Contains(t, out, "GLONASS")
	assert.Contains(t, out, "https://assets.example/")
	assert.NotContains(t, out, "NaN")
}

func TestRenderHTML_Empty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, Build(quality.FilteredTable{Site: "ALIG", Metric: quality.MP1}, "", ""), HTMLOptions{}))
	assert.Contains(t, buf.String(), "0 points")
}

func TestRenderOverview(t *testing.T) {
	t.Parallel()

	var specs []Spec
	for _, m := range []quality.Metric{quality.MP1, quality.CRMW} {
		specs = append(specs, Build(filtered(t, "ALIG", m, quality.GPS), quality.Dataset2022, "(2022)"))
	}

	var buf bytes.Buffer
	require.NoError(t, RenderOverview(&buf, specs, HTMLOptions{}))
	assert.Contains(t, buf.String(), "Multipath12 in ALIG")
	assert.Contains(t, buf.String(), "Obs per Slip:MW in ALIG")
}

func TestChartID(t *testing.T) {
	t.Parallel()
	a, b := chartID(), chartID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 33)
	assert.NotContains(t, a, "-")
}

func TestRenderImage(t *testing.T) {
	t.Parallel()

	s := Build(filtered(t, "ALIG", quality.MP1, quality.GPS, quality.GLONASS), quality.Dataset2022, "(2022)")

	var png bytes.Buffer
	require.NoError(t, RenderImage(&png, s, FormatPNG))
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))

	var svg bytes.Buffer
	require.NoError(t, RenderImage(&svg, s, FormatSVG))
	assert.Contains(t, svg.String(), "<svg")

	var empty bytes.Buffer
	require.NoError(t, RenderImage(&empty, Build(quality.FilteredTable{Site: "ALIG", Metric: quality.MP1}, "", ""), FormatPNG))
	assert.NotZero(t, empty.Len())

	err := RenderImage(&bytes.Buffer{}, s, "gif")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSegments(t *testing.T) {
	t.Parallel()
	nan := math.NaN()
	pts := []quality.Point{
		{DOY: 1, Value: 1}, {DOY: 2, Value: nan}, {DOY: 3, Value: 3}, {DOY: 4, Value: 4}, {DOY: 5, Value: nan},
	}
	segs := segments(pts)
	require.Len(t, segs, 2)
	assert.Equal(t, 1, segs[0].Len())
	assert.Equal(t, 2, segs[1].Len())
	assert.Empty(t, segments([]quality.Point{{DOY: 1, Value: nan}}))
}

func TestContentTypeAndColor(t *testing.T) {
	t.Parallel()

	ct, err := ContentType(FormatSVG)
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", ct)
	_, err = ContentType("pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	r, g, b, _ := hexColor("#1E90FF").RGBA()
	assert.Equal(t, []uint32{0x1e, 0x90, 0xff}, []uint32{r >> 8, g >> 8, b >> 8})
	r, _, _, _ = hexColor("bogus").RGBA()
	assert.Equal(t, uint32(0xa9), r>>8)
}
