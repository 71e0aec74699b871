package dashboard

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/banshee-data/ringoview/internal/httputil"
	"github.com/banshee-data/ringoview/internal/quality"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type option struct {
	Value    string
	Label    string
	Selected bool
}

type indexPage struct {
	Title          string
	Datasets       []option
	Sites          []option
	Metrics        []option
	Constellations []option
	ChartURL       string
	PNGURL         string
	SVGURL         string
	OverviewURL    string
	SeriesURL      string
}

// handleIndex renders the selector page. Every control submits the form, so
// the page is rebuilt with the new selection and the chart frame reloads.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sel, err := s.parseSelection(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sites, err := s.catalog.Sites(r.Context(), sel.Dataset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page := indexPage{Title: "RINGO quality metrics"}
	for _, d := range s.catalog.Datasets() {
		page.Datasets = append(page.Datasets, option{Value: d.ID, Label: d.ID, Selected: d.ID == sel.Dataset})
	}

	found := false
	for _, site := range sites {
		selected := site == sel.Site
		found = found || selected
		page.Sites = append(page.Sites, option{Value: site, Label: site, Selected: selected})
	}
	if !found {
		page.Sites = append([]option{{Value: sel.Site, Label: sel.Site + " (no data)", Selected: true}}, page.Sites...)
	}

	for _, m := range quality.Metrics() {
		page.Metrics = append(page.Metrics, option{Value: string(m.Code), Label: m.Label, Selected: m.Code == sel.Metric})
	}
	for _, c := range quality.Constellations() {
		page.Constellations = append(page.Constellations, option{Value: string(c.Code), Label: c.Name, Selected: sel.Includes(c.Code)})
	}

	qs := selectionQuery(sel).Encode()
	page.ChartURL = "/chart?" + qs
	page.PNGURL = "/chart.png?" + qs
	page.SVGURL = "/chart.svg?" + qs
	page.OverviewURL = "/overview?" + qs
	page.SeriesURL = "/api/series?" + qs

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteBody(w, httputil.ContentTypeHTML, buf.Bytes())
}
