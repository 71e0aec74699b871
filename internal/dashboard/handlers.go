package dashboard

import (
	"bytes"
	"context"
	"net/http"

	"github.com/banshee-data/ringoview/internal/chart"
	"github.com/banshee-data/ringoview/internal/httputil"
	"github.com/banshee-data/ringoview/internal/monitoring"
	"github.com/banshee-data/ringoview/internal/quality"
	"github.com/banshee-data/ringoview/internal/version"
)

// Render formats recorded in metrics.
const (
	formatHTML     = "html"
	formatOverview = "overview"
)

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		monitoring.Logf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	httputil.WriteJSONError(w, status, err.Error())
}

func (s *Server) filter(ctx context.Context, sel quality.Selection) (quality.FilteredTable, error) {
	t, err := s.catalog.Table(ctx, sel.Dataset)
	if err != nil {
		return quality.FilteredTable{}, err
	}
	f, err := quality.FilterObservations(t, sel.Site, sel.Metric, sel.Constellations)
	if err != nil {
		return f, err
	}
	monitoring.Debugf("%s %s %s %v: %d of %d rows", sel.Dataset, sel.Site, sel.Metric, sel.Constellations, f.Len(), t.Len())
	return f, nil
}

func (s *Server) buildChart(ctx context.Context, sel quality.Selection) (chart.Spec, error) {
	f, err := s.filter(ctx, sel)
	if err != nil {
		return chart.Spec{}, err
	}
	label, _ := s.catalog.Label(sel.Dataset)
	return chart.Build(f, sel.Dataset, label), nil
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sel, err := s.parseSelection(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	spec, err := s.buildChart(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderHTML(&buf, spec, s.opts.Chart); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.ObserveRender(formatHTML, spec.Len())
	httputil.WriteBody(w, httputil.ContentTypeHTML, buf.Bytes())
}

func (s *Server) handleImage(format string) http.HandlerFunc {
	contentType, _ := chart.ContentType(format)
	return func(w http.ResponseWriter, r *http.Request) {
		sel, err := s.parseSelection(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		spec, err := s.buildChart(r.Context(), sel)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := chart.RenderImage(&buf, spec, format); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.metrics.ObserveRender(format, spec.Len())
		httputil.WriteBody(w, contentType, buf.Bytes())
	}
}

// handleOverview renders every metric for the selected site on one page.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	sel, err := s.parseSelection(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.catalog.Table(r.Context(), sel.Dataset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	label, _ := s.catalog.Label(sel.Dataset)

	specs := make([]chart.Spec, 0, len(quality.MetricCodes()))
	points := 0
	for _, m := range quality.MetricCodes() {
		f, err := quality.FilterObservations(t, sel.Site, m, sel.Constellations)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		spec := chart.Build(f, sel.Dataset, label)
		points += spec.Len()
		specs = append(specs, spec)
	}

	var buf bytes.Buffer
	if err := chart.RenderOverview(&buf, specs, s.opts.Chart); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.ObserveRender(formatOverview, points)
	httputil.WriteBody(w, httputil.ContentTypeHTML, buf.Bytes())
}

type healthResponse struct {
	Status   string       `json:"status"`
	Version  version.Info `json:"version"`
	Datasets int          `json:"datasets"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, healthResponse{
		Status:   "ok",
		Version:  version.Get(),
		Datasets: len(s.catalog.Datasets()),
	})
}

func (s *Server) listDatasets(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, s.catalog.Datasets())
}

func (s *Server) listMetrics(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, quality.Metrics())
}

func (s *Server) listConstellations(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, quality.Constellations())
}

type sitesResponse struct {
	Dataset string   `json:"dataset"`
	Sites   []string `json:"sites"`
}

func (s *Server) listSites(w http.ResponseWriter, r *http.Request) {
	dataset, err := s.parseDataset(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sites, err := s.catalog.Sites(r.Context(), dataset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if sites == nil {
		sites = []string{}
	}
	httputil.WriteJSONOK(w, sitesResponse{Dataset: dataset, Sites: sites})
}

type seriesResponse struct {
	Dataset        string                  `json:"dataset"`
	YearLabel      string                  `json:"year_label"`
	Site           string                  `json:"site"`
	Metric         quality.Metric          `json:"metric"`
	MetricLabel    string                  `json:"metric_label"`
	Constellations []quality.Constellation `json:"constellations"`
	Points         []quality.Point         `json:"points"`
	Summaries      []quality.Summary       `json:"summaries"`
}

func (s *Server) getSeries(w http.ResponseWriter, r *http.Request) {
	sel, err := s.parseSelection(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.filter(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	yearLabel, _ := s.catalog.Label(sel.Dataset)
	metricLabel, _ := quality.LabelForMetric(sel.Metric)
	httputil.WriteJSONOK(w, seriesResponse{
		Dataset:        sel.Dataset,
		YearLabel:      yearLabel,
		Site:           sel.Site,
		Metric:         sel.Metric,
		MetricLabel:    metricLabel,
		Constellations: sel.Constellations,
		Points:         f.Points,
		Summaries:      f.Summaries(),
	})
}
