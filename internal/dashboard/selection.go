package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/banshee-data/ringoview/internal/catalog"
	"github.com/banshee-data/ringoview/internal/quality"
)

// Query parameters shared by the page, chart and API routes.
const (
	paramDataset       = "dataset"
	paramSite          = "site"
	paramMetric        = "metric"
	paramConstellation = "const"
)

// parseSelection reads the chart selection from the query string, filling
// defaults for anything absent. An explicitly empty const parameter selects
// no constellations.
func (s *Server) parseSelection(r *http.Request) (quality.Selection, error) {
	q := r.URL.Query()

	dataset, err := s.parseDataset(q)
	if err != nil {
		return quality.Selection{}, err
	}
	sel := quality.Selection{Dataset: dataset, Metric: s.opts.DefaultMetric}

	if v := strings.TrimSpace(q.Get(paramMetric)); v != "" {
		m, ok := quality.ParseMetric(v)
		if !ok {
			return sel, fmt.Errorf("%w: %q", quality.ErrUnknownMetric, v)
		}
		sel.Metric = m
	}

	if values, ok := q[paramConstellation]; ok {
		consts, err := quality.ParseConstellations(values)
		if err != nil {
			return sel, err
		}
		sel.Constellations = consts
	} else {
		sel.Constellations = append([]quality.Constellation{}, s.opts.DefaultConstellations...)
	}

	sel.Site = strings.TrimSpace(q.Get(paramSite))
	if sel.Site == "" {
		site, err := s.defaultSite(r.Context(), sel.Dataset)
		if err != nil {
			return sel, err
		}
		sel.Site = site
	}
	return sel, nil
}

func (s *Server) parseDataset(q url.Values) (string, error) {
	dataset := strings.TrimSpace(q.Get(paramDataset))
	if dataset == "" {
		datasets := s.catalog.Datasets()
		if len(datasets) == 0 {
			return "", fmt.Errorf("no datasets configured")
		}
		return datasets[0].ID, nil
	}
	if !s.catalog.Has(dataset) {
		return "", fmt.Errorf("%w: %q", catalog.ErrUnknownDataset, dataset)
	}
	return dataset, nil
}

// defaultSite picks the configured default site when the dataset lists it,
// otherwise the first listed site.
func (s *Server) defaultSite(ctx context.Context, dataset string) (string, error) {
	sites, err := s.catalog.Sites(ctx, dataset)
	if err != nil {
		return "", err
	}
	for _, site := range sites {
		if site == s.opts.DefaultSite {
			return site, nil
		}
	}
	if len(sites) > 0 {
		return sites[0], nil
	}
	return s.opts.DefaultSite, nil
}

// selectionQuery encodes sel so that it round-trips through parseSelection.
func selectionQuery(sel quality.Selection) url.Values {
	v := url.Values{}
	v.Set(paramDataset, sel.Dataset)
	v.Set(paramSite, sel.Site)
	v.Set(paramMetric, string(sel.Metric))
	if len(sel.Constellations) == 0 {
		v.Set(paramConstellation, "")
	}
	for _, c := range sel.Constellations {
		v.Add(paramConstellation, string(c))
	}
	return v
}

// errorStatus maps request errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrUnknownDataset),
		errors.Is(err, quality.ErrUnknownMetric),
		errors.Is(err, quality.ErrUnknownConstellation):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
