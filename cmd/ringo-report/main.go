// Command ringo-report renders quality charts to files without running the
// dashboard: one chart as html, png or svg, or every metric for a site.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/banshee-data/ringoview/internal/catalog"
	"github.com/banshee-data/ringoview/internal/chart"
	"github.com/banshee-data/ringoview/internal/config"
	"github.com/banshee-data/ringoview/internal/fsutil"
	"github.com/banshee-data/ringoview/internal/monitoring"
	"github.com/banshee-data/ringoview/internal/quality"
	"github.com/banshee-data/ringoview/internal/security"
)

const formatHTML = "html"

type options struct {
	configPath string
	dataDir    string
	dataset    string
	site       string
	metric     string
	consts     string
	format     string
	out        string
	outDir     string
	allMetrics bool
	verbose    bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("ringo-report", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "Path to a JSON or YAML config file (optional)")
	fs.StringVar(&o.dataDir, "data-dir", "", "Directory holding the quality CSV files (overrides config)")
	fs.StringVar(&o.dataset, "dataset", "", "Dataset id (default: first configured dataset)")
	fs.StringVar(&o.site, "site", "", "Site code (default: configured default site)")
	fs.StringVar(&o.metric, "metric", "", "Metric code (default: configured default metric)")
	fs.StringVar(&o.consts, "const", "", "Comma-separated constellation codes (default: configured default)")
	fs.StringVar(&o.format, "format", chart.FormatPNG, "Output format: html, png or svg")
	fs.StringVar(&o.out, "out", "", "Output file (default: derived from the selection inside -out-dir)")
	fs.StringVar(&o.outDir, "out-dir", ".", "Directory for derived output file names")
	fs.BoolVar(&o.allMetrics, "all-metrics", false, "Render every metric: one overview page for html, one file per metric for images")
	fs.BoolVar(&o.verbose, "verbose", false, "Log cache and filter detail")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	o.format = strings.ToLower(o.format)
	switch o.format {
	case formatHTML, chart.FormatPNG, chart.FormatSVG:
	default:
		return o, fmt.Errorf("%w: %q", chart.ErrUnsupportedFormat, o.format)
	}
	if o.allMetrics && o.format != formatHTML && o.out != "" {
		return o, errors.New("-out names a single file; use -out-dir with -all-metrics image output")
	}
	return o, nil
}

func loadConfig(o options) (*config.Config, error) {
	cfg := &config.Config{}
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.dataDir != "" {
		cfg.DataDir = &o.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// selection resolves the requested chart selection against config defaults.
func selection(o options, cfg *config.Config, cat *catalog.Catalog) (quality.Selection, error) {
	sel := quality.Selection{
		Dataset:        o.dataset,
		Site:           o.site,
		Metric:         cfg.GetDefaultMetric(),
		Constellations: cfg.GetDefaultConstellations(),
	}
	if sel.Dataset == "" {
		sel.Dataset = cat.Datasets()[0].ID
	}
	if !cat.Has(sel.Dataset) {
		return sel, fmt.Errorf("%w: %q", catalog.ErrUnknownDataset, sel.Dataset)
	}
	if sel.Site == "" {
		sel.Site = cfg.GetDefaultSite()
	}
	if o.metric != "" {
		m, ok := quality.ParseMetric(o.metric)
		if !ok {
			return sel, fmt.Errorf("%w: %q", quality.ErrUnknownMetric, o.metric)
		}
		sel.Metric = m
	}
	if o.consts != "" {
		consts, err := quality.ParseConstellations([]string{o.consts})
		if err != nil {
			return sel, err
		}
		sel.Constellations = consts
	}
	return sel, nil
}

// outputPath returns where a rendered chart is written. name is the metric
// code or "overview".
func outputPath(o options, sel quality.Selection, name string) string {
	if o.out != "" {
		return o.out
	}
	base := security.SanitizeFilename(fmt.Sprintf("%s_%s_%s", sel.Site, name, strings.TrimSuffix(sel.Dataset, filepath.Ext(sel.Dataset))))
	return filepath.Join(o.outDir, base+"."+o.format)
}

func writeFile(fsys fsutil.FileSystem, path string, body []byte) error {
	if err := security.ValidateExportPath(path); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func render(spec chart.Spec, format string, cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if format == formatHTML {
		err = chart.RenderHTML(&buf, spec, chart.HTMLOptions{Theme: cfg.GetTheme(), AssetsHost: cfg.GetAssetsHost()})
	} else {
		err = chart.RenderImage(&buf, spec, format)
	}
	return buf.Bytes(), err
}

func run(ctx context.Context, args []string, stdout io.Writer, fsys fsutil.FileSystem) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	monitoring.SetVerbose(o.verbose)

	cfg, err := loadConfig(o)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cat, err := catalog.New(catalog.OptionsFromConfig(cfg), fsys, nil)
	if err != nil {
		return err
	}
	sel, err := selection(o, cfg, cat)
	if err != nil {
		return err
	}
	t, err := cat.Table(ctx, sel.Dataset)
	if err != nil {
		return err
	}
	yearLabel, _ := cat.Label(sel.Dataset)

	metrics := []quality.Metric{sel.Metric}
	if o.allMetrics {
		metrics = quality.MetricCodes()
	}

	var specs []chart.Spec
	for _, m := range metrics {
		f, err := quality.FilterObservations(t, sel.Site, m, sel.Constellations)
		if err != nil {
			return err
		}
		specs = append(specs, chart.Build(f, sel.Dataset, yearLabel))
	}
	if !t.HasSite(sel.Site) {
		monitoring.Logf("site %s has no rows in %s; charts will be empty", sel.Site, sel.Dataset)
	}

	if o.allMetrics && o.format == formatHTML {
		var buf bytes.Buffer
		if err := chart.RenderOverview(&buf, specs, chart.HTMLOptions{Theme: cfg.GetTheme(), AssetsHost: cfg.GetAssetsHost()}); err != nil {
			return err
		}
		path := outputPath(o, sel, "overview")
		if err := writeFile(fsys, path, buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintln(stdout, path)
		return nil
	}

	for _, spec := range specs {
		body, err := render(spec, o.format, cfg)
		if err != nil {
			return err
		}
		path := outputPath(o, sel, string(spec.Metric))
		if err := writeFile(fsys, path, body); err != nil {
			return err
		}
		fmt.Fprintln(stdout, path)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, fsutil.OSFileSystem{}); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("ringo-report: %v", err)
	}
}
