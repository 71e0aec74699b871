// Command ringoview serves the RINGO quality-metric dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/banshee-data/ringoview/internal/catalog"
	"github.com/banshee-data/ringoview/internal/config"
	"github.com/banshee-data/ringoview/internal/dashboard"
	"github.com/banshee-data/ringoview/internal/fsutil"
	"github.com/banshee-data/ringoview/internal/metrics"
	"github.com/banshee-data/ringoview/internal/monitoring"
	"github.com/banshee-data/ringoview/internal/version"
)

var (
	configFile  = flag.String("config", "", "Path to a JSON or YAML config file (optional)")
	listen      = flag.String("listen", "", "Listen address (overrides config; default :8080)")
	dataDir     = flag.String("data-dir", "", "Directory holding the quality CSV files (overrides config)")
	siteSource  = flag.String("site-source", "", "Site list policy: per-dataset or reference (overrides config)")
	verbose     = flag.Bool("verbose", false, "Log cache and filter detail")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// loadConfig reads the optional config file and applies command-line
// overrides on top of it.
func loadConfig(path, listenAddr, dir, sites string, debug bool) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if listenAddr != "" {
		cfg.Listen = &listenAddr
	}
	if dir != "" {
		cfg.DataDir = &dir
	}
	if sites != "" {
		cfg.SiteSource = &sites
	}
	if debug {
		cfg.Verbose = &debug
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("ringoview", version.String())
		return
	}

	cfg, err := loadConfig(*configFile, *listen, *dataDir, *siteSource, *verbose)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	monitoring.SetVerbose(cfg.GetVerbose())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	m.Registry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cat, err := catalog.New(catalog.OptionsFromConfig(cfg), fsutil.OSFileSystem{}, m)
	if err != nil {
		log.Fatalf("failed to create dataset catalog: %v", err)
	}
	// without the reference table there is nothing to select from
	if err := cat.Warm(ctx); err != nil {
		log.Fatalf("failed to load reference dataset: %v", err)
	}

	log.Printf("ringoview %s serving %d datasets from %s", version.String(), len(cat.Datasets()), cfg.GetDataDir())
	srv := dashboard.NewServer(cat, m, dashboard.OptionsFromConfig(cfg))
	if err := srv.ListenAndServe(ctx, cfg.GetListen(), cfg.GetShutdownTimeout()); err != nil {
		log.Printf("dashboard server error: %v", err)
		os.Exit(1)
	}
	log.Print("graceful shutdown complete")
}
