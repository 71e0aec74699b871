package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/ringoview/internal/quality"
	"github.com/banshee-data/ringoview/internal/security"
)

// ExampleConfigPath is the sample configuration shipped with the repository.
const ExampleConfigPath = "config/ringoview.example.yaml"

// Site list policies.
const (
	// SiteSourcePerDataset lists the sites of the selected dataset.
	SiteSourcePerDataset = "per-dataset"
	// SiteSourceReference always lists the sites of the reference dataset.
	SiteSourceReference = "reference"
)

// DefaultAssetsHost serves the echarts javascript used by rendered charts.
const DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

const maxCacheSize = 16

// Config is the dashboard configuration. Every field is optional; the Get*
// methods supply defaults for anything left unset, so partial files are safe.
// The same schema is accepted as JSON or YAML.
type Config struct {
	Listen                 *string                     `json:"listen,omitempty" yaml:"listen,omitempty"`
	DataDir                *string                     `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`
	IncludeBuiltinDatasets *bool                       `json:"include_builtin_datasets,omitempty" yaml:"include_builtin_datasets,omitempty"`
	Datasets               []quality.DatasetDescriptor `json:"datasets,omitempty" yaml:"datasets,omitempty"`
	ReferenceDataset       *string                     `json:"reference_dataset,omitempty" yaml:"reference_dataset,omitempty"`
	SiteSource             *string                     `json:"site_source,omitempty" yaml:"site_source,omitempty"`
	CacheSize              *int                        `json:"cache_size,omitempty" yaml:"cache_size,omitempty"`

	DefaultSite           *string  `json:"default_site,omitempty" yaml:"default_site,omitempty"`
	DefaultMetric         *string  `json:"default_metric,omitempty" yaml:"default_metric,omitempty"`
	DefaultConstellations []string `json:"default_constellations,omitempty" yaml:"default_constellations,omitempty"`

	AssetsHost      *string `json:"assets_host,omitempty" yaml:"assets_host,omitempty"`
	Theme           *string `json:"theme,omitempty" yaml:"theme,omitempty"`
	ShutdownTimeout *string `json:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty"` // duration string like "10s"
	Verbose         *bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Load reads a Config from a .json, .yaml or .yml file and validates it.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", ext[1:], err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for _, d := range c.GetDatasets() {
		if _, err := security.ResolveDatasetPath(".", d.ID); err != nil {
			return fmt.Errorf("dataset id: %w", err)
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate dataset id %q", d.ID)
		}
		seen[d.ID] = true
	}
	if len(seen) == 0 {
		return fmt.Errorf("no datasets configured")
	}

	if c.ReferenceDataset != nil && !seen[*c.ReferenceDataset] {
		return fmt.Errorf("reference_dataset %q is not a configured dataset", *c.ReferenceDataset)
	}

	if c.SiteSource != nil {
		switch *c.SiteSource {
		case SiteSourcePerDataset, SiteSourceReference:
		default:
			return fmt.Errorf("site_source must be %q or %q, got %q", SiteSourcePerDataset, SiteSourceReference, *c.SiteSource)
		}
	}

	if c.CacheSize != nil && (*c.CacheSize < 1 || *c.CacheSize > maxCacheSize) {
		return fmt.Errorf("cache_size must be between 1 and %d, got %d", maxCacheSize, *c.CacheSize)
	}

	if c.DefaultMetric != nil {
		if _, ok := quality.ParseMetric(*c.DefaultMetric); !ok {
			return fmt.Errorf("default_metric: %w: %q", quality.ErrUnknownMetric, *c.DefaultMetric)
		}
	}

	if len(c.DefaultConstellations) > 0 {
		consts, err := quality.ParseConstellations(c.DefaultConstellations)
		if err != nil {
			return fmt.Errorf("default_constellations: %w", err)
		}
		if len(consts) == 0 {
			return fmt.Errorf("default_constellations must name at least one constellation")
		}
	}

	if c.ShutdownTimeout != nil && *c.ShutdownTimeout != "" {
		if _, err := time.ParseDuration(*c.ShutdownTimeout); err != nil {
			return fmt.Errorf("invalid shutdown_timeout '%s': %w", *c.ShutdownTimeout, err)
		}
	}
	return nil
}

// GetListen returns the HTTP listen address.
func (c *Config) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return ":8080"
	}
	return *c.Listen
}

// GetDataDir returns the directory holding the quality CSV files.
func (c *Config) GetDataDir() string {
	if c.DataDir == nil || *c.DataDir == "" {
		return "."
	}
	return *c.DataDir
}

// GetDatasets returns the built-in datasets (unless disabled) followed by
// the configured ones, in order.
func (c *Config) GetDatasets() []quality.DatasetDescriptor {
	var out []quality.DatasetDescriptor
	if c.IncludeBuiltinDatasets == nil || *c.IncludeBuiltinDatasets {
		out = append(out, quality.BuiltinDatasets()...)
	}
	return append(out, c.Datasets...)
}

// GetReferenceDataset returns the dataset loaded at startup and used for the
// site list under the reference policy.
func (c *Config) GetReferenceDataset() string {
	if c.ReferenceDataset != nil && *c.ReferenceDataset != "" {
		return *c.ReferenceDataset
	}
	datasets := c.GetDatasets()
	for _, d := range datasets {
		if d.ID == quality.ReferenceDataset {
			return d.ID
		}
	}
	if len(datasets) > 0 {
		return datasets[0].ID
	}
	return ""
}

// GetSiteSource returns the site list policy.
func (c *Config) GetSiteSource() string {
	if c.SiteSource == nil || *c.SiteSource == "" {
		return SiteSourcePerDataset
	}
	return *c.SiteSource
}

// GetCacheSize returns how many loaded tables the catalog keeps.
func (c *Config) GetCacheSize() int {
	if c.CacheSize == nil {
		return 1
	}
	return *c.CacheSize
}

// GetDefaultSite returns the site selected when none is requested.
func (c *Config) GetDefaultSite() string {
	if c.DefaultSite == nil || *c.DefaultSite == "" {
		return "ALIG"
	}
	return *c.DefaultSite
}

// GetDefaultMetric returns the metric selected when none is requested.
func (c *Config) GetDefaultMetric() quality.Metric {
	if c.DefaultMetric != nil {
		if m, ok := quality.ParseMetric(*c.DefaultMetric); ok {
			return m
		}
	}
	return quality.MP1
}

// GetDefaultConstellations returns the initial constellation selection.
func (c *Config) GetDefaultConstellations() []quality.Constellation {
	if consts, err := quality.ParseConstellations(c.DefaultConstellations); err == nil && len(consts) > 0 {
		return consts
	}
	return append([]quality.Constellation(nil), quality.DefaultConstellations...)
}

// GetAssetsHost returns the base URL for echarts javascript assets.
func (c *Config) GetAssetsHost() string {
	if c.AssetsHost == nil || *c.AssetsHost == "" {
		return DefaultAssetsHost
	}
	return *c.AssetsHost
}

// GetTheme returns the echarts theme name.
func (c *Config) GetTheme() string {
	if c.Theme == nil || *c.Theme == "" {
		return "dark"
	}
	return *c.Theme
}

// GetShutdownTimeout returns the graceful shutdown timeout.
func (c *Config) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == nil || *c.ShutdownTimeout == "" {
		return 10 * time.Second // default
	}
	d, err := time.ParseDuration(*c.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second // default on parse error
	}
	return d
}

// GetVerbose reports whether debug logging is enabled.
func (c *Config) GetVerbose() bool {
	return c.Verbose != nil && *c.Verbose
}
