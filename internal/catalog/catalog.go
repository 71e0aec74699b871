// Package catalog resolves dataset identifiers to RINGO quality exports and
// caches the parsed tables.
//
// The cache is keyed by dataset id and keeps the most recently used tables.
// Every lookup re-stats the file, so an export rewritten on disk is picked up
// on the next request without a restart. Cached tables are immutable and
// shared by concurrent requests.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/banshee-data/ringoview/internal/config"
	"github.com/banshee-data/ringoview/internal/fsutil"
	"github.com/banshee-data/ringoview/internal/metrics"
	"github.com/banshee-data/ringoview/internal/monitoring"
	"github.com/banshee-data/ringoview/internal/quality"
	"github.com/banshee-data/ringoview/internal/security"
)

// ErrUnknownDataset is returned for dataset ids that are not configured.
var ErrUnknownDataset = errors.New("unknown dataset")

// Options configures a Catalog.
type Options struct {
	DataDir          string
	Datasets         []quality.DatasetDescriptor
	ReferenceDataset string
	SiteSource       string
	CacheSize        int
}

// OptionsFromConfig maps the dashboard configuration onto catalog options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DataDir:          cfg.GetDataDir(),
		Datasets:         cfg.GetDatasets(),
		ReferenceDataset: cfg.GetReferenceDataset(),
		SiteSource:       cfg.GetSiteSource(),
		CacheSize:        cfg.GetCacheSize(),
	}
}

type entry struct {
	id      string
	table   *quality.Table
	size    int64
	modTime time.Time
}

// Catalog serves quality tables by dataset id.
type Catalog struct {
	fs      fsutil.FileSystem
	opts    Options
	labels  map[string]string
	metrics *metrics.Metrics

	group singleflight.Group

	mu      sync.Mutex
	entries []*entry // most recently used first
}

// New creates a Catalog. m may be nil.
func New(opts Options, fsys fsutil.FileSystem, m *metrics.Metrics) (*Catalog, error) {
	if len(opts.Datasets) == 0 {
		return nil, fmt.Errorf("no datasets configured")
	}
	if opts.CacheSize < 1 {
		opts.CacheSize = 1
	}
	if opts.SiteSource == "" {
		opts.SiteSource = config.SiteSourcePerDataset
	}

	labels := make(map[string]string, len(opts.Datasets))
	for _, d := range opts.Datasets {
		if _, err := security.ResolveDatasetPath(opts.DataDir, d.ID); err != nil {
			return nil, err
		}
		labels[d.ID] = d.Label
	}
	if opts.ReferenceDataset == "" {
		opts.ReferenceDataset = opts.Datasets[0].ID
	}
	if _, ok := labels[opts.ReferenceDataset]; !ok {
		return nil, fmt.Errorf("reference dataset %q: %w", opts.ReferenceDataset, ErrUnknownDataset)
	}

	return &Catalog{
		fs:      fsys,
		opts:    opts,
		labels:  labels,
		metrics: m,
	}, nil
}

// Datasets returns the configured dataset descriptors in display order.
func (c *Catalog) Datasets() []quality.DatasetDescriptor {
	return append([]quality.DatasetDescriptor(nil), c.opts.Datasets...)
}

// Label returns the year label of a dataset.
func (c *Catalog) Label(id string) (string, bool) {
	l, ok := c.labels[id]
	return l, ok
}

// Has reports whether id is a configured dataset.
func (c *Catalog) Has(id string) bool {
	_, ok := c.labels[id]
	return ok
}

// Reference returns the reference dataset id.
func (c *Catalog) Reference() string { return c.opts.ReferenceDataset }

// SiteSource returns the site list policy in effect.
func (c *Catalog) SiteSource() string { return c.opts.SiteSource }

// Table returns the parsed table for a dataset, loading it when it is not
// cached or the file changed since it was cached.
func (c *Catalog) Table(ctx context.Context, id string) (*quality.Table, error) {
	if !c.Has(id) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := security.ResolveDatasetPath(c.opts.DataDir, id)
	if err != nil {
		return nil, err
	}
	info, err := c.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", id, err)
	}

	if t, ok := c.lookup(id, info.Size(), info.ModTime()); ok {
		return t, nil
	}

	size, modTime := info.Size(), info.ModTime()
	ch := c.group.DoChan(id, func() (interface{}, error) {
		// another caller may have finished loading since our lookup
		if t, ok := c.peek(id, size, modTime); ok {
			return t, nil
		}
		return c.load(id, path)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*quality.Table), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// lookup returns a cached table when its file is unchanged.
func (c *Catalog) lookup(id string, size int64, modTime time.Time) (*quality.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, e := range c.entries {
		if e.id != id {
			continue
		}
		if e.size != size || !e.modTime.Equal(modTime) {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			c.metrics.ObserveCacheLookup(metrics.CacheStale)
			monitoring.Logf("dataset %s changed on disk, reloading", id)
			return nil, false
		}
		copy(c.entries[1:i+1], c.entries[:i])
		c.entries[0] = e
		c.metrics.ObserveCacheLookup(metrics.CacheHit)
		monitoring.Debugf("table cache hit for %s", id)
		return e.table, true
	}
	c.metrics.ObserveCacheLookup(metrics.CacheMiss)
	return nil, false
}

func (c *Catalog) peek(id string, size int64, modTime time.Time) (*quality.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.id == id && e.size == size && e.modTime.Equal(modTime) {
			return e.table, true
		}
	}
	return nil, false
}

func (c *Catalog) load(id, path string) (*quality.Table, error) {
	start := time.Now()
	t, size, modTime, err := c.read(id, path)
	c.metrics.ObserveLoad(id, t.Len(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", id, err)
	}
	monitoring.Logf("loaded dataset %s: %d rows in %v", id, t.Len(), time.Since(start))

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e.id == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			break
		}
	}
	c.entries = append([]*entry{{id: id, table: t, size: size, modTime: modTime}}, c.entries...)
	if len(c.entries) > c.opts.CacheSize {
		for _, evicted := range c.entries[c.opts.CacheSize:] {
			monitoring.Debugf("evicting dataset %s from table cache", evicted.id)
		}
		c.entries = c.entries[:c.opts.CacheSize]
	}
	return t, nil
}

func (c *Catalog) read(id, path string) (*quality.Table, int64, time.Time, error) {
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, 0, time.Time{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, time.Time{}, err
	}
	t, err := quality.ReadTable(f, id)
	if err != nil {
		return nil, 0, time.Time{}, err
	}
	return t, info.Size(), info.ModTime(), nil
}

// Sites returns the selectable sites for dataset id under the configured
// site list policy.
func (c *Catalog) Sites(ctx context.Context, id string) ([]string, error) {
	if !c.Has(id) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, id)
	}
	source := id
	if c.opts.SiteSource == config.SiteSourceReference {
		source = c.opts.ReferenceDataset
	}
	t, err := c.Table(ctx, source)
	if err != nil {
		return nil, err
	}
	return t.Sites(), nil
}

// Warm loads the reference dataset. A failure here means the dashboard has
// nothing to show and should refuse to start.
func (c *Catalog) Warm(ctx context.Context) error {
	_, err := c.Table(ctx, c.opts.ReferenceDataset)
	return err
}

// Invalidate drops a dataset from the cache.
func (c *Catalog) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e.id == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// Cached returns the ids of cached datasets, most recently used first.
func (c *Catalog) Cached() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		ids = append(ids, e.id)
	}
	return ids
}
