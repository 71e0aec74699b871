// Package config loads the dashboard configuration: where the quality
// exports live, which datasets are offered, the site-list policy, cache
// sizing and the defaults of the selector controls.
package config
