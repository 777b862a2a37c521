package config

import (
	"time"
)

type Config struct {
	Version       int           `toml:"version"`
	Cache         Cache         `toml:"cache"`
	Publisher     Publisher     `toml:"publisher"`
	Watch         Watch         `toml:"watch"`
	Inference     Inference     `toml:"inference"`
	Observability Observability `toml:"observability"`
}

type Cache struct {
	// Capacity bounds the number of cached results; 0 keeps every entry.
	Capacity           int   `toml:"capacity"`
	InvalidateOnChange *bool `toml:"invalidate_on_change"`
}

type Publisher struct {
	Workers                 int     `toml:"workers"`
	DiscardSuperseded       *bool   `toml:"discard_superseded"`
	MaxResolutionsPerSecond float64 `toml:"max_resolutions_per_second"`
	ResolutionBurst         int     `toml:"resolution_burst"`
}

type Watch struct {
	Enabled      *bool         `toml:"enabled"`
	Debounce     time.Duration `toml:"debounce"`
	ExcludeDirs  []string      `toml:"exclude_dirs"`
	ExcludeFiles []string      `toml:"exclude_files"`
}

type Inference struct {
	MaxDepth int `toml:"max_depth"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

func (c Cache) InvalidationEnabled() bool {
	if c.InvalidateOnChange == nil {
		return true
	}
	return *c.InvalidateOnChange
}

func (p Publisher) DiscardSupersededEnabled() bool {
	if p.DiscardSuperseded == nil {
		return true
	}
	return *p.DiscardSuperseded
}

func (w Watch) IsEnabled() bool {
	if w.Enabled == nil {
		return true
	}
	return *w.Enabled
}

// DefaultConfig returns a config with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
