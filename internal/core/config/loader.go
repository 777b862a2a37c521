package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"typeinspector/internal/core/errors"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
)

const (
	DefaultFileName = "typeinspector.toml"
	DefaultDir      = "data/config"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Parse decodes TOML content, applies defaults and validates the result.
func Parse(content string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "decode config")
	}

	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateCache(&cfg); err != nil {
		return nil, err
	}
	if err := validatePublisher(&cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(&cfg); err != nil {
		return nil, err
	}
	if err := validateInference(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DiscoverPaths lists the config locations tried when no explicit path is given.
func DiscoverPaths(cwd string) ([]string, error) {
	if strings.TrimSpace(cwd) == "" {
		return nil, errors.New(errors.CodeValidationError, "cwd must not be empty")
	}
	return []string{
		filepath.Join(cwd, DefaultDir, DefaultFileName),
		filepath.Join(cwd, DefaultFileName),
	}, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Publisher.Workers <= 0 {
		cfg.Publisher.Workers = 2
	}
	if cfg.Publisher.ResolutionBurst <= 0 {
		cfg.Publisher.ResolutionBurst = 1
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 200 * time.Millisecond
	}
	if len(cfg.Watch.ExcludeDirs) == 0 {
		cfg.Watch.ExcludeDirs = []string{".git", "__pycache__", ".venv", "node_modules"}
	}
	if cfg.Inference.MaxDepth <= 0 {
		cfg.Inference.MaxDepth = 16
	}
	cfg.Observability.MetricsAddr = strings.TrimSpace(cfg.Observability.MetricsAddr)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "typeinspector"
	}
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return errors.New(errors.CodeValidationError, fmt.Sprintf("unsupported config version %d; supported version is 1", cfg.Version))
	}
	return nil
}

func validateCache(cfg *Config) error {
	if cfg.Cache.Capacity < 0 {
		return errors.New(errors.CodeValidationError, fmt.Sprintf("cache.capacity must be >= 0, got %d", cfg.Cache.Capacity))
	}
	return nil
}

func validatePublisher(cfg *Config) error {
	if cfg.Publisher.MaxResolutionsPerSecond < 0 {
		return errors.New(errors.CodeValidationError, "publisher.max_resolutions_per_second must be >= 0")
	}
	if cfg.Publisher.Workers > 64 {
		return errors.New(errors.CodeValidationError, fmt.Sprintf("publisher.workers must be <= 64, got %d", cfg.Publisher.Workers))
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return errors.New(errors.CodeValidationError, "watch.debounce must be >= 0")
	}
	for _, pattern := range append(append([]string{}, cfg.Watch.ExcludeDirs...), cfg.Watch.ExcludeFiles...) {
		if _, err := glob.Compile(pattern); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid watch exclude pattern %q", pattern))
		}
	}
	return nil
}

func validateInference(cfg *Config) error {
	if cfg.Inference.MaxDepth > 256 {
		return errors.New(errors.CodeValidationError, fmt.Sprintf("inference.max_depth must be <= 256, got %d", cfg.Inference.MaxDepth))
	}
	return nil
}
