// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package config resolves browsing defaults from a TOML file and the
// environment. Command-line flags are layered on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/bonial-oss/vuln-browse/internal/engine"
)

const appName = "vuln-browse"

// Environment variables that override file settings.
const (
	EnvPageSize = "VULN_BROWSE_PAGE_SIZE"
	EnvGroupBy  = "VULN_BROWSE_GROUP_BY"
	EnvCacheDir = "VULN_BROWSE_CACHE_DIR"
	EnvSort     = "VULN_BROWSE_SORT"
)

// ErrInvalid wraps every configuration value that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Filter is the [filter] table.
type Filter struct {
	ID            string   `toml:"id"`
	Severities    []string `toml:"severities"`
	FixStates     []string `toml:"fix_states"`
	MinEPSS       float64  `toml:"min_epss"`
	MinPercentile float64  `toml:"min_percentile"`
	MinRisk       float64  `toml:"min_risk"`
}

// Config holds every setting that can come from a file or the environment.
type Config struct {
	PageSize int    `toml:"page_size"`
	GroupBy  string `toml:"group_by"`
	Sort     string `toml:"sort"`
	Format   string `toml:"format"`
	CacheDir string `toml:"cache_dir"`
	Filter   Filter `toml:"filter"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		PageSize: engine.DefaultPageSize,
		GroupBy:  engine.GroupNone.String(),
		Format:   "table",
	}
}

// DefaultPath is $XDG_CONFIG_HOME/vuln-browse/config.toml, falling back to
// the platform's user config directory.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("determining config directory: %w", err)
		}
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// DefaultCacheDir is $XDG_CACHE_HOME/vuln-browse, falling back to the
// platform's user cache directory.
func DefaultCacheDir() (string, error) {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("determining cache directory: %w", err)
		}
	}
	return filepath.Join(dir, appName), nil
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load builds the effective configuration: defaults, then the TOML file at
// path, then the environment. When required is false a missing file is
// skipped silently.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path, required); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string, required bool) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides settings from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPageSize); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, EnvPageSize, v)
		}
		c.PageSize = n
	}
	if v, ok := lookup(EnvGroupBy); ok && v != "" {
		c.GroupBy = v
	}
	if v, ok := lookup(EnvCacheDir); ok && v != "" {
		c.CacheDir = v
	}
	if v, ok := lookup(EnvSort); ok && v != "" {
		c.Sort = v
	}
	return nil
}

// Validate checks every value that the engine would reject later.
func (c *Config) Validate() error {
	_, err := c.EngineOptions()
	return err
}

// Criteria converts the [filter] table.
func (c *Config) Criteria() engine.FilterCriteria {
	return engine.FilterCriteria{
		IDSubstring:   c.Filter.ID,
		Severities:    engine.NewStringSet(c.Filter.Severities...),
		FixStates:     engine.NewStringSet(c.Filter.FixStates...),
		MinEPSS:       c.Filter.MinEPSS,
		MinPercentile: c.Filter.MinPercentile,
		MinRisk:       c.Filter.MinRisk,
	}
}

// EngineOptions converts the configuration into options for engine.New.
func (c *Config) EngineOptions() (engine.Options, error) {
	if c.PageSize < 1 {
		return engine.Options{}, fmt.Errorf("%w: page_size %d: %w", ErrInvalid, c.PageSize, engine.ErrInvalidPageSize)
	}
	mode, err := engine.ParseGroupingMode(c.GroupBy)
	if err != nil {
		return engine.Options{}, fmt.Errorf("%w: group_by: %w", ErrInvalid, err)
	}
	order, err := engine.ParseSortOrder(c.Sort)
	if err != nil {
		return engine.Options{}, fmt.Errorf("%w: sort: %w", ErrInvalid, err)
	}
	for _, t := range []struct {
		name  string
		value float64
	}{
		{"min_epss", c.Filter.MinEPSS},
		{"min_percentile", c.Filter.MinPercentile},
		{"min_risk", c.Filter.MinRisk},
	} {
		if math.IsNaN(t.value) || math.IsInf(t.value, 0) {
			return engine.Options{}, fmt.Errorf("%w: filter.%s must be a finite number", ErrInvalid, t.name)
		}
	}
	return engine.Options{
		PageSize: c.PageSize,
		Criteria: c.Criteria(),
		Mode:     mode,
		Order:    order,
	}, nil
}
