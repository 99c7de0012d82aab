// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package config

import (
	"errors"
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/iso15926vis/rdlvis/internal/graph"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// RDLVIS_NETWORKING_LISTEN.
const EnvPrefix = "RDLVIS"

// Config is the top-level rdlvis configuration.
type Config struct {
	Graph      GraphConfig      `mapstructure:"graph" yaml:"graph"`
	Storage    StorageConfig    `mapstructure:"storage" yaml:"storage"`
	Networking NetworkingConfig `mapstructure:"networking" yaml:"networking"`
	Source     SourceConfig     `mapstructure:"source" yaml:"source"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// GraphConfig bounds query work.
type GraphConfig struct {
	RootURI   string       `mapstructure:"root_uri" yaml:"root_uri"`
	MaxDepth  int          `mapstructure:"max_depth" yaml:"max_depth"`
	MaxAscent int          `mapstructure:"max_ascent" yaml:"max_ascent"`
	Search    SearchConfig `mapstructure:"search" yaml:"search"`
}

// SearchConfig controls fuzzy search limits.
type SearchConfig struct {
	DefaultLimit  int     `mapstructure:"default_limit" yaml:"default_limit"`
	MaxLimit      int     `mapstructure:"max_limit" yaml:"max_limit"`
	MinSimilarity float64 `mapstructure:"min_similarity" yaml:"min_similarity"`
}

// StorageConfig locates snapshot files and the history database.
type StorageConfig struct {
	DataDir     string `mapstructure:"data_dir" yaml:"data_dir"`
	SnapshotDir string `mapstructure:"snapshot_dir" yaml:"snapshot_dir"`
	HistoryDB   string `mapstructure:"history_db" yaml:"history_db"`
	Watch       bool   `mapstructure:"watch" yaml:"watch"`
}

// NetworkingConfig controls the HTTP listener.
type NetworkingConfig struct {
	Listen       string          `mapstructure:"listen" yaml:"listen"`
	CORSOrigins  []string        `mapstructure:"cors_origins" yaml:"cors_origins"`
	ReadTimeout  time.Duration   `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration   `mapstructure:"write_timeout" yaml:"write_timeout"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// RateLimitConfig sets per-IP request limits. Zero RequestsPerSecond disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
}

// SourceConfig points the fetch command at a SPARQL endpoint.
type SourceConfig struct {
	SPARQLEndpoint string        `mapstructure:"sparql_endpoint" yaml:"sparql_endpoint"`
	Graphs         []string      `mapstructure:"graphs" yaml:"graphs"`
	BatchSize      int           `mapstructure:"batch_size" yaml:"batch_size"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	BaseIRI        string        `mapstructure:"base_iri" yaml:"base_iri"`
	Query          string        `mapstructure:"query" yaml:"query"`
	Username       string        `mapstructure:"username" yaml:"username"`
	Password       string        `mapstructure:"password" yaml:"password"`
}

// LoggingConfig selects log level and handler format.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	d := graph.DefaultSettings()
	v.SetDefault("graph.root_uri", d.RootURI)
	v.SetDefault("graph.max_depth", d.MaxDepth)
	v.SetDefault("graph.max_ascent", d.MaxAscent)
	v.SetDefault("graph.search.default_limit", d.DefaultSearchLimit)
	v.SetDefault("graph.search.max_limit", d.MaxSearchLimit)
	v.SetDefault("graph.search.min_similarity", d.MinSimilarity)

	v.SetDefault("storage.data_dir", "./db")
	v.SetDefault("storage.snapshot_dir", "")
	v.SetDefault("storage.history_db", "")
	v.SetDefault("storage.watch", true)

	v.SetDefault("networking.listen", "127.0.0.1:5000")
	v.SetDefault("networking.cors_origins", []string{})
	v.SetDefault("networking.read_timeout", 30*time.Second)
	v.SetDefault("networking.write_timeout", 60*time.Second)
	v.SetDefault("networking.rate_limit.requests_per_second", 0.0)
	v.SetDefault("networking.rate_limit.burst", 20)

	v.SetDefault("source.sparql_endpoint", "")
	v.SetDefault("source.graphs", []string{})
	v.SetDefault("source.batch_size", 10000)
	v.SetDefault("source.timeout", 60*time.Second)
	v.SetDefault("source.base_iri", "http://data.15926.org/iso/")
	v.SetDefault("source.query", "")
	v.SetDefault("source.username", "")
	v.SetDefault("source.password", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// SetupEnv binds RDLVIS_* environment variables to config keys.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, rdlerr.Errorf(rdlerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes, resolves and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, rdlerr.Errorf(rdlerr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	cfg.resolvePaths()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, rdlerr.Errorf(rdlerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// resolvePaths fills storage paths derived from data_dir.
func (c *Config) resolvePaths() {
	if c.Storage.SnapshotDir == "" {
		c.Storage.SnapshotDir = filepath.Join(c.Storage.DataDir, "storage")
	}
	if c.Storage.HistoryDB == "" {
		c.Storage.HistoryDB = filepath.Join(c.Storage.DataDir, "history.db")
	}
}

// EngineSettings converts the graph section for the query engine.
func (g GraphConfig) EngineSettings() graph.Settings {
	return graph.Settings{
		RootURI:            g.RootURI,
		MaxDepth:           g.MaxDepth,
		MaxAscent:          g.MaxAscent,
		DefaultSearchLimit: g.Search.DefaultLimit,
		MaxSearchLimit:     g.Search.MaxLimit,
		MinSimilarity:      g.Search.MinSimilarity,
	}
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateGraph()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateNetworking()...)
	errs = append(errs, c.validateSource()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func invalid(format string, args ...any) error {
	return rdlerr.Errorf(rdlerr.CodeConfigValidateInvalidValue, "config: "+format, args...)
}

func (c *Config) validateGraph() []error {
	var errs []error
	g := c.Graph

	if g.RootURI == "" {
		errs = append(errs, invalid("graph.root_uri must not be empty"))
	}
	if g.MaxDepth < 1 {
		errs = append(errs, invalid("graph.max_depth must be at least 1, got %d", g.MaxDepth))
	}
	if g.MaxAscent < 1 {
		errs = append(errs, invalid("graph.max_ascent must be at least 1, got %d", g.MaxAscent))
	}
	if g.Search.MaxLimit < 1 {
		errs = append(errs, invalid("graph.search.max_limit must be at least 1, got %d", g.Search.MaxLimit))
	}
	if g.Search.DefaultLimit < 1 || g.Search.DefaultLimit > g.Search.MaxLimit {
		errs = append(errs, invalid("graph.search.default_limit must be between 1 and max_limit (%d), got %d",
			g.Search.MaxLimit, g.Search.DefaultLimit))
	}
	if g.Search.MinSimilarity <= 0 || g.Search.MinSimilarity > 100 {
		errs = append(errs, invalid("graph.search.min_similarity must be in (0, 100], got %g", g.Search.MinSimilarity))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	if c.Storage.DataDir == "" {
		errs = append(errs, invalid("storage.data_dir must not be empty"))
	}
	if c.Storage.SnapshotDir == "" {
		errs = append(errs, invalid("storage.snapshot_dir must not be empty"))
	}
	if c.Storage.HistoryDB == "" {
		errs = append(errs, invalid("storage.history_db must not be empty"))
	}

	return errs
}

func (c *Config) validateNetworking() []error {
	var errs []error
	n := c.Networking

	if n.Listen == "" {
		errs = append(errs, invalid("networking.listen must not be empty"))
	} else if _, portStr, err := net.SplitHostPort(n.Listen); err != nil {
		errs = append(errs, invalid("networking.listen must be a valid host:port address, got %q: %w", n.Listen, err))
	} else if port, err := strconv.Atoi(portStr); err != nil {
		errs = append(errs, invalid("networking.listen port must be a number, got %q", portStr))
	} else if port < 1 || port > 65535 {
		errs = append(errs, invalid("networking.listen port must be between 1 and 65535, got %d", port))
	}

	if n.ReadTimeout < 0 {
		errs = append(errs, invalid("networking.read_timeout must not be negative, got %s", n.ReadTimeout))
	}
	if n.WriteTimeout < 0 {
		errs = append(errs, invalid("networking.write_timeout must not be negative, got %s", n.WriteTimeout))
	}

	if n.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, invalid("networking.rate_limit.requests_per_second must not be negative, got %g",
			n.RateLimit.RequestsPerSecond))
	}
	if n.RateLimit.RequestsPerSecond > 0 && n.RateLimit.Burst < 1 {
		errs = append(errs, invalid("networking.rate_limit.burst must be at least 1 when rate limiting is enabled, got %d",
			n.RateLimit.Burst))
	}

	return errs
}

func (c *Config) validateSource() []error {
	var errs []error
	s := c.Source

	if s.SPARQLEndpoint != "" {
		u, err := url.Parse(s.SPARQLEndpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, invalid("source.sparql_endpoint must be an http(s) URL, got %q", s.SPARQLEndpoint))
		}
	}
	if s.BatchSize < 1 {
		errs = append(errs, invalid("source.batch_size must be at least 1, got %d", s.BatchSize))
	}
	if s.Timeout < 0 {
		errs = append(errs, invalid("source.timeout must not be negative, got %s", s.Timeout))
	}
	if s.BaseIRI == "" {
		errs = append(errs, invalid("source.base_iri must not be empty"))
	}

	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, invalid("logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, invalid("logging.format must be one of [text, json], got %q", c.Logging.Format))
	}

	return errs
}
