// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iso15926vis/rdlvis/internal/config"
	"github.com/iso15926vis/rdlvis/internal/graph"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func validConfig() *config.Config {
	return &config.Config{
		Graph: config.GraphConfig{
			RootURI:   "http://data.15926.org/dm/Thing",
			MaxDepth:  10,
			MaxAscent: 256,
			Search:    config.SearchConfig{DefaultLimit: 5, MaxLimit: 25, MinSimilarity: 75},
		},
		Storage: config.StorageConfig{
			DataDir:     "./db",
			SnapshotDir: "./db/storage",
			HistoryDB:   "./db/history.db",
		},
		Networking: config.NetworkingConfig{Listen: "127.0.0.1:5000"},
		Source:     config.SourceConfig{BatchSize: 100, BaseIRI: "http://data.15926.org/iso/"},
		Logging:    config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:5000", cfg.Networking.Listen)
	assert.Equal(t, 30*time.Second, cfg.Networking.ReadTimeout)
	assert.Equal(t, "./db", cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join("./db", "storage"), cfg.Storage.SnapshotDir)
	assert.Equal(t, filepath.Join("./db", "history.db"), cfg.Storage.HistoryDB)
	assert.True(t, cfg.Storage.Watch)
	assert.Equal(t, 10000, cfg.Source.BatchSize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, graph.DefaultSettings(), cfg.Graph.EngineSettings())
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "rdlvis.yaml")

	content := `
networking:
  listen: "0.0.0.0:9999"
  cors_origins: ["http://localhost:3000"]
graph:
  max_depth: 4
  search:
    max_limit: 40
storage:
  data_dir: "/var/lib/rdlvis"
source:
  sparql_endpoint: "https://example.org/sparql"
  graphs: ["http://example.org/g1", "http://example.org/g2"]
  timeout: 2m
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9999", cfg.Networking.Listen)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Networking.CORSOrigins)
	assert.Equal(t, 4, cfg.Graph.MaxDepth)
	assert.Equal(t, 40, cfg.Graph.Search.MaxLimit)
	assert.Equal(t, 5, cfg.Graph.Search.DefaultLimit)
	assert.Equal(t, "/var/lib/rdlvis/storage", cfg.Storage.SnapshotDir)
	assert.Equal(t, "/var/lib/rdlvis/history.db", cfg.Storage.HistoryDB)
	assert.Equal(t, "https://example.org/sparql", cfg.Source.SPARQLEndpoint)
	assert.Len(t, cfg.Source.Graphs, 2)
	assert.Equal(t, 2*time.Minute, cfg.Source.Timeout)
}

func TestLoad_ExplicitPathsAreKept(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "rdlvis.yaml")
	content := `
storage:
  snapshot_dir: "/srv/snapshots"
  history_db: "/srv/history.sqlite"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "/srv/snapshots", cfg.Storage.SnapshotDir)
	assert.Equal(t, "/srv/history.sqlite", cfg.Storage.HistoryDB)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("RDLVIS_NETWORKING_LISTEN", "10.0.0.1:8080")
	t.Setenv("RDLVIS_GRAPH_MAX_ASCENT", "12")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8080", cfg.Networking.Listen)
	assert.Equal(t, 12, cfg.Graph.MaxAscent)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, rdlerr.HasCode(err, rdlerr.CodeConfigLoadReadFailure))
}

func TestLoad_ValidationCalledAtLoadTime(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "rdlvis.yaml")
	content := `
networking:
  listen: "no-port"
logging:
  level: "loud"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	_, err := config.Load(cfgPath)
	require.Error(t, err)
	assert.True(t, rdlerr.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "networking.listen")
	assert.Contains(t, err.Error(), "logging.level")
}

func TestFromViper_UsesGivenInstance(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("graph.root_uri", "urn:root")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "urn:root", cfg.Graph.EngineSettings().RootURI)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{
			name:    "empty root",
			mutate:  func(c *config.Config) { c.Graph.RootURI = "" },
			wantErr: "graph.root_uri",
		},
		{
			name:    "zero depth",
			mutate:  func(c *config.Config) { c.Graph.MaxDepth = 0 },
			wantErr: "graph.max_depth",
		},
		{
			name:    "zero ascent",
			mutate:  func(c *config.Config) { c.Graph.MaxAscent = 0 },
			wantErr: "graph.max_ascent",
		},
		{
			name:    "default limit above max",
			mutate:  func(c *config.Config) { c.Graph.Search.DefaultLimit = 30 },
			wantErr: "graph.search.default_limit",
		},
		{
			name:    "similarity above 100",
			mutate:  func(c *config.Config) { c.Graph.Search.MinSimilarity = 101 },
			wantErr: "graph.search.min_similarity",
		},
		{
			name:    "empty data dir",
			mutate:  func(c *config.Config) { c.Storage.DataDir = "" },
			wantErr: "storage.data_dir",
		},
		{
			name:    "port out of range",
			mutate:  func(c *config.Config) { c.Networking.Listen = "127.0.0.1:70000" },
			wantErr: "between 1 and 65535",
		},
		{
			name:    "non numeric port",
			mutate:  func(c *config.Config) { c.Networking.Listen = "127.0.0.1:http" },
			wantErr: "port must be a number",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *config.Config) { c.Networking.WriteTimeout = -time.Second },
			wantErr: "networking.write_timeout",
		},
		{
			name: "rate limit without burst",
			mutate: func(c *config.Config) {
				c.Networking.RateLimit = config.RateLimitConfig{RequestsPerSecond: 5}
			},
			wantErr: "networking.rate_limit.burst",
		},
		{
			name:    "endpoint without scheme",
			mutate:  func(c *config.Config) { c.Source.SPARQLEndpoint = "example.org/sparql" },
			wantErr: "source.sparql_endpoint",
		},
		{
			name:    "zero batch",
			mutate:  func(c *config.Config) { c.Source.BatchSize = 0 },
			wantErr: "source.batch_size",
		},
		{
			name:    "bad format",
			mutate:  func(c *config.Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			errs := cfg.Validate()
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}

			require.NotEmpty(t, errs)
			var joined []string
			for _, err := range errs {
				assert.True(t, rdlerr.IsInvalidInput(err))
				joined = append(joined, err.Error())
			}
			assert.Contains(t, strings.Join(joined, "\n"), tt.wantErr)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Graph.MaxDepth = 0
	cfg.Storage.DataDir = ""
	cfg.Logging.Level = "trace"

	assert.Len(t, cfg.Validate(), 3)
}

func TestDefaultConfigYAMLMatchesDefaults(t *testing.T) {
	var fromFile config.Config
	require.NoError(t, yaml.Unmarshal(config.DefaultConfigYAML, &fromFile))

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, cfg.Graph, fromFile.Graph)
	assert.Equal(t, cfg.Networking.Listen, fromFile.Networking.Listen)
	assert.Equal(t, cfg.Source.BaseIRI, fromFile.Source.BaseIRI)
	assert.Equal(t, cfg.Logging, fromFile.Logging)
}

func TestBootstrapConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := config.BootstrapConfig()
	require.Equal(t, filepath.Join(home, ".config", "rdlvis", "rdlvis.yaml"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5000", cfg.Networking.Listen)

	assert.Empty(t, config.BootstrapConfig(), "existing file must not be overwritten")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := config.LoggingConfig{Level: "warn", Format: "json"}.NewLogger(&buf, false)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	logger = config.LoggingConfig{Level: "error", Format: "text"}.NewLogger(&buf, true)
	logger.Debug("verbose wins")
	assert.Contains(t, buf.String(), "level=DEBUG")
}
