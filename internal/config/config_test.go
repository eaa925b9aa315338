package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_level: debug
dataset:
  path: /data/archive.csv.zst
  min_rating: 1600
engine:
  service_url: http://localhost:5000/evaluate
import:
  workers: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/data/archive.csv.zst", cfg.Dataset.Path)
	assert.Equal(t, 1600, cfg.Dataset.MinRating)
	assert.Equal(t, "http://localhost:5000/evaluate", cfg.Engine.ServiceURL)
	assert.Equal(t, 4, cfg.Import.Workers)

	// Untouched sections keep their defaults.
	assert.Equal(t, 15, cfg.Engine.Depth)
	assert.Equal(t, 128, cfg.Engine.HashMB)
	assert.Equal(t, 100, cfg.Import.BatchSize)
	assert.Equal(t, 3, cfg.Analysis.MinCommunitySize)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
