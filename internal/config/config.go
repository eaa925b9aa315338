// Package config loads the YAML configuration file shared by the CLIs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration tree. Missing fields keep their
// defaults, so a partial file is fine.
type Config struct {
	LogLevel string         `yaml:"log_level"` // debug, info, warn, error
	Dataset  DatasetConfig  `yaml:"dataset"`
	Engine   EngineConfig   `yaml:"engine"`
	Import   ImportConfig   `yaml:"import"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

type DatasetConfig struct {
	Path       string `yaml:"path"`
	SampleSize int    `yaml:"sample_size"` // 0 = all games
	MinRating  int    `yaml:"min_rating"`
}

type EngineConfig struct {
	Path       string `yaml:"path"`        // UCI engine binary
	ServiceURL string `yaml:"service_url"` // remote evaluation service; wins over Path
	Depth      int    `yaml:"depth"`
	HashMB     int    `yaml:"hash_mb"`
	Threads    int    `yaml:"threads"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

type ImportConfig struct {
	BatchSize  int  `yaml:"batch_size"`
	Workers    int  `yaml:"workers"`
	SkipFailed bool `yaml:"skip_failed"`
}

type AnalysisConfig struct {
	MinCommunitySize int `yaml:"min_community_size"`
	TopPairs         int `yaml:"top_pairs"` // similarity pairs to report
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Dataset: DatasetConfig{
			Path: "data/lichess_games.csv",
		},
		Engine: EngineConfig{
			Depth:      15,
			HashMB:     128,
			Threads:    1,
			TimeoutSec: 10,
		},
		Import: ImportConfig{
			BatchSize:  100,
			Workers:    1,
			SkipFailed: true,
		},
		Analysis: AnalysisConfig{
			MinCommunitySize: 3,
			TopPairs:         100,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
