// Package config holds all neurocv configuration: dataset schema, evaluation
// knobs, and logging. Values come from defaults, an optional YAML file, and
// environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full neurocv configuration.
type Config struct {
	Dataset    DatasetConfig    `yaml:"dataset"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DatasetConfig describes where the CSV lives and how its columns are read.
type DatasetConfig struct {
	// Source is a local path or an http/https URL.
	Source      string `yaml:"source"`
	IndexColumn string `yaml:"index_column"`
	LabelColumn string `yaml:"label_column"`
	// FeatureOffset is the position of the first feature column among the
	// non-index columns.
	FeatureOffset int `yaml:"feature_offset"`
}

// EvaluationConfig carries the cross-validation knobs. These were fixed
// constants in the source pipeline and are exposed here as parameters.
type EvaluationConfig struct {
	Folds   int   `yaml:"folds"`
	Seed    int64 `yaml:"seed"`
	Shuffle bool  `yaml:"shuffle"`
	// Workers > 1 evaluates folds concurrently; output order is unaffected.
	Workers int `yaml:"workers"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the configuration matching the reference run:
// the tutorial dataset with ten shuffled stratified folds and seed 1.
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Source:        "https://raw.githubusercontent.com/sandramv/ML_tutorial/main/Data/ml_tutorial_data.csv",
			IndexColumn:   "ID",
			LabelColumn:   "Diagnosis",
			FeatureOffset: 3,
		},
		Evaluation: EvaluationConfig{
			Folds:   10,
			Seed:    1,
			Shuffle: true,
			Workers: 1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if src := os.Getenv("NEUROCV_DATASET"); src != "" {
		c.Dataset.Source = src
	}
	if v := os.Getenv("NEUROCV_FOLDS"); v != "" {
		if folds, err := strconv.Atoi(v); err == nil {
			c.Evaluation.Folds = folds
		}
	}
	if v := os.Getenv("NEUROCV_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Evaluation.Seed = seed
		}
	}
	if v := os.Getenv("NEUROCV_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			c.Evaluation.Workers = workers
		}
	}
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if c.Dataset.Source == "" {
		return fmt.Errorf("dataset source is required")
	}
	if c.Dataset.IndexColumn == "" {
		return fmt.Errorf("dataset index column is required")
	}
	if c.Dataset.LabelColumn == "" {
		return fmt.Errorf("dataset label column is required")
	}
	if c.Dataset.FeatureOffset < 1 {
		return fmt.Errorf("feature offset must be >= 1, got %d", c.Dataset.FeatureOffset)
	}
	if c.Evaluation.Folds < 2 {
		return fmt.Errorf("fold count must be >= 2, got %d", c.Evaluation.Folds)
	}
	if c.Evaluation.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Evaluation.Workers)
	}
	return nil
}
