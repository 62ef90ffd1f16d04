// Package config loads the application configuration from an optional YAML
// file overlaid with IMMO_-prefixed environment variables. Every knob that
// affects a pipeline result (key width, top-K, split seed, hyperparameters)
// lives here so runs are reproducible from configuration alone.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Enrichment EnrichmentConfig `yaml:"enrichment" envconfig:"ENRICHMENT"`
	Model      ModelConfig      `yaml:"model" envconfig:"MODEL"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}

// PathsConfig contains file system paths.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
}

// EnrichmentConfig contains enrichment pipeline settings.
type EnrichmentConfig struct {
	KeyWidth int `yaml:"key_width" envconfig:"KEY_WIDTH" default:"4" validate:"gte=1,lte=9"`
	TopNames int `yaml:"top_names" envconfig:"TOP_NAMES" default:"5" validate:"gte=1"`
}

// ModelConfig contains modeling pipeline settings. The split seed is part of
// the configuration on purpose: a run must be reproducible without code
// changes.
type ModelConfig struct {
	TestFraction    float64 `yaml:"test_fraction" envconfig:"TEST_FRACTION" default:"0.2" validate:"gt=0,lt=1"`
	Seed            int64   `yaml:"seed" envconfig:"SEED" default:"42"`
	LogTarget       bool    `yaml:"log_target" envconfig:"LOG_TARGET" default:"true"`
	Estimators      int     `yaml:"estimators" envconfig:"ESTIMATORS" default:"220" validate:"gte=1"`
	LearningRate    float64 `yaml:"learning_rate" envconfig:"LEARNING_RATE" default:"0.12" validate:"gt=0,lte=1"`
	MaxDepth        int     `yaml:"max_depth" envconfig:"MAX_DEPTH" default:"6" validate:"gte=1"`
	Subsample       float64 `yaml:"subsample" envconfig:"SUBSAMPLE" default:"0.9" validate:"gt=0,lte=1"`
	ColsampleByTree float64 `yaml:"colsample_by_tree" envconfig:"COLSAMPLE_BY_TREE" default:"0.7" validate:"gt=0,lte=1"`
	MinChildWeight  int     `yaml:"min_child_weight" envconfig:"MIN_CHILD_WEIGHT" default:"10" validate:"gte=1"`
}

// Load loads configuration from the environment and the optional YAML file.
// Precedence: explicitly set environment variables, then file values, then
// struct defaults.
func Load() (*Config, error) {
	var cfg Config

	// envconfig fills every field first, from the environment or the struct
	// default. File values are merged afterwards so a default never clobbers
	// a value the file set.
	if err := envconfig.Process("IMMO", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if path := configFilePath(); path != "" {
		var fileCfg Config
		if err := loadFromFile(path, &fileCfg); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		mergeConfigs(&cfg, fileCfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// mergeConfigs overlays file values onto the env-derived configuration. A
// file value applies only when the field was set in the file and its
// environment variable was not explicitly set; envconfig fills unset
// variables with the struct defaults, so the env struct alone cannot tell an
// override from a default.
func mergeConfigs(cfg *Config, file Config) {
	if file.Logging.Level != "" && !envSet("IMMO_LOGGING_LEVEL") {
		cfg.Logging.Level = file.Logging.Level
	}
	if file.Logging.Format != "" && !envSet("IMMO_LOGGING_FORMAT") {
		cfg.Logging.Format = file.Logging.Format
	}
	if file.Paths.DataDir != "" && !envSet("IMMO_PATHS_DATA_DIR") {
		cfg.Paths.DataDir = file.Paths.DataDir
	}
	if file.Paths.ReportsDir != "" && !envSet("IMMO_PATHS_REPORTS_DIR") {
		cfg.Paths.ReportsDir = file.Paths.ReportsDir
	}
	if file.Enrichment.KeyWidth != 0 && !envSet("IMMO_ENRICHMENT_KEY_WIDTH") {
		cfg.Enrichment.KeyWidth = file.Enrichment.KeyWidth
	}
	if file.Enrichment.TopNames != 0 && !envSet("IMMO_ENRICHMENT_TOP_NAMES") {
		cfg.Enrichment.TopNames = file.Enrichment.TopNames
	}
	if file.Model.TestFraction != 0 && !envSet("IMMO_MODEL_TEST_FRACTION") {
		cfg.Model.TestFraction = file.Model.TestFraction
	}
	if file.Model.Seed != 0 && !envSet("IMMO_MODEL_SEED") {
		cfg.Model.Seed = file.Model.Seed
	}
	if file.Model.LogTarget && !envSet("IMMO_MODEL_LOG_TARGET") {
		cfg.Model.LogTarget = file.Model.LogTarget
	}
	if file.Model.Estimators != 0 && !envSet("IMMO_MODEL_ESTIMATORS") {
		cfg.Model.Estimators = file.Model.Estimators
	}
	if file.Model.LearningRate != 0 && !envSet("IMMO_MODEL_LEARNING_RATE") {
		cfg.Model.LearningRate = file.Model.LearningRate
	}
	if file.Model.MaxDepth != 0 && !envSet("IMMO_MODEL_MAX_DEPTH") {
		cfg.Model.MaxDepth = file.Model.MaxDepth
	}
	if file.Model.Subsample != 0 && !envSet("IMMO_MODEL_SUBSAMPLE") {
		cfg.Model.Subsample = file.Model.Subsample
	}
	if file.Model.ColsampleByTree != 0 && !envSet("IMMO_MODEL_COLSAMPLE_BY_TREE") {
		cfg.Model.ColsampleByTree = file.Model.ColsampleByTree
	}
	if file.Model.MinChildWeight != 0 && !envSet("IMMO_MODEL_MIN_CHILD_WEIGHT") {
		cfg.Model.MinChildWeight = file.Model.MinChildWeight
	}
}

func envSet(name string) bool {
	_, ok := os.LookupEnv(name)
	return ok
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// configFilePath returns the config file to read: $IMMO_CONFIG_FILE when
// set, the default immocli.yaml when it exists, otherwise empty.
func configFilePath() string {
	if path := os.Getenv("IMMO_CONFIG_FILE"); path != "" {
		return path
	}
	const defaultFile = "immocli.yaml"
	if _, err := os.Stat(defaultFile); err == nil {
		return defaultFile
	}
	return ""
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// NewLogger builds the process logger from the logging configuration.
func NewLogger(cfg LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
