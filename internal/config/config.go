package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by OutputConfig.Format.
const (
	FormatParquet = "parquet"
	FormatDuckDB  = "duckdb"
)

// Default values applied to fields left unset in the configuration file.
const (
	DefaultFilesPerShard = 500
	DefaultWorkerCount   = 5
	DefaultMaxDepth      = 2
	DefaultCompression   = "snappy"
)

// Config represents the complete builder configuration.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Workers  WorkerConfig   `yaml:"workers"`
	Metadata MetadataConfig `yaml:"metadata"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InputConfig describes the directory tree to ingest.
type InputConfig struct {
	Root      string `yaml:"root"`
	MaxDepth  int    `yaml:"max_depth"`
	CheckMime bool   `yaml:"check_mime"`
}

// OutputConfig describes where and how shards are emitted.
type OutputConfig struct {
	Root          string `yaml:"root"`
	Format        string `yaml:"format"`
	Compression   string `yaml:"compression"` // parquet only
	FilesPerShard int    `yaml:"files_per_shard"`
}

// WorkerConfig bounds the record builder concurrency.
type WorkerConfig struct {
	Count int `yaml:"count"`
}

// MetadataConfig points at the optional transcription CSV source.
type MetadataConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file, applies defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// ApplyDefaults fills in zero-valued optional fields.
func (c *Config) ApplyDefaults() {
	if c.Input.MaxDepth == 0 {
		c.Input.MaxDepth = DefaultMaxDepth
	}
	if c.Output.Format == "" {
		c.Output.Format = FormatParquet
	}
	if c.Output.Compression == "" {
		c.Output.Compression = DefaultCompression
	}
	if c.Output.FilesPerShard == 0 {
		c.Output.FilesPerShard = DefaultFilesPerShard
	}
	if c.Workers.Count == 0 {
		c.Workers.Count = DefaultWorkerCount
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// Validate performs comprehensive validation of the configuration.
func (c *Config) Validate() error {
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("input config: %w", err)
	}

	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output config: %w", err)
	}

	if err := c.Workers.Validate(); err != nil {
		return fmt.Errorf("workers config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates input configuration.
func (i *InputConfig) Validate() error {
	if i.Root == "" {
		return fmt.Errorf("root cannot be empty")
	}

	if i.MaxDepth < 0 {
		return fmt.Errorf("max_depth cannot be negative, got %d", i.MaxDepth)
	}

	return nil
}

// Validate validates output configuration.
func (o *OutputConfig) Validate() error {
	if o.Root == "" {
		return fmt.Errorf("root cannot be empty")
	}

	if o.Format != FormatParquet && o.Format != FormatDuckDB {
		return fmt.Errorf("format must be '%s' or '%s', got '%s'", FormatParquet, FormatDuckDB, o.Format)
	}

	if o.FilesPerShard < 1 {
		return fmt.Errorf("files_per_shard must be at least 1, got %d", o.FilesPerShard)
	}

	if o.Format == FormatParquet {
		if err := validateCompression(o.Compression); err != nil {
			return err
		}
	}

	return nil
}

// validateCompression checks the parquet compression codec name. The full
// codec enum is accepted except lzo, which has no Go implementation.
func validateCompression(name string) error {
	switch name {
	case "none", "snappy", "gzip", "brotli", "lz4", "zstd", "lz4-raw":
		return nil
	case "lzo":
		return fmt.Errorf("compression codec 'lzo' is not supported by the parquet encoder")
	default:
		return fmt.Errorf("compression must be one of [none, snappy, gzip, brotli, lz4, zstd, lz4-raw], got '%s'", name)
	}
}

// Validate validates worker configuration.
func (w *WorkerConfig) Validate() error {
	if w.Count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", w.Count)
	}

	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}
