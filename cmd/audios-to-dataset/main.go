package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/RustedBytes/audios-to-dataset/internal/config"
	"github.com/RustedBytes/audios-to-dataset/internal/metadata"
	"github.com/RustedBytes/audios-to-dataset/internal/metrics"
	"github.com/RustedBytes/audios-to-dataset/internal/pipeline"
	"github.com/RustedBytes/audios-to-dataset/internal/sink"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// One id per run so aggregated diagnostics stay greppable.
	logger := initLogger(cfg.Logging).With(slog.String("run_id", uuid.NewString()))

	logger.Info("Configuration loaded",
		slog.String("config_path", *configPath),
		slog.String("input_root", cfg.Input.Root),
		slog.String("output_root", cfg.Output.Root),
		slog.String("format", cfg.Output.Format),
		slog.Int("files_per_shard", cfg.Output.FilesPerShard),
		slog.Int("max_depth", cfg.Input.MaxDepth),
		slog.Bool("check_mime", cfg.Input.CheckMime),
		slog.Int("workers", cfg.Workers.Count),
		slog.String("metadata_path", cfg.Metadata.Path),
	)

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	// The index is built before any worker starts; a malformed source is
	// fatal because silently ignoring it would silently drop transcripts.
	index := metadata.NewIndex()
	if cfg.Metadata.Path != "" {
		index, err = metadata.Load(cfg.Metadata.Path)
		if err != nil {
			logger.Error("Failed to load metadata source", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Metadata index loaded", slog.Int("entries", index.Len()))
	}

	writer, err := newWriter(cfg)
	if err != nil {
		logger.Error("Failed to create shard writer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// No cancellation is exposed to the pipeline itself; a run either
	// completes or is aborted by process termination.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := pipeline.New(cfg, index, writer, logger, appMetrics).Run(ctx)
	if err != nil {
		logger.Error("Run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Run complete",
		slog.Int("scanned", stats.Scanned),
		slog.Int("filtered", stats.Filtered),
		slog.Int("scan_errors", stats.ScanErrors),
		slog.Int("read_failures", stats.ReadFailures),
		slog.Int("records", stats.Records),
		slog.Int("shards", stats.Shards),
	)
}

// newWriter selects the shard writer for the configured output format.
func newWriter(cfg *config.Config) (pipeline.Writer, error) {
	switch cfg.Output.Format {
	case config.FormatParquet:
		return sink.NewParquet(cfg.Output.Compression)
	case config.FormatDuckDB:
		return sink.NewDuckDB(), nil
	default:
		return nil, fmt.Errorf("unknown output format '%s'", cfg.Output.Format)
	}
}

// initLogger creates the structured logger based on configuration.
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
