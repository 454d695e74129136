package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/RustedBytes/audios-to-dataset/internal/config"
	"github.com/RustedBytes/audios-to-dataset/internal/metadata"
	"github.com/RustedBytes/audios-to-dataset/internal/metrics"
	"github.com/RustedBytes/audios-to-dataset/internal/record"
	"github.com/RustedBytes/audios-to-dataset/internal/scan"
)

// Writer persists one shard to its destination. Implementations live in the
// sink package; a shard write failure is fatal for the run because a hole in
// the shard numbering makes the dataset ambiguous.
type Writer interface {
	Ext() string
	Write(ctx context.Context, shard []record.Record, dest string) error
}

// Pipeline wires the scanner, worker pool, shard assembler, and writer.
type Pipeline struct {
	cfg     *config.Config
	index   *metadata.Index
	writer  Writer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a pipeline. The metadata index must already be loaded; it is
// shared read-only across all workers.
func New(cfg *config.Config, index *metadata.Index, writer Writer, logger *slog.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		index:   index,
		writer:  writer,
		logger:  logger,
		metrics: m,
	}
}

// buildResult carries one worker outcome to the assembler.
type buildResult struct {
	rec     *record.Record
	relPath string
	err     error
}

// scanOutcome carries the scanner's summary back to the orchestrator.
type scanOutcome struct {
	summary scan.Summary
	err     error
}

// Run executes the full pipeline and blocks until every shard is written or
// a fatal error occurs. Recoverable per-file failures are aggregated into
// the returned stats.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := os.MkdirAll(p.cfg.Output.Root, 0755); err != nil {
		return stats, fmt.Errorf("failed to create output directory %s: %w", p.cfg.Output.Root, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan scan.Entry)
	results := make(chan buildResult)

	// The scanner is the single producer; it may overlap with workers
	// consuming already-discovered entries.
	scanner := scan.NewScanner(p.cfg.Input.Root, p.cfg.Input.MaxDepth, p.cfg.Input.CheckMime, p.logger, p.metrics)
	scanDone := make(chan scanOutcome, 1)
	go func() {
		summary, err := scanner.Run(ctx, jobs)
		scanDone <- scanOutcome{summary: summary, err: err}
	}()

	builder := record.NewBuilder(p.index, p.logger, p.metrics)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers.Count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				rec, err := builder.Build(entry)
				select {
				case results <- buildResult{rec: rec, relPath: entry.RelPath, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single consumer: shard-in-progress state needs no locking.
	shard := make([]record.Record, 0, p.cfg.Output.FilesPerShard)
	shardIdx := 0

	for res := range results {
		if res.err != nil {
			stats.ReadFailures++
			p.logger.Warn("Dropping unreadable file",
				slog.String("path", res.relPath),
				slog.String("error", res.err.Error()),
			)
			continue
		}

		shard = append(shard, *res.rec)
		stats.Records++

		if len(shard) == p.cfg.Output.FilesPerShard {
			if err := p.flush(ctx, shard, shardIdx); err != nil {
				cancel()
				go drain(results)
				return stats, err
			}
			stats.Shards++
			shardIdx++
			shard = shard[:0]
		}
	}

	// The worker pool has fully completed once results is closed, so the
	// final partial shard cannot miss late records.
	if len(shard) > 0 {
		if err := p.flush(ctx, shard, shardIdx); err != nil {
			return stats, err
		}
		stats.Shards++
	}

	outcome := <-scanDone
	stats.Scanned = outcome.summary.Scanned
	stats.Filtered = outcome.summary.Filtered
	stats.ScanErrors = outcome.summary.Errors
	if outcome.err != nil {
		return stats, fmt.Errorf("scan failed: %w", outcome.err)
	}

	return stats, nil
}

// flush writes one shard to its numbered destination.
func (p *Pipeline) flush(ctx context.Context, shard []record.Record, idx int) error {
	dest := filepath.Join(p.cfg.Output.Root, fmt.Sprintf("%d.%s", idx, p.writer.Ext()))

	p.logger.Info("Writing shard",
		slog.Int("shard", idx),
		slog.Int("records", len(shard)),
		slog.String("dest", dest),
	)

	start := time.Now()
	if err := p.writer.Write(ctx, shard, dest); err != nil {
		return fmt.Errorf("failed to write shard %d: %w", idx, err)
	}

	p.metrics.RecordShardWritten(len(shard), time.Since(start).Seconds())
	return nil
}

// drain unblocks workers that are still sending after a fatal error.
func drain(results <-chan buildResult) {
	for range results {
	}
}
