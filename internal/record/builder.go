package record

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/RustedBytes/audios-to-dataset/internal/audio"
	"github.com/RustedBytes/audios-to-dataset/internal/metadata"
	"github.com/RustedBytes/audios-to-dataset/internal/metrics"
	"github.com/RustedBytes/audios-to-dataset/internal/scan"
)

// PlaceholderTranscription is stored when no metadata row matches a file.
const PlaceholderTranscription = "-"

// Record is the normalized representation of one audio file.
type Record struct {
	Bytes         []byte
	SamplingRate  int     // 0 when the format is not plain WAV
	Path          string  // forward-slash relative path
	Duration      float64 // seconds; 0.0 when undeterminable
	Transcription string
}

// Builder constructs records. It holds only read-only state and is safe to
// share across workers.
type Builder struct {
	index   *metadata.Index
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewBuilder creates a builder backed by the given metadata index.
func NewBuilder(index *metadata.Index, logger *slog.Logger, m *metrics.Metrics) *Builder {
	return &Builder{
		index:   index,
		logger:  logger,
		metrics: m,
	}
}

// Build reads the file behind entry and produces its record. A read failure
// returns an error and produces nothing; the caller drops the file and the
// run continues.
func (b *Builder) Build(entry scan.Entry) (*Record, error) {
	start := time.Now()

	data, err := os.ReadFile(entry.AbsPath)
	if err != nil {
		b.metrics.RecordReadFailure()
		return nil, fmt.Errorf("failed to read %s: %w", entry.AbsPath, err)
	}

	// Duration is exact for plain WAV; everything else falls back to
	// zero values rather than failing the file.
	samplingRate := 0
	duration := 0.0
	info, probeErr := audio.ProbeWAV(data)
	if probeErr == nil {
		samplingRate = info.SampleRate
		duration = info.Duration
	} else {
		b.logger.Debug("Duration unknown, storing zero",
			slog.String("path", entry.RelPath),
			slog.String("reason", probeErr.Error()),
		)
	}

	relPath := filepath.ToSlash(entry.RelPath)
	text, ok := b.index.Lookup(relPath, filepath.Base(entry.RelPath))
	if !ok {
		text = PlaceholderTranscription
	}

	b.metrics.RecordBuilt(len(data), time.Since(start).Seconds(), probeErr == nil)

	return &Record{
		Bytes:         data,
		SamplingRate:  samplingRate,
		Path:          relPath,
		Duration:      duration,
		Transcription: text,
	}, nil
}
