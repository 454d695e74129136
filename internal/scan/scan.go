package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/RustedBytes/audios-to-dataset/internal/metrics"
)

// audioMimeTypes is the allow-list used when content-type filtering is
// enabled. Matching is magic-byte based, not extension based.
var audioMimeTypes = []string{
	"audio/mpeg",
	"audio/wav",
	"audio/ogg",
	"audio/flac",
	"audio/vnd.wave",
	"audio/x-wav",
	"audio/x-flac",
	"audio/x-mpeg",
	"audio/x-aiff",
	"audio/aiff",
	"audio/x-aac",
	"audio/aac",
}

// Entry is one discovered file handed to the record builder.
type Entry struct {
	AbsPath string
	RelPath string // relative to the input root, OS separators
}

// Summary aggregates the recoverable outcomes of one scan.
type Summary struct {
	Scanned  int // candidate files seen, including filtered ones
	Filtered int // files dropped by the content-type filter
	Errors   int // unreadable directories skipped
}

// Scanner walks the input root and emits entries. A scanner is good for a
// single run; traversal is not restartable.
type Scanner struct {
	root      string
	maxDepth  int
	checkMime bool
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewScanner creates a scanner for the given root. Depth is counted from
// the root (root = depth 0); entries deeper than maxDepth are pruned.
func NewScanner(root string, maxDepth int, checkMime bool, logger *slog.Logger, m *metrics.Metrics) *Scanner {
	return &Scanner{
		root:      filepath.Clean(root),
		maxDepth:  maxDepth,
		checkMime: checkMime,
		logger:    logger,
		metrics:   m,
	}
}

// Run walks the tree and sends entries to out, closing it when traversal
// finishes or ctx is cancelled. Unreadable directories are logged and
// skipped; only an unusable root is a hard error.
func (s *Scanner) Run(ctx context.Context, out chan<- Entry) (Summary, error) {
	defer close(out)

	var summary Summary

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if walkErr != nil {
			if path == s.root {
				return fmt.Errorf("failed to scan input root %s: %w", s.root, walkErr)
			}
			s.logger.Warn("Skipping unreadable directory",
				slog.String("path", path),
				slog.String("error", walkErr.Error()),
			)
			summary.Errors++
			s.metrics.RecordScanError()
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}

		if d.IsDir() {
			if rel != "." && depth(rel) >= s.maxDepth {
				// Children would exceed the depth bound.
				return filepath.SkipDir
			}
			return nil
		}

		if depth(rel) > s.maxDepth {
			return nil
		}

		// Regular files and file symlinks qualify; sockets, devices and
		// the like do not.
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			s.logger.Debug("Skipping irregular file", slog.String("path", path))
			return nil
		}

		summary.Scanned++
		s.metrics.RecordFileScanned()

		if s.checkMime && !s.isAudio(path) {
			summary.Filtered++
			s.metrics.RecordFileFiltered()
			return nil
		}

		entry := Entry{AbsPath: path, RelPath: rel}
		select {
		case out <- entry:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	if err != nil && err != ctx.Err() {
		return summary, err
	}

	return summary, nil
}

// isAudio reports whether the file's detected content type is in the audio
// allow-list. Detection failures drop the file with a diagnostic, matching
// the filter's drop-not-fail contract.
func (s *Scanner) isAudio(path string) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		s.logger.Warn("No content type detected, dropping file",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return false
	}

	for _, allowed := range audioMimeTypes {
		if mtype.Is(allowed) {
			return true
		}
	}

	s.logger.Info("Not an audio file, dropping",
		slog.String("path", path),
		slog.String("mime_type", mtype.String()),
	)
	return false
}

// depth counts path components below the root.
func depth(rel string) int {
	return strings.Count(rel, string(filepath.Separator)) + 1
}
