package metadata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path"
)

// Index maps scanned files to their transcriptions. It is built once before
// any worker starts and is read-only afterwards, so no locking is needed.
type Index struct {
	byRelPath map[string]string
	byName    map[string]string
}

// NewIndex returns an empty index. Lookups on it always miss, which is the
// behavior for runs without a metadata source.
func NewIndex() *Index {
	return &Index{
		byRelPath: make(map[string]string),
		byName:    make(map[string]string),
	}
}

// Load reads a CSV metadata source with a header row. The file_name and
// transcription columns are required; relative_path is optional and uses
// forward slashes. Any malformed content is an error: silently dropping
// rows would silently drop transcripts.
func Load(csvPath string) (*Index, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file %s: %w", csvPath, err)
	}
	defer f.Close()

	index, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metadata file %s: %w", csvPath, err)
	}

	return index, nil
}

func parse(r io.Reader) (*Index, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	nameCol, relPathCol, textCol := -1, -1, -1
	for i, col := range header {
		switch col {
		case "file_name":
			nameCol = i
		case "relative_path":
			relPathCol = i
		case "transcription":
			textCol = i
		}
	}

	if nameCol == -1 {
		return nil, fmt.Errorf("missing required column 'file_name', got %v", header)
	}
	if textCol == -1 {
		return nil, fmt.Errorf("missing required column 'transcription', got %v", header)
	}

	index := NewIndex()
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		text := row[textCol]
		index.byName[row[nameCol]] = text

		if relPathCol != -1 && row[relPathCol] != "" {
			index.byRelPath[path.Clean(row[relPathCol])] = text
		}
	}

	return index, nil
}

// Lookup resolves a transcription for a scanned file. An exact match on the
// forward-slash relative path wins; otherwise the bare file name is tried.
func (ix *Index) Lookup(relPath, fileName string) (string, bool) {
	if relPath != "" {
		if text, ok := ix.byRelPath[path.Clean(relPath)]; ok {
			return text, true
		}
	}

	text, ok := ix.byName[fileName]
	return text, ok
}

// Len returns the number of distinct file_name rows loaded.
func (ix *Index) Len() int {
	return len(ix.byName)
}
