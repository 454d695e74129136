package sink

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/RustedBytes/audios-to-dataset/internal/record"
)

func sampleShard() []record.Record {
	return []record.Record{
		{
			Bytes:         []byte("RIFF....fake wav payload one"),
			SamplingRate:  16000,
			Path:          "a/one.wav",
			Duration:      1.25,
			Transcription: "first take",
		},
		{
			Bytes:         []byte("payload two"),
			SamplingRate:  0,
			Path:          "two.mp3",
			Duration:      0.0,
			Transcription: "-",
		},
	}
}

func TestParquetRoundTrip(t *testing.T) {
	writer, err := NewParquet("snappy")
	if err != nil {
		t.Fatalf("NewParquet failed: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "0.parquet")
	shard := sampleShard()

	if err := writer.Write(context.Background(), shard, dest); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	rows, err := parquet.ReadFile[parquetRow](dest)
	if err != nil {
		t.Fatalf("failed to read shard back: %v", err)
	}

	if len(rows) != len(shard) {
		t.Fatalf("expected %d rows, got %d", len(shard), len(rows))
	}

	for i, row := range rows {
		want := shard[i]
		if !bytes.Equal(row.Audio.Bytes, want.Bytes) {
			t.Errorf("row %d: payload bytes differ", i)
		}
		if row.Audio.SamplingRate != int32(want.SamplingRate) {
			t.Errorf("row %d: expected sampling rate %d, got %d", i, want.SamplingRate, row.Audio.SamplingRate)
		}
		if row.Audio.Path != want.Path {
			t.Errorf("row %d: expected path %s, got %s", i, want.Path, row.Audio.Path)
		}
		if math.Abs(row.Duration-want.Duration) > 1e-9 {
			t.Errorf("row %d: expected duration %f, got %f", i, want.Duration, row.Duration)
		}
		if row.Transcription != want.Transcription {
			t.Errorf("row %d: expected transcription %q, got %q", i, want.Transcription, row.Transcription)
		}
	}
}

func TestParquetEmbedsDatasetMetadata(t *testing.T) {
	writer, err := NewParquet("none")
	if err != nil {
		t.Fatalf("NewParquet failed: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "0.parquet")
	if err := writer.Write(context.Background(), sampleShard(), dest); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	f, err := os.Open(dest)
	if err != nil {
		t.Fatalf("failed to open shard: %v", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		t.Fatalf("failed to stat shard: %v", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		t.Fatalf("failed to open parquet file: %v", err)
	}

	value, ok := pf.Lookup(hfMetadataKey)
	if !ok {
		t.Fatal("expected huggingface metadata key in shard")
	}
	if !strings.Contains(value, `"_type":"Audio"`) {
		t.Errorf("dataset metadata does not describe the audio column: %s", value)
	}
}

func TestParquetOverwritesExistingShard(t *testing.T) {
	writer, err := NewParquet("snappy")
	if err != nil {
		t.Fatalf("NewParquet failed: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "0.parquet")
	ctx := context.Background()

	if err := writer.Write(ctx, sampleShard(), dest); err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	if err := writer.Write(ctx, sampleShard()[:1], dest); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}

	rows, err := parquet.ReadFile[parquetRow](dest)
	if err != nil {
		t.Fatalf("failed to read shard back: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected shard to be replaced with 1 row, got %d", len(rows))
	}
}

func TestCodecMapping(t *testing.T) {
	valid := []string{"", "none", "snappy", "gzip", "brotli", "zstd", "lz4", "lz4-raw"}
	for _, name := range valid {
		if _, err := codecFor(name); err != nil {
			t.Errorf("expected codec for %q, got error: %v", name, err)
		}
	}

	for _, name := range []string{"lzo", "bzip2"} {
		if _, err := codecFor(name); err == nil {
			t.Errorf("expected error for codec %q", name)
		}
	}
}
