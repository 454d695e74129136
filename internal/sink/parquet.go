package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/RustedBytes/audios-to-dataset/internal/record"
)

// hfMetadataKey is the file-level metadata key the Hugging Face datasets
// library reads to recognize column types.
const hfMetadataKey = "huggingface"

// parquetAudio is the composite audio column.
type parquetAudio struct {
	Bytes        []byte `parquet:"bytes"`
	SamplingRate int32  `parquet:"sampling_rate"`
	Path         string `parquet:"path"`
}

// parquetRow is the shard schema: one row per audio file.
type parquetRow struct {
	Audio         parquetAudio `parquet:"audio"`
	Duration      float64      `parquet:"duration"`
	Transcription string       `parquet:"transcription"`
}

// ParquetWriter writes shards as parquet files.
type ParquetWriter struct {
	codec      compress.Codec
	hfMetadata string
}

// NewParquet creates a parquet shard writer using the named compression
// codec. The codec name must have passed config validation.
func NewParquet(compression string) (*ParquetWriter, error) {
	codec, err := codecFor(compression)
	if err != nil {
		return nil, err
	}

	hfMetadata, err := datasetInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset metadata: %w", err)
	}

	return &ParquetWriter{
		codec:      codec,
		hfMetadata: hfMetadata,
	}, nil
}

// Ext returns the shard file extension.
func (w *ParquetWriter) Ext() string {
	return "parquet"
}

// Write persists one shard to dest, truncating any previous file there.
func (w *ParquetWriter) Write(ctx context.Context, shard []record.Record, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create shard file %s: %w", dest, err)
	}

	writer := parquet.NewGenericWriter[parquetRow](f,
		parquet.Compression(w.codec),
		parquet.KeyValueMetadata(hfMetadataKey, w.hfMetadata),
	)

	rows := make([]parquetRow, len(shard))
	for i, rec := range shard {
		rows[i] = parquetRow{
			Audio: parquetAudio{
				Bytes:        rec.Bytes,
				SamplingRate: int32(rec.SamplingRate),
				Path:         rec.Path,
			},
			Duration:      rec.Duration,
			Transcription: rec.Transcription,
		}
	}

	if _, err := writer.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write rows to %s: %w", dest, err)
	}

	if err := writer.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize shard %s: %w", dest, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close shard file %s: %w", dest, err)
	}

	return nil
}

// codecFor maps a configuration codec name to a parquet codec. The legacy
// lz4 name maps to lz4-raw; the legacy framing is deprecated by the parquet
// format itself.
func codecFor(name string) (compress.Codec, error) {
	switch name {
	case "", "none":
		return &parquet.Uncompressed, nil
	case "snappy":
		return &parquet.Snappy, nil
	case "gzip":
		return &parquet.Gzip, nil
	case "brotli":
		return &parquet.Brotli, nil
	case "zstd":
		return &parquet.Zstd, nil
	case "lz4", "lz4-raw":
		return &parquet.Lz4Raw, nil
	default:
		return nil, fmt.Errorf("unsupported compression codec '%s'", name)
	}
}

// datasetInfo renders the dataset-description block so downstream tools
// decode the audio column automatically.
func datasetInfo() (string, error) {
	type feature map[string]any

	info := map[string]any{
		"info": map[string]any{
			"features": map[string]feature{
				"audio":         {"_type": "Audio"},
				"duration":      {"dtype": "float64", "_type": "Value"},
				"transcription": {"dtype": "string", "_type": "Value"},
			},
		},
	}

	data, err := json.Marshal(info)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
