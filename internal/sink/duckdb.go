package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/RustedBytes/audios-to-dataset/internal/record"
)

const filesSchema = `
CREATE TABLE files (
	bytes         BLOB,
	sampling_rate INTEGER,
	path          VARCHAR,
	duration      DOUBLE,
	transcription VARCHAR
)`

// DuckDBWriter writes shards as DuckDB database files, one files table per
// shard. A pre-existing database at the destination is replaced wholesale.
type DuckDBWriter struct{}

// NewDuckDB creates a DuckDB shard writer.
func NewDuckDB() *DuckDBWriter {
	return &DuckDBWriter{}
}

// Ext returns the shard file extension.
func (w *DuckDBWriter) Ext() string {
	return "duckdb"
}

// Write persists one shard to dest.
func (w *DuckDBWriter) Write(ctx context.Context, shard []record.Record, dest string) error {
	// Remove any leftover database so the shard is replaced, not appended.
	if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove previous shard %s: %w", dest, err)
	}

	db, err := sql.Open("duckdb", dest)
	if err != nil {
		return fmt.Errorf("failed to open shard database %s: %w", dest, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, filesSchema); err != nil {
		return fmt.Errorf("failed to create files table in %s: %w", dest, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction on %s: %w", dest, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO files (bytes, sampling_rate, path, duration, transcription) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert on %s: %w", dest, err)
	}
	defer stmt.Close()

	for _, rec := range shard {
		_, err := stmt.ExecContext(ctx, rec.Bytes, int32(rec.SamplingRate), rec.Path, rec.Duration, rec.Transcription)
		if err != nil {
			return fmt.Errorf("failed to insert %s into %s: %w", rec.Path, dest, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit shard %s: %w", dest, err)
	}

	return nil
}
