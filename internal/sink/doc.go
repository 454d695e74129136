// Package sink persists shards of audio records. Two container formats are
// supported: parquet files carrying Hugging Face dataset metadata, and
// DuckDB database files holding a single files table.
package sink
