// Package pipeline orchestrates the ingestion run: directory scan, parallel
// record building over a bounded worker pool, shard assembly in completion
// order, and sequential shard emission.
package pipeline
