// Package metrics defines the Prometheus instrumentation for the ingestion
// pipeline: scan, build, and shard-write counters plus latency histograms.
package metrics
