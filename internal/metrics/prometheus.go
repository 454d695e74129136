package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the dataset builder.
type Metrics struct {
	// Scanner metrics
	FilesScanned  prometheus.Counter
	FilesFiltered prometheus.Counter
	ScanErrors    prometheus.Counter

	// Record builder metrics
	RecordsBuilt     prometheus.Counter
	ReadFailures     prometheus.Counter
	BytesRead        prometheus.Counter
	RecordBuildTime  prometheus.Histogram
	UnknownDurations prometheus.Counter

	// Shard metrics
	ShardsWritten  prometheus.Counter
	ShardSize      prometheus.Histogram
	ShardWriteTime prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the given
// registerer. Tests pass a fresh registry to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Scanner metrics
		FilesScanned: factory.NewCounter(prometheus.CounterOpts{
			Name: "atd_files_scanned_total",
			Help: "Total number of files discovered by the scanner",
		}),
		FilesFiltered: factory.NewCounter(prometheus.CounterOpts{
			Name: "atd_files_filtered_total",
			Help: "Total number of files dropped by the content-type filter",
		}),
		ScanErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "atd_scan_errors_total",
			Help: "Total number of unreadable directories skipped during scanning",
		}),

		// Record builder metrics
		RecordsBuilt: factory.NewCounter(prometheus.CounterOpts{
			Name: "atd_records_built_total",
			Help: "Total number of audio records successfully built",
		}),
		ReadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "atd_read_failures_total",
			Help: "Total number of files dropped because they could not be read",
		}),
		BytesRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "atd_bytes_read_total",
			Help: "Total audio payload bytes read from disk",
		}),
		RecordBuildTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "atd_record_build_duration_seconds",
			Help:    "Time spent reading and decoding one file",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}),
		UnknownDurations: factory.NewCounter(prometheus.CounterOpts{
			Name: "atd_unknown_durations_total",
			Help: "Total number of records whose audio duration could not be determined",
		}),

		// Shard metrics
		ShardsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "atd_shards_written_total",
			Help: "Total number of shard files written",
		}),
		ShardSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "atd_shard_size_records",
			Help:    "Number of records per written shard",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1 to 2048 records
		}),
		ShardWriteTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "atd_shard_write_duration_seconds",
			Help:    "Time spent persisting one shard",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}),
	}
}

// RecordFileScanned increments the scanned files counter.
func (m *Metrics) RecordFileScanned() {
	m.FilesScanned.Inc()
}

// RecordFileFiltered increments the filtered files counter.
func (m *Metrics) RecordFileFiltered() {
	m.FilesFiltered.Inc()
}

// RecordScanError increments the scan errors counter.
func (m *Metrics) RecordScanError() {
	m.ScanErrors.Inc()
}

// RecordBuilt records one successfully built record.
func (m *Metrics) RecordBuilt(payloadBytes int, buildSeconds float64, durationKnown bool) {
	m.RecordsBuilt.Inc()
	m.BytesRead.Add(float64(payloadBytes))
	m.RecordBuildTime.Observe(buildSeconds)
	if !durationKnown {
		m.UnknownDurations.Inc()
	}
}

// RecordReadFailure increments the read failures counter.
func (m *Metrics) RecordReadFailure() {
	m.ReadFailures.Inc()
}

// RecordShardWritten records one persisted shard.
func (m *Metrics) RecordShardWritten(records int, writeSeconds float64) {
	m.ShardsWritten.Inc()
	m.ShardSize.Observe(float64(records))
	m.ShardWriteTime.Observe(writeSeconds)
}
