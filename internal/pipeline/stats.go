package pipeline

// Stats aggregates the outcome of one run. Recoverable failures are counted
// here and reported at completion; they never abort the run.
type Stats struct {
	Scanned      int // candidate files seen by the scanner
	Filtered     int // files dropped by the content-type filter
	ScanErrors   int // unreadable directories skipped
	ReadFailures int // files dropped because they could not be read
	Records      int // records committed to shards
	Shards       int // shard files written
}
