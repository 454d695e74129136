// Package scan enumerates candidate audio files under an input root. It
// walks the tree depth-first up to a configured depth, optionally rejects
// files whose detected content type is not audio, and streams entries to
// the worker pool as it finds them.
package scan
