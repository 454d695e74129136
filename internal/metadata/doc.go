// Package metadata loads the optional transcription CSV source into an
// in-memory index keyed by relative path and file name. Relative-path
// entries take precedence so duplicate file names across subdirectories
// stay unambiguous.
package metadata
