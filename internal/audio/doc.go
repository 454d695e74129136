// Package audio handles WAV header parsing for duration extraction.
// It implements a RIFF chunk walker tolerant of extra chunks (LIST, fact)
// and a PCM-16 encoder used to generate test fixtures.
package audio
