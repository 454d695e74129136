// Package record turns one scanned file into a normalized dataset record:
// raw bytes, best-effort sampling rate and duration, and the transcription
// joined from the metadata index.
package record
