package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

// sineSamples generates a 440Hz sine wave of the given duration.
func sineSamples(sampleRate int, duration float64) []int16 {
	numSamples := int(float64(sampleRate) * duration)
	samples := make([]int16, numSamples)

	for i := 0; i < numSamples; i++ {
		t := float64(i) / float64(sampleRate)
		amplitude := 16383.0 // Half of max int16 to avoid clipping
		samples[i] = int16(amplitude * math.Sin(2*math.Pi*440.0*t))
	}
	return samples
}

func TestEncodeWAV(t *testing.T) {
	sampleRate := 8000
	samples := sineSamples(sampleRate, 0.1)

	wavData, err := EncodeWAV(samples, sampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	expectedSize := 44 + len(samples)*2
	if len(wavData) != expectedSize {
		t.Errorf("Expected WAV size %d, got %d", expectedSize, len(wavData))
	}

	info, err := ProbeWAV(wavData)
	if err != nil {
		t.Fatalf("ProbeWAV failed on generated WAV: %v", err)
	}

	if info.SampleRate != sampleRate {
		t.Errorf("Expected sample rate %d, got %d", sampleRate, info.SampleRate)
	}
	if info.Channels != 1 {
		t.Errorf("Expected 1 channel, got %d", info.Channels)
	}
	if info.BitsPerSample != 16 {
		t.Errorf("Expected 16 bits per sample, got %d", info.BitsPerSample)
	}
}

func TestEncodeWAVEmptyInput(t *testing.T) {
	if _, err := EncodeWAV(nil, 8000); err == nil {
		t.Error("expected error for empty samples")
	}
	if _, err := EncodeWAV([]int16{1, 2, 3}, 0); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func TestProbeWAVDuration(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		duration   float64
	}{
		{"one second at 16kHz", 16000, 1.0},
		{"half second at 8kHz", 8000, 0.5},
		{"short burst at 44.1kHz", 44100, 0.025},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wavData, err := EncodeWAV(sineSamples(tt.sampleRate, tt.duration), tt.sampleRate)
			if err != nil {
				t.Fatalf("EncodeWAV failed: %v", err)
			}

			info, err := ProbeWAV(wavData)
			if err != nil {
				t.Fatalf("ProbeWAV failed: %v", err)
			}

			// Frame counts are integral, so allow one frame of rounding.
			if math.Abs(info.Duration-tt.duration) > 1.0/float64(tt.sampleRate) {
				t.Errorf("Expected duration %f, got %f", tt.duration, info.Duration)
			}
		})
	}
}

func TestProbeWAVExtraChunks(t *testing.T) {
	// A WAV with a LIST chunk between fmt and data, the layout editors
	// commonly produce. Fixed-offset parsers break on this.
	wavData, err := EncodeWAV(sineSamples(8000, 0.1), 8000)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	listChunk := make([]byte, 8+12)
	copy(listChunk[0:4], "LIST")
	binary.LittleEndian.PutUint32(listChunk[4:8], 12)
	copy(listChunk[8:12], "INFO")

	withList := make([]byte, 0, len(wavData)+len(listChunk))
	withList = append(withList, wavData[:36]...) // RIFF header + fmt chunk
	withList = append(withList, listChunk...)
	withList = append(withList, wavData[36:]...) // data chunk
	binary.LittleEndian.PutUint32(withList[4:8], uint32(len(withList)-8))

	info, err := ProbeWAV(withList)
	if err != nil {
		t.Fatalf("ProbeWAV failed on WAV with LIST chunk: %v", err)
	}
	if info.SampleRate != 8000 {
		t.Errorf("Expected sample rate 8000, got %d", info.SampleRate)
	}
	if math.Abs(info.Duration-0.1) > 1.0/8000.0 {
		t.Errorf("Expected duration 0.1, got %f", info.Duration)
	}
}

func TestProbeWAVRejectsNonWAV(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"too short", []byte("RIFF")},
		{"not riff", []byte("this is definitely not a wav file at all")},
		{"riff but not wave", append([]byte("RIFF\x00\x00\x00\x00AVI "), make([]byte, 32)...)},
		{"wave without chunks", []byte("RIFF\x04\x00\x00\x00WAVE")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ProbeWAV(tt.data); err == nil {
				t.Error("expected error for invalid WAV data")
			}
		})
	}
}
