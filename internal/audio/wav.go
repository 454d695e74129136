package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// riffHeaderSize is the fixed RIFF preamble: "RIFF" + size + "WAVE".
const riffHeaderSize = 12

// Info holds the technical properties parsed from a WAV header.
type Info struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	// Duration is data-chunk frames divided by the sample rate, in seconds.
	Duration float64
}

// ProbeWAV parses a RIFF/WAVE header and derives the duration from the fmt
// and data chunks. Any file that is not a well-formed WAV yields an error;
// callers treat that as "duration unknown", not as a failure.
func ProbeWAV(data []byte) (*Info, error) {
	if len(data) < riffHeaderSize {
		return nil, fmt.Errorf("WAV data too short: need at least %d bytes, got %d", riffHeaderSize, len(data))
	}

	if string(data[0:4]) != "RIFF" {
		return nil, fmt.Errorf("invalid WAV file: missing RIFF header")
	}

	if string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("invalid WAV file: missing WAVE format")
	}

	var (
		sampleRate    uint32
		channels      uint16
		bitsPerSample uint16
		blockAlign    uint16
		dataSize      uint32
		haveFmt       bool
		haveData      bool
	)

	// Walk the chunk list. Files produced by editors often carry LIST or
	// fact chunks between fmt and data, so fixed offsets are not reliable.
	offset := riffHeaderSize
	for offset+8 <= len(data) && !(haveFmt && haveData) {
		chunkID := string(data[offset : offset+4])
		chunkSize := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		body := offset + 8

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 || body+16 > len(data) {
				return nil, fmt.Errorf("invalid WAV file: truncated fmt chunk")
			}
			channels = binary.LittleEndian.Uint16(data[body+2 : body+4])
			sampleRate = binary.LittleEndian.Uint32(data[body+4 : body+8])
			blockAlign = binary.LittleEndian.Uint16(data[body+12 : body+14])
			bitsPerSample = binary.LittleEndian.Uint16(data[body+14 : body+16])
			haveFmt = true
		case "data":
			dataSize = chunkSize
			haveData = true
		}

		// Chunks are padded to even sizes.
		offset = body + int(chunkSize)
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if !haveFmt {
		return nil, fmt.Errorf("invalid WAV file: missing fmt chunk")
	}
	if !haveData {
		return nil, fmt.Errorf("invalid WAV file: missing data chunk")
	}
	if sampleRate == 0 {
		return nil, fmt.Errorf("invalid WAV file: sample rate is 0")
	}
	if blockAlign == 0 {
		return nil, fmt.Errorf("invalid WAV file: block align is 0")
	}

	frames := dataSize / uint32(blockAlign)

	return &Info{
		SampleRate:    int(sampleRate),
		Channels:      int(channels),
		BitsPerSample: int(bitsPerSample),
		Duration:      float64(frames) / float64(sampleRate),
	}, nil
}

// wavHeader is the canonical 44-byte PCM header used by EncodeWAV.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // File size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // Number of bytes in the data
}

// EncodeWAV encodes mono PCM-16 samples into WAV format. It exists for
// fixture generation in tests; the builder itself never re-encodes audio.
func EncodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot encode empty audio samples")
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	numChannels := uint16(1)
	bitsPerSample := uint16(16)
	dataSize := uint32(len(samples) * 2)
	fileSize := 36 + dataSize

	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     fileSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1, // PCM
		NumChannels:   numChannels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * uint32(numChannels) * uint32(bitsPerSample) / 8,
		BlockAlign:    numChannels * bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(samples)*2))

	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}

	if err := binary.Write(buf, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}

	return buf.Bytes(), nil
}
