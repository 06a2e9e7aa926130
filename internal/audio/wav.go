package audio

import (
	"encoding/binary"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVMIMEType is the declared type of every finished recording.
const WAVMIMEType = "audio/wav"

// WriteWAV encodes little-endian 16-bit PCM into a WAV file at path and
// returns the file size.
func WriteWAV(path string, pcm []byte, sampleRate int, channels int) (int64, error) {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	if channels <= 0 {
		channels = 1
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create wav: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           samplesFromPCM(pcm),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return 0, fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("finalize wav: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close wav: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func samplesFromPCM(pcm []byte) []int {
	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}
	return samples
}

// PCMSeconds reports the whole seconds of s16le audio held in n bytes.
func PCMSeconds(n int, sampleRate int, channels int) int {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	return n / (2 * sampleRate * channels)
}
