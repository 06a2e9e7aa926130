package audio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// MP3Duration decodes the stream header and returns the playback length.
func MP3Duration(data []byte) (time.Duration, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("decode mp3: %w", err)
	}
	rate := dec.SampleRate()
	if rate <= 0 {
		return 0, fmt.Errorf("decode mp3: invalid sample rate %d", rate)
	}
	// go-mp3 always produces 16-bit stereo.
	samples := dec.Length() / 4
	if samples <= 0 {
		return 0, nil
	}
	return time.Duration(samples) * time.Second / time.Duration(rate), nil
}
