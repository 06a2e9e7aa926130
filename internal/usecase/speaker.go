package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"strings"
	"sync"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/audio"
	"agentconsole/internal/domain"
	"agentconsole/internal/ports"
)

// SpokenAudio describes a clip handed to the player.
type SpokenAudio struct {
	Path        string  `json:"path"`
	ContentType string  `json:"contentType"`
	Seconds     float64 `json:"seconds,omitempty"`
}

// Speaker is one controller's playback handle. Starting a clip stops the
// one it is already playing.
type Speaker struct {
	player ports.AudioPlayer
	dir    string
	logger *slog.Logger

	// playMu serialises Play and Stop so no clip can start unseen by Stop.
	playMu sync.Mutex

	mu      sync.Mutex
	current ports.Playback
}

func NewSpeaker(player ports.AudioPlayer, dir string, logger *slog.Logger) *Speaker {
	if dir == "" {
		dir = os.TempDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Speaker{player: player, dir: dir, logger: logger}
}

// Play writes clip to a temporary file and starts playing it.
func (s *Speaker) Play(ctx context.Context, clip apiclient.Audio) (SpokenAudio, error) {
	if len(clip.Data) == 0 {
		return SpokenAudio{}, ErrEmptyAudio
	}

	s.playMu.Lock()
	defer s.playMu.Unlock()

	if err := s.stopCurrent(); err != nil {
		s.logger.Debug("previous playback did not stop cleanly", "error", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return SpokenAudio{}, fmt.Errorf("failed to prepare playback directory: %w", err)
	}
	f, err := os.CreateTemp(s.dir, "speech-*"+clipExtension(clip.ContentType))
	if err != nil {
		return SpokenAudio{}, fmt.Errorf("failed to store audio: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(clip.Data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return SpokenAudio{}, fmt.Errorf("failed to store audio: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return SpokenAudio{}, fmt.Errorf("failed to store audio: %w", err)
	}

	spoken := SpokenAudio{Path: path, ContentType: clip.ContentType}
	if isMPEG(clip.ContentType) {
		if duration, err := audio.MP3Duration(clip.Data); err == nil {
			spoken.Seconds = duration.Seconds()
		}
	}

	pb, err := s.player.Play(ctx, path)
	if err != nil {
		_ = os.Remove(path)
		return SpokenAudio{}, &domain.CaptureError{Code: domain.ErrorCodePlayback, Message: "could not play audio", Err: err}
	}

	s.mu.Lock()
	s.current = pb
	s.mu.Unlock()

	go func() {
		<-pb.Done()
		_ = os.Remove(path)
		s.mu.Lock()
		if s.current == pb {
			s.current = nil
		}
		s.mu.Unlock()
	}()

	return spoken, nil
}

// Stop halts the current clip, if any, waiting for a clip that is still
// starting.
func (s *Speaker) Stop() error {
	s.playMu.Lock()
	defer s.playMu.Unlock()
	return s.stopCurrent()
}

func (s *Speaker) stopCurrent() error {
	s.mu.Lock()
	pb := s.current
	s.current = nil
	s.mu.Unlock()

	if pb == nil {
		return nil
	}
	return pb.Stop()
}

// Playing reports whether a clip is still running.
func (s *Speaker) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

func isMPEG(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	return strings.EqualFold(mediaType, "audio/mpeg") || strings.EqualFold(mediaType, "audio/mp3")
}

func clipExtension(contentType string) string {
	if isMPEG(contentType) || contentType == "" {
		return ".mp3"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".audio"
}
