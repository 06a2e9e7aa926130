package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"agentconsole/internal/audio"
	"agentconsole/internal/domain"
	"agentconsole/internal/ports"
)

// RecordingFileName is the fixed name of every finished recording.
const RecordingFileName = "recorded_audio.wav"

// RecorderConfig controls microphone recording.
type RecorderConfig struct {
	// Kind tags this recorder's state and tick events. Defaults to
	// domain.SessionKindRecording.
	Kind       domain.SessionKind
	Audio      ports.AudioConfig
	CaptureDir string
	ChunkSize  int
	Tick       time.Duration
}

// Recorder turns one microphone capture into a finished WAV file.
type Recorder struct {
	capture ports.AudioCapture
	mic     *MicLock
	events  ports.EventSink
	logger  *slog.Logger
	cfg     RecorderConfig

	mu      sync.Mutex
	current *recording
}

type recording struct {
	activeSession

	bufMu sync.Mutex
	pcm   bytes.Buffer

	secMu   sync.Mutex
	seconds int

	stopTick chan struct{}
	tickDone chan struct{}
}

func (r *recording) write(chunk []byte) error {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()
	_, err := r.pcm.Write(chunk)
	return err
}

func (r *recording) elapsed() int {
	r.secMu.Lock()
	defer r.secMu.Unlock()
	return r.seconds
}

func (r *recording) stopTicker() {
	select {
	case <-r.stopTick:
	default:
		close(r.stopTick)
	}
	<-r.tickDone
}

func NewRecorder(capture ports.AudioCapture, mic *MicLock, events ports.EventSink, logger *slog.Logger, cfg RecorderConfig) *Recorder {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.Kind == "" {
		cfg.Kind = domain.SessionKindRecording
	}
	if cfg.CaptureDir == "" {
		cfg.CaptureDir = os.TempDir()
	}
	if mic == nil {
		mic = NewMicLock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		capture: capture,
		mic:     mic,
		events:  events,
		logger:  logger,
		cfg:     cfg,
	}
}

// Start acquires the microphone and begins buffering audio.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		return ErrAlreadyRecording
	}

	release, err := r.mic.Acquire(r.cfg.Kind)
	if err != nil {
		return err
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	session, err := r.capture.Start(sessionCtx, r.cfg.Audio)
	if err != nil {
		cancel()
		release()
		r.logger.Warn("microphone unavailable", "error", err)
		captureErr := &domain.CaptureError{
			Code:    domain.ErrorCodeMicrophone,
			Message: "could not access the microphone",
			Err:     err,
		}
		r.events.SessionError(domain.ErrorCodeMicrophone, captureErr.Error())
		r.events.SessionStateChanged(r.cfg.Kind, domain.SessionStateIdle, domain.SessionReasonMicrophoneDenied)
		return captureErr
	}

	rec := &recording{
		activeSession: activeSession{
			kind:      r.cfg.Kind,
			cancel:    cancel,
			audio:     session,
			release:   release,
			state:     domain.SessionStateRecording,
			audioDone: make(chan struct{}),
		},
		stopTick: make(chan struct{}),
		tickDone: make(chan struct{}),
	}
	r.current = rec

	go pumpAudioChunks(session, rec.write, r.cfg.ChunkSize, r.events, rec.audioDone)
	go r.tick(rec)

	r.events.SessionStateChanged(r.cfg.Kind, domain.SessionStateRecording, domain.SessionReasonRecordingStarted)
	return nil
}

func (r *Recorder) tick(rec *recording) {
	defer close(rec.tickDone)

	ticker := time.NewTicker(r.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-rec.stopTick:
			return
		case <-ticker.C:
			rec.secMu.Lock()
			rec.seconds++
			seconds := rec.seconds
			rec.secMu.Unlock()
			r.events.RecordingTick(r.cfg.Kind, seconds)
		}
	}
}

// Stop finishes the recording and writes it to disk. Without an active
// recording it does nothing and returns nil.
func (r *Recorder) Stop(_ context.Context) (*domain.RecordedAudio, error) {
	r.mu.Lock()
	rec := r.current
	r.current = nil
	r.mu.Unlock()

	if rec == nil {
		return nil, nil
	}

	rec.setState(domain.SessionStateStopping)
	rec.stopTicker()
	if err := rec.stopAudio(); err != nil {
		r.logger.Warn("audio capture did not stop cleanly", "error", err)
		r.events.SessionError(domain.ErrorCodeAudioStop, "failed to stop audio capture cleanly")
	}
	rec.teardown()

	rec.bufMu.Lock()
	pcm := append([]byte(nil), rec.pcm.Bytes()...)
	rec.bufMu.Unlock()

	result, err := r.writeRecording(pcm, rec.elapsed())
	if err != nil {
		rec.setState(domain.SessionStateError)
		r.events.SessionError(domain.ErrorCodeAudioStop, err.Error())
		r.events.SessionStateChanged(r.cfg.Kind, domain.SessionStateError, domain.SessionReasonRecordingDiscarded)
		return nil, err
	}

	rec.setState(domain.SessionStateStopped)
	r.events.SessionStateChanged(r.cfg.Kind, domain.SessionStateStopped, domain.SessionReasonRecordingFinished)
	r.logger.Info("recording finished", "path", result.Path, "seconds", result.Seconds, "bytes", result.Size)
	return result, nil
}

func (r *Recorder) writeRecording(pcm []byte, seconds int) (*domain.RecordedAudio, error) {
	dir := filepath.Join(r.cfg.CaptureDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create capture directory: %w", err)
	}

	path := filepath.Join(dir, RecordingFileName)
	size, err := audio.WriteWAV(path, pcm, r.cfg.Audio.SampleRate, r.cfg.Audio.Channels)
	if err != nil {
		return nil, fmt.Errorf("failed to write recording: %w", err)
	}

	return &domain.RecordedAudio{
		Path:     path,
		Name:     RecordingFileName,
		MIMEType: audio.WAVMIMEType,
		Seconds:  seconds,
		Size:     size,
	}, nil
}

// Close discards any active recording.
func (r *Recorder) Close() {
	r.mu.Lock()
	rec := r.current
	r.current = nil
	r.mu.Unlock()

	if rec == nil {
		return
	}

	rec.stopTicker()
	rec.teardown()
	rec.setState(domain.SessionStateIdle)
	r.events.SessionStateChanged(r.cfg.Kind, domain.SessionStateIdle, domain.SessionReasonRecordingDiscarded)
}

// Status returns the current recording state.
func (r *Recorder) Status() domain.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return domain.Status{State: domain.SessionStateIdle}
	}
	return domain.Status{
		State:   r.current.getState(),
		Active:  true,
		Seconds: r.current.elapsed(),
	}
}
