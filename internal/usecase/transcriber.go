package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"agentconsole/internal/domain"
	"agentconsole/internal/ports"
)

const (
	defaultLocale     = "vi-VN"
	streamWaitTimeout = 4 * time.Second

	// DefaultNoSpeechTimeout ends a session that has heard nothing usable.
	DefaultNoSpeechTimeout = 8 * time.Second
)

var locales = map[string]string{
	"vi": "vi-VN",
	"en": "en-US",
	"zh": "zh-CN",
	"ja": "ja-JP",
	"ko": "ko-KR",
	"fr": "fr-FR",
	"de": "de-DE",
	"es": "es-ES",
}

// Locale maps a short language code to the recogniser locale.
// Unknown codes fall back to Vietnamese.
func Locale(code string) string {
	if locale, ok := locales[strings.ToLower(strings.TrimSpace(code))]; ok {
		return locale
	}
	return defaultLocale
}

// TranscriberConfig controls one-shot live transcription.
type TranscriberConfig struct {
	Audio          ports.AudioConfig
	Streaming      ports.StreamingConfig
	ChunkSize      int
	StreamingGrace time.Duration
	// NoSpeechTimeout bounds how long a session waits for its first final
	// transcript. Zero means DefaultNoSpeechTimeout, negative disables it.
	NoSpeechTimeout time.Duration
}

// Transcriber delivers exactly one outcome per listening session.
type Transcriber struct {
	capture  ports.AudioCapture
	provider ports.TranscriptionProvider
	mic      *MicLock
	events   ports.EventSink
	logger   *slog.Logger
	cfg      TranscriberConfig
	probeErr error

	mu      sync.Mutex
	current *listening
}

type listening struct {
	activeSession
	stream ports.StreamingSession

	outcome     chan domain.TranscriptOutcome
	resolveOnce sync.Once
	final       domain.TranscriptOutcome

	stopMu        sync.Mutex
	stopRequested bool

	done chan struct{}
}

func (l *listening) resolve(outcome domain.TranscriptOutcome) bool {
	resolved := false
	l.resolveOnce.Do(func() {
		l.final = outcome
		l.outcome <- outcome
		close(l.outcome)
		resolved = true
	})
	return resolved
}

func (l *listening) requestStop() {
	l.stopMu.Lock()
	defer l.stopMu.Unlock()
	l.stopRequested = true
}

func (l *listening) stopWasRequested() bool {
	l.stopMu.Lock()
	defer l.stopMu.Unlock()
	return l.stopRequested
}

// NewTranscriber probes the recogniser once; an unavailable recogniser makes
// every Start fail without touching the microphone.
func NewTranscriber(
	capture ports.AudioCapture,
	provider ports.TranscriptionProvider,
	mic *MicLock,
	events ports.EventSink,
	logger *slog.Logger,
	cfg TranscriberConfig,
) *Transcriber {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.NoSpeechTimeout == 0 {
		cfg.NoSpeechTimeout = DefaultNoSpeechTimeout
	}
	if mic == nil {
		mic = NewMicLock()
	}
	if logger == nil {
		logger = slog.Default()
	}

	probeErr := provider.Probe()
	if probeErr != nil {
		logger.Warn("speech recognition unavailable", "error", probeErr)
	}

	return &Transcriber{
		capture:  capture,
		provider: provider,
		mic:      mic,
		events:   events,
		logger:   logger,
		cfg:      cfg,
		probeErr: probeErr,
	}
}

// Available reports the result of the startup probe.
func (t *Transcriber) Available() error {
	if t.probeErr != nil {
		return fmt.Errorf("%w: %v", ErrSpeechUnsupported, t.probeErr)
	}
	return nil
}

// Start begins listening in the given language. Starting while a session is
// listening ends the previous one first. The returned channel yields exactly
// one outcome and is then closed.
func (t *Transcriber) Start(ctx context.Context, language string) (<-chan domain.TranscriptOutcome, error) {
	if err := t.Available(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	previous := t.current
	t.current = nil
	t.mu.Unlock()

	if previous != nil {
		previous.requestStop()
		t.abort(previous)
	}

	release, err := t.mic.Acquire(domain.SessionKindTranscript)
	if err != nil {
		return nil, err
	}

	streamCfg := t.cfg.Streaming
	streamCfg.Language = Locale(language)
	streamCfg.InterimResults = false

	sessionCtx, cancel := context.WithCancel(ctx)
	stream, err := t.provider.StartStreaming(sessionCtx, streamCfg)
	if err != nil {
		cancel()
		release()
		t.events.SessionError(domain.ErrorCodeTranscription, err.Error())
		return nil, &domain.CaptureError{Code: domain.ErrorCodeTranscription, Message: "could not start speech recognition", Err: err}
	}

	session, err := t.capture.Start(sessionCtx, t.cfg.Audio)
	if err != nil {
		_ = stream.Close()
		cancel()
		release()
		t.events.SessionError(domain.ErrorCodeMicrophone, err.Error())
		t.events.SessionStateChanged(domain.SessionKindTranscript, domain.SessionStateIdle, domain.SessionReasonMicrophoneDenied)
		return nil, &domain.CaptureError{Code: domain.ErrorCodeMicrophone, Message: "could not access the microphone", Err: err}
	}

	l := &listening{
		activeSession: activeSession{
			kind:      domain.SessionKindTranscript,
			cancel:    cancel,
			audio:     session,
			release:   release,
			state:     domain.SessionStateListening,
			audioDone: make(chan struct{}),
		},
		stream:  stream,
		outcome: make(chan domain.TranscriptOutcome, 1),
		done:    make(chan struct{}),
	}

	t.mu.Lock()
	t.current = l
	t.mu.Unlock()

	go pumpAudioChunks(session, stream.SendAudio, t.cfg.ChunkSize, t.events, l.audioDone)
	go t.run(l)

	t.events.SessionStateChanged(domain.SessionKindTranscript, domain.SessionStateListening, domain.SessionReasonListeningStarted)
	t.logger.Info("listening", "locale", streamCfg.Language)
	return l.outcome, nil
}

func (t *Transcriber) run(l *listening) {
	defer close(l.done)

	var silence <-chan time.Time
	if t.cfg.NoSpeechTimeout > 0 {
		timer := time.NewTimer(t.cfg.NoSpeechTimeout)
		defer timer.Stop()
		silence = timer.C
	}

	events := l.stream.Events()
	for events != nil {
		select {
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			text := strings.TrimSpace(event.Text)
			if event.Kind != domain.TranscriptKindFinal || text == "" {
				continue
			}
			if l.resolve(domain.TranscriptOutcome{Kind: domain.TranscriptOutcomeResult, Text: text}) {
				_ = l.audio.Stop()
				_ = l.stream.CloseSend()
			}
		case <-silence:
			silence = nil
			if l.stopWasRequested() {
				continue
			}
			if l.resolve(noSpeechOutcome()) {
				t.logger.Info("no speech before timeout", "timeout", t.cfg.NoSpeechTimeout)
				_ = l.audio.Stop()
				_ = l.stream.Close()
			}
		}
	}

	streamErr := waitForStream(l.stream, streamWaitTimeout)
	switch {
	case l.stopWasRequested():
		l.resolve(domain.TranscriptOutcome{Kind: domain.TranscriptOutcomeEnded})
	case streamErr != nil:
		l.resolve(domain.TranscriptOutcome{Kind: domain.TranscriptOutcomeError, Message: streamErr.Error(), Err: streamErr})
	default:
		l.resolve(noSpeechOutcome())
	}

	l.teardown()
	t.finish(l)
}

func noSpeechOutcome() domain.TranscriptOutcome {
	return domain.TranscriptOutcome{Kind: domain.TranscriptOutcomeError, Message: ErrNoSpeech.Error(), Err: ErrNoSpeech}
}

func (t *Transcriber) finish(l *listening) {
	t.mu.Lock()
	if t.current == l {
		t.current = nil
	}
	t.mu.Unlock()

	outcome := l.final
	switch outcome.Kind {
	case domain.TranscriptOutcomeResult:
		l.setState(domain.SessionStateIdle)
		t.events.TranscriptReady(outcome.Text)
		t.events.SessionStateChanged(domain.SessionKindTranscript, domain.SessionStateIdle, domain.SessionReasonTranscriptReady)
	case domain.TranscriptOutcomeEnded:
		l.setState(domain.SessionStateIdle)
		t.events.SessionStateChanged(domain.SessionKindTranscript, domain.SessionStateIdle, domain.SessionReasonTranscriptCancelled)
	default:
		l.setState(domain.SessionStateError)
		code, reason := domain.ErrorCodeTranscription, domain.SessionReasonTranscriptionFailed
		if errors.Is(outcome.Err, ErrNoSpeech) {
			code, reason = domain.ErrorCodeNoSpeech, domain.SessionReasonNoSpeech
		}
		t.events.SessionError(code, outcome.Message)
		t.events.SessionStateChanged(domain.SessionKindTranscript, domain.SessionStateError, reason)
	}
}

// Stop ends the listening session. Audio captured so far is still flushed
// to the recogniser, so a late final transcript can win over Ended.
func (t *Transcriber) Stop(ctx context.Context) (domain.TranscriptOutcome, error) {
	t.mu.Lock()
	l := t.current
	t.mu.Unlock()

	if l == nil {
		return domain.TranscriptOutcome{}, ErrNoActiveSession
	}

	l.requestStop()
	l.setState(domain.SessionStateStopping)
	t.events.SessionStateChanged(domain.SessionKindTranscript, domain.SessionStateStopping, domain.SessionReasonMicCold)

	if err := l.stopAudio(); err != nil {
		t.events.SessionError(domain.ErrorCodeAudioStop, "failed to stop audio capture cleanly")
	}

	if t.cfg.StreamingGrace > 0 {
		timer := time.NewTimer(t.cfg.StreamingGrace)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	_ = l.stream.CloseSend()
	<-l.done
	return l.final, nil
}

// Close discards any active session without waiting for a transcript.
func (t *Transcriber) Close() {
	t.mu.Lock()
	l := t.current
	t.current = nil
	t.mu.Unlock()

	if l != nil {
		l.requestStop()
		t.abort(l)
	}
}

func (t *Transcriber) abort(l *listening) {
	l.cancel()
	_ = l.audio.Stop()
	_ = l.stream.Close()
	<-l.done
}

// Status returns the current listening state.
func (t *Transcriber) Status() domain.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return domain.Status{State: domain.SessionStateIdle}
	}
	return domain.Status{State: t.current.getState(), Active: true}
}
