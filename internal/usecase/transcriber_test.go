package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"agentconsole/internal/domain"
	"agentconsole/internal/ports"
	"agentconsole/internal/providers/deepgram"
)

func newTestTranscriber(capture ports.AudioCapture, provider *fakeProvider, mic *MicLock, events ports.EventSink) *Transcriber {
	return NewTranscriber(capture, provider, mic, events, nil, TranscriberConfig{
		Audio:     ports.AudioConfig{SampleRate: 16000, Channels: 1},
		Streaming: ports.StreamingConfig{SampleRate: 16000, Channels: 1, Encoding: "linear16"},
	})
}

func receiveOutcome(t *testing.T, outcomes <-chan domain.TranscriptOutcome) domain.TranscriptOutcome {
	t.Helper()
	select {
	case outcome, ok := <-outcomes:
		if !ok {
			t.Fatalf("outcome channel closed without a value")
		}
		return outcome
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for outcome")
	}
	return domain.TranscriptOutcome{}
}

func TestLocale(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"vi":      "vi-VN",
		"en":      "en-US",
		" JA ":    "ja-JP",
		"es":      "es-ES",
		"":        "vi-VN",
		"klingon": "vi-VN",
	}
	for code, want := range cases {
		if got := Locale(code); got != want {
			t.Fatalf("Locale(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestTranscriberUnavailableNeverOpensMicrophone(t *testing.T) {
	t.Parallel()

	capture := &fakeAudioCapture{sessions: []ports.AudioSession{&fakeAudioSession{}}}
	provider := &fakeProvider{probeErr: errors.New("missing api key")}
	transcriber := newTestTranscriber(capture, provider, nil, &fakeEventSink{})

	if _, err := transcriber.Start(context.Background(), "en"); !errors.Is(err, ErrSpeechUnsupported) {
		t.Fatalf("expected ErrSpeechUnsupported, got %v", err)
	}
	if capture.callCount() != 0 || len(provider.configs) != 0 {
		t.Fatalf("unavailable recogniser touched capture=%d provider=%d", capture.callCount(), len(provider.configs))
	}
}

func TestTranscriberDeliversFirstFinalTranscript(t *testing.T) {
	t.Parallel()

	mic := NewMicLock()
	stream := newFakeStreamingSession()
	stream.events <- domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "xin"}
	stream.events <- domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "  "}
	stream.events <- domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: " xin chao "}
	stream.events <- domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "ignored"}

	audio := &fakeAudioSession{chunks: [][]byte{[]byte("pcm")}}
	provider := &fakeProvider{sessions: []ports.StreamingSession{stream}}
	events := &fakeEventSink{}
	transcriber := newTestTranscriber(&fakeAudioCapture{sessions: []ports.AudioSession{audio}}, provider, mic, events)

	outcomes, err := transcriber.Start(context.Background(), "en")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if cfg := provider.configs[0]; cfg.Language != "en-US" || cfg.InterimResults {
		t.Fatalf("unexpected streaming config: %+v", cfg)
	}

	outcome := receiveOutcome(t, outcomes)
	if outcome.Kind != domain.TranscriptOutcomeResult || outcome.Text != "xin chao" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if _, ok := <-outcomes; ok {
		t.Fatalf("expected channel to close after one outcome")
	}

	waitFor(t, "session teardown", func() bool {
		return mic.Owner() == "" && !transcriber.Status().Active
	})
	events.mu.Lock()
	transcripts := append([]string(nil), events.transcripts...)
	events.mu.Unlock()
	if len(transcripts) != 1 || transcripts[0] != "xin chao" {
		t.Fatalf("unexpected transcripts: %v", transcripts)
	}
	states := events.snapshotStates()
	if last := states[len(states)-1]; last.reason != domain.SessionReasonTranscriptReady {
		t.Fatalf("unexpected final state: %+v", last)
	}
}

func TestTranscriberNoSpeech(t *testing.T) {
	t.Parallel()

	mic := NewMicLock()
	stream := newFakeStreamingSession()
	events := &fakeEventSink{}
	transcriber := newTestTranscriber(
		&fakeAudioCapture{sessions: []ports.AudioSession{&fakeAudioSession{}}},
		&fakeProvider{sessions: []ports.StreamingSession{stream}},
		mic, events,
	)

	outcomes, err := transcriber.Start(context.Background(), "vi")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	_ = stream.CloseSend()

	outcome := receiveOutcome(t, outcomes)
	if outcome.Kind != domain.TranscriptOutcomeError || !errors.Is(outcome.Err, ErrNoSpeech) {
		t.Fatalf("expected no speech outcome, got %+v", outcome)
	}

	waitFor(t, "no speech error event", func() bool { return len(events.snapshotErrors()) > 0 })
	if errs := events.snapshotErrors(); errs[0].code != domain.ErrorCodeNoSpeech {
		t.Fatalf("unexpected error event: %+v", errs)
	}
	waitFor(t, "microphone release", func() bool { return mic.Owner() == "" })
}

func TestTranscriberSilenceEndsWithNoSpeech(t *testing.T) {
	t.Parallel()

	mic := NewMicLock()
	stream := newFakeStreamingSession()
	audio := &fakeAudioSession{}
	events := &fakeEventSink{}
	transcriber := NewTranscriber(
		&fakeAudioCapture{sessions: []ports.AudioSession{audio}},
		&fakeProvider{sessions: []ports.StreamingSession{stream}},
		mic, events, nil,
		TranscriberConfig{NoSpeechTimeout: 30 * time.Millisecond},
	)

	outcomes, err := transcriber.Start(context.Background(), "en")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	outcome := receiveOutcome(t, outcomes)
	if outcome.Kind != domain.TranscriptOutcomeError || !errors.Is(outcome.Err, ErrNoSpeech) {
		t.Fatalf("expected no speech outcome, got %+v", outcome)
	}

	waitFor(t, "microphone release", func() bool { return mic.Owner() == "" })
	waitFor(t, "idle status", func() bool { return !transcriber.Status().Active })
	if audio.stops() == 0 {
		t.Fatalf("expected audio capture to be stopped")
	}
	stream.mu.Lock()
	closed := stream.closeCalls
	stream.mu.Unlock()
	if closed == 0 {
		t.Fatalf("expected the stream to be closed")
	}
	waitFor(t, "no speech error event", func() bool { return len(events.snapshotErrors()) > 0 })
	if errs := events.snapshotErrors(); errs[0].code != domain.ErrorCodeNoSpeech {
		t.Fatalf("unexpected error event: %+v", errs)
	}
}

func TestTranscriberNoSpeechTimeoutCanBeDisabled(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	transcriber := NewTranscriber(
		&fakeAudioCapture{sessions: []ports.AudioSession{&fakeAudioSession{}}},
		&fakeProvider{sessions: []ports.StreamingSession{stream}},
		nil, &fakeEventSink{}, nil,
		TranscriberConfig{NoSpeechTimeout: -1},
	)

	outcomes, err := transcriber.Start(context.Background(), "en")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	select {
	case outcome := <-outcomes:
		t.Fatalf("unexpected outcome before stop: %+v", outcome)
	case <-time.After(50 * time.Millisecond):
	}

	outcome, err := transcriber.Stop(context.Background())
	if err != nil || outcome.Kind != domain.TranscriptOutcomeEnded {
		t.Fatalf("expected ended outcome, got %+v err=%v", outcome, err)
	}
}

func TestTranscriberCleanServerCloseIsNoSpeech(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	mic := NewMicLock()
	events := &fakeEventSink{}
	provider := deepgram.NewProvider(deepgram.Config{APIKey: "secret", APIBaseURL: srv.URL}, nil)
	audio := &fakeAudioSession{chunks: [][]byte{make([]byte, 640)}}
	transcriber := NewTranscriber(
		&fakeAudioCapture{sessions: []ports.AudioSession{audio}},
		provider, mic, events, nil,
		TranscriberConfig{NoSpeechTimeout: 5 * time.Second},
	)

	outcomes, err := transcriber.Start(context.Background(), "en")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	outcome := receiveOutcome(t, outcomes)
	if outcome.Kind != domain.TranscriptOutcomeError || !errors.Is(outcome.Err, ErrNoSpeech) {
		t.Fatalf("expected a clean close without transcript to be no speech, got %+v", outcome)
	}
	waitFor(t, "microphone release", func() bool { return mic.Owner() == "" })
}

func TestTranscriberProviderError(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	stream.waitErr = errors.New("invalid audio")
	events := &fakeEventSink{}
	transcriber := newTestTranscriber(
		&fakeAudioCapture{sessions: []ports.AudioSession{&fakeAudioSession{}}},
		&fakeProvider{sessions: []ports.StreamingSession{stream}},
		nil, events,
	)

	outcomes, err := transcriber.Start(context.Background(), "vi")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	_ = stream.Close()

	outcome := receiveOutcome(t, outcomes)
	if outcome.Kind != domain.TranscriptOutcomeError || outcome.Message != "invalid audio" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	waitFor(t, "transcription error event", func() bool { return len(events.snapshotErrors()) > 0 })
	if errs := events.snapshotErrors(); errs[0].code != domain.ErrorCodeTranscription {
		t.Fatalf("unexpected error event: %+v", errs)
	}
}

func TestTranscriberStopEndsSession(t *testing.T) {
	t.Parallel()

	mic := NewMicLock()
	stream := newFakeStreamingSession()
	audio := &fakeAudioSession{}
	events := &fakeEventSink{}
	transcriber := newTestTranscriber(
		&fakeAudioCapture{sessions: []ports.AudioSession{audio}},
		&fakeProvider{sessions: []ports.StreamingSession{stream}},
		mic, events,
	)

	outcomes, err := transcriber.Start(context.Background(), "vi")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	outcome, err := transcriber.Stop(context.Background())
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if outcome.Kind != domain.TranscriptOutcomeEnded {
		t.Fatalf("expected ended outcome, got %+v", outcome)
	}
	if got := receiveOutcome(t, outcomes); got.Kind != domain.TranscriptOutcomeEnded {
		t.Fatalf("channel delivered %+v", got)
	}
	if audio.stops() == 0 {
		t.Fatalf("expected capture to be stopped")
	}
	if mic.Owner() != "" {
		t.Fatalf("microphone still claimed by %q", mic.Owner())
	}

	var sawStopping, sawCancelled bool
	for _, s := range events.snapshotStates() {
		if s.state == domain.SessionStateStopping && s.reason == domain.SessionReasonMicCold {
			sawStopping = true
		}
		if s.reason == domain.SessionReasonTranscriptCancelled {
			sawCancelled = true
		}
	}
	if !sawStopping || !sawCancelled {
		t.Fatalf("unexpected states: %+v", events.snapshotStates())
	}

	if _, err := transcriber.Stop(context.Background()); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestTranscriberWaitsForRecorderMicrophone(t *testing.T) {
	t.Parallel()

	mic := NewMicLock()
	release, err := mic.Acquire(domain.SessionKindRecording)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer release()

	provider := &fakeProvider{sessions: []ports.StreamingSession{newFakeStreamingSession()}}
	transcriber := newTestTranscriber(&fakeAudioCapture{}, provider, mic, &fakeEventSink{})

	if _, err := transcriber.Start(context.Background(), "vi"); !errors.Is(err, ErrMicrophoneBusy) {
		t.Fatalf("expected ErrMicrophoneBusy, got %v", err)
	}
	if len(provider.configs) != 0 {
		t.Fatalf("provider must not be contacted while the microphone is busy")
	}
}

func TestTranscriberRestartEndsPreviousSession(t *testing.T) {
	t.Parallel()

	first := newFakeStreamingSession()
	second := newFakeStreamingSession()
	transcriber := newTestTranscriber(
		&fakeAudioCapture{sessions: []ports.AudioSession{&fakeAudioSession{}, &fakeAudioSession{}}},
		&fakeProvider{sessions: []ports.StreamingSession{first, second}},
		nil, &fakeEventSink{},
	)

	firstOutcomes, err := transcriber.Start(context.Background(), "vi")
	if err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	secondOutcomes, err := transcriber.Start(context.Background(), "en")
	if err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	defer transcriber.Close()

	if got := receiveOutcome(t, firstOutcomes); got.Kind != domain.TranscriptOutcomeEnded {
		t.Fatalf("previous session should end, got %+v", got)
	}
	second.events <- domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "hello"}
	if got := receiveOutcome(t, secondOutcomes); got.Text != "hello" {
		t.Fatalf("unexpected second outcome: %+v", got)
	}
}

func TestDictationPublishesTranscript(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	events := &fakeEventSink{}
	transcriber := newTestTranscriber(
		&fakeAudioCapture{sessions: []ports.AudioSession{&fakeAudioSession{}}},
		&fakeProvider{sessions: []ports.StreamingSession{stream}},
		nil, events,
	)
	dictation := NewDictationController(transcriber, events, nil)

	if err := dictation.Start(context.Background(), "ko"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := dictation.Start(context.Background(), "ko"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while listening, got %v", err)
	}

	stream.events <- domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "annyeong"}
	waitFor(t, "dictation result", func() bool { return !dictation.Snapshot().Busy })

	snapshot := dictation.Snapshot()
	got, ok := snapshot.Result.(Dictation)
	if !ok || got.Text != "annyeong" || got.Locale != "ko-KR" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestDictationUnavailable(t *testing.T) {
	t.Parallel()

	capture := &fakeAudioCapture{}
	transcriber := newTestTranscriber(capture, &fakeProvider{probeErr: errors.New("no key")}, nil, &fakeEventSink{})
	dictation := NewDictationController(transcriber, &fakeEventSink{}, nil)

	if dictation.Available() {
		t.Fatalf("expected dictation to be unavailable")
	}
	if err := dictation.Start(context.Background(), "vi"); !errors.Is(err, ErrSpeechUnsupported) {
		t.Fatalf("expected ErrSpeechUnsupported, got %v", err)
	}
	if snapshot := dictation.Snapshot(); snapshot.ErrorCode != domain.ErrorCodeSpeechUnsupported || snapshot.Busy {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if capture.callCount() != 0 {
		t.Fatalf("microphone opened while unavailable")
	}
	if _, err := dictation.Stop(context.Background()); err != nil {
		t.Fatalf("stop without a session should be a no-op, got %v", err)
	}
}
