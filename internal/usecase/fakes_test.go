package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
	"agentconsole/internal/ports"
)

type fakeAudioCapture struct {
	mu       sync.Mutex
	sessions []ports.AudioSession
	err      error
	calls    int
}

func (f *fakeAudioCapture) Start(_ context.Context, _ ports.AudioConfig) (ports.AudioSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls > len(f.sessions) {
		return nil, errors.New("no audio session configured")
	}
	return f.sessions[f.calls-1], nil
}

func (f *fakeAudioCapture) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeAudioSession struct {
	mu        sync.Mutex
	chunks    [][]byte
	index     int
	stopCalls int
	stopErr   error
}

func (f *fakeAudioSession) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index >= len(f.chunks) {
		return 0, io.EOF
	}
	n := copy(p, f.chunks[f.index])
	f.index++
	return n, nil
}

func (f *fakeAudioSession) Close() error { return nil }

func (f *fakeAudioSession) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	return f.stopErr
}

func (f *fakeAudioSession) stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls
}

type fakeProvider struct {
	mu       sync.Mutex
	sessions []ports.StreamingSession
	err      error
	probeErr error
	calls    int
	configs  []ports.StreamingConfig
}

func (f *fakeProvider) Probe() error { return f.probeErr }

func (f *fakeProvider) StartStreaming(_ context.Context, cfg ports.StreamingConfig) (ports.StreamingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs = append(f.configs, cfg)
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.sessions) {
		return nil, errors.New("no stream session configured")
	}
	session := f.sessions[f.calls]
	f.calls++
	return session, nil
}

type fakeStreamingSession struct {
	events     chan domain.TranscriptEvent
	waitErr    error
	closeSend  int
	closeCalls int
	closed     bool
	mu         sync.Mutex
}

func newFakeStreamingSession() *fakeStreamingSession {
	return &fakeStreamingSession{events: make(chan domain.TranscriptEvent, 16)}
}

func (f *fakeStreamingSession) SendAudio(_ []byte) error { return nil }

func (f *fakeStreamingSession) CloseSend() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeSend++
	if !f.closed {
		close(f.events)
		f.closed = true
	}
	return nil
}

func (f *fakeStreamingSession) Events() <-chan domain.TranscriptEvent { return f.events }

func (f *fakeStreamingSession) Wait() error {
	time.Sleep(5 * time.Millisecond)
	return f.waitErr
}

func (f *fakeStreamingSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	if !f.closed {
		close(f.events)
		f.closed = true
	}
	return nil
}

type fakeClipboard struct {
	mu       sync.Mutex
	lastText string
	err      error
}

func (f *fakeClipboard) SetText(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastText = text
	return f.err
}

type fakePlayer struct {
	mu        sync.Mutex
	paths     []string
	playbacks []*fakePlayback
	err       error
	// startDelay mimics the time a real player needs to come up.
	startDelay time.Duration
}

func (f *fakePlayer) Play(_ context.Context, path string) (ports.Playback, error) {
	time.Sleep(f.startDelay)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	pb := &fakePlayback{done: make(chan struct{})}
	f.paths = append(f.paths, path)
	f.playbacks = append(f.playbacks, pb)
	return pb, nil
}

type fakePlayback struct {
	once  sync.Once
	done  chan struct{}
	mu    sync.Mutex
	stops int
}

func (p *fakePlayback) Stop() error {
	p.mu.Lock()
	p.stops++
	p.mu.Unlock()
	p.once.Do(func() { close(p.done) })
	return nil
}

func (p *fakePlayback) Done() <-chan struct{} { return p.done }

func (f *fakePlayer) started() []*fakePlayback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakePlayback(nil), f.playbacks...)
}

func (p *fakePlayback) stopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stops
}

type fakeEventSink struct {
	mu sync.Mutex

	states      []stateEvent
	ticks       []int
	tickKinds   []domain.SessionKind
	transcripts []string
	features    []domain.FeatureSnapshot
	errors      []errEvent
}

type stateEvent struct {
	kind   domain.SessionKind
	state  domain.SessionState
	reason domain.SessionStateReason
}

type errEvent struct {
	code   domain.ErrorCode
	detail string
}

func (f *fakeEventSink) SessionStateChanged(kind domain.SessionKind, state domain.SessionState, reason domain.SessionStateReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, stateEvent{kind: kind, state: state, reason: reason})
}

func (f *fakeEventSink) RecordingTick(kind domain.SessionKind, seconds int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks = append(f.ticks, seconds)
	f.tickKinds = append(f.tickKinds, kind)
}

func (f *fakeEventSink) TranscriptReady(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcripts = append(f.transcripts, text)
}

func (f *fakeEventSink) FeatureChanged(snapshot domain.FeatureSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.features = append(f.features, snapshot)
}

func (f *fakeEventSink) SessionError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, errEvent{code: code, detail: detail})
}

func (f *fakeEventSink) snapshotStates() []stateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]stateEvent, len(f.states))
	copy(out, f.states)
	return out
}

func (f *fakeEventSink) snapshotErrors() []errEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]errEvent, len(f.errors))
	copy(out, f.errors)
	return out
}

func (f *fakeEventSink) snapshotTicks() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.ticks))
	copy(out, f.ticks)
	return out
}

func (f *fakeEventSink) snapshotTickKinds() []domain.SessionKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.SessionKind(nil), f.tickKinds...)
}

func (f *fakeEventSink) lastFeature() domain.FeatureSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.features) == 0 {
		return domain.FeatureSnapshot{}
	}
	return f.features[len(f.features)-1]
}

// fakeAPI implements every backend port. Calls block on gate when it is set.
type fakeAPI struct {
	mu      sync.Mutex
	calls   map[string]int
	last    map[string]any
	gate    chan struct{}
	started chan string
	err     error

	chat      apiclient.ChatResponse
	math      apiclient.MathResponse
	smart     apiclient.SmartChatResponse
	search    apiclient.SearchResponse
	tts       apiclient.Audio
	csv       apiclient.UploadCSVResponse
	analyze   apiclient.AnalyzeResponse
	charts    apiclient.ChartsResponse
	clear     apiclient.StatusResponse
	vision    apiclient.VisionResponse
	stt       apiclient.SpeechToTextResponse
	asr       apiclient.ASRResponse
	image     apiclient.TextToImageResponse
	video     apiclient.VideoResponse
	llm       apiclient.LLMChatResponse
	deck      apiclient.CreateSlidesResponse
	docs      apiclient.SlideDocumentsResponse
	download  []byte
	summary   apiclient.SummarizeResponse
	translate apiclient.TranslateResponse
	languages apiclient.LanguagesResponse
	latex     apiclient.LatexResponse
}

func (f *fakeAPI) enter(ctx context.Context, name string, req any) error {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
		f.last = map[string]any{}
	}
	f.calls[name]++
	f.last[name] = req
	gate, started, err := f.gate, f.started, f.err
	f.mu.Unlock()

	if started != nil {
		started <- name
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) lastRequest(name string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last[name]
}

func (f *fakeAPI) Chat(ctx context.Context, req apiclient.ChatRequest) (apiclient.ChatResponse, error) {
	return f.chat, f.enter(ctx, "chat", req)
}

func (f *fakeAPI) Math(ctx context.Context, query string) (apiclient.MathResponse, error) {
	return f.math, f.enter(ctx, "math", query)
}

func (f *fakeAPI) SmartChat(ctx context.Context, req apiclient.SmartChatRequest) (apiclient.SmartChatResponse, error) {
	return f.smart, f.enter(ctx, "smart-chat", req)
}

func (f *fakeAPI) Search(ctx context.Context, req apiclient.SearchRequest) (apiclient.SearchResponse, error) {
	return f.search, f.enter(ctx, "search", req)
}

func (f *fakeAPI) TextToSpeech(ctx context.Context, req apiclient.TTSRequest) (apiclient.Audio, error) {
	return f.tts, f.enter(ctx, "tts", req)
}

func (f *fakeAPI) UploadImage(ctx context.Context, file apiclient.File) (apiclient.UploadImageResponse, error) {
	if err := f.enter(ctx, "upload-image", file.Name); err != nil {
		return apiclient.UploadImageResponse{}, err
	}
	return apiclient.UploadImageResponse{Filename: "stored-" + file.Name, Status: "success"}, nil
}

func (f *fakeAPI) UploadCSV(ctx context.Context, file apiclient.File) (apiclient.UploadCSVResponse, error) {
	return f.csv, f.enter(ctx, "upload-csv", file.Name)
}

func (f *fakeAPI) AnalyzeData(ctx context.Context, req apiclient.AnalyzeRequest) (apiclient.AnalyzeResponse, error) {
	return f.analyze, f.enter(ctx, "analyze", req)
}

func (f *fakeAPI) Charts(ctx context.Context) (apiclient.ChartsResponse, error) {
	return f.charts, f.enter(ctx, "charts", nil)
}

func (f *fakeAPI) ClearData(ctx context.Context) (apiclient.StatusResponse, error) {
	return f.clear, f.enter(ctx, "clear", nil)
}

func (f *fakeAPI) ChartURL(filename string) string {
	return "http://backend/charts/" + filename
}

func (f *fakeAPI) MediaURL(ref string) string {
	return "http://backend" + ref
}

func (f *fakeAPI) Vision(ctx context.Context, req apiclient.VisionRequest) (apiclient.VisionResponse, error) {
	return f.vision, f.enter(ctx, "vision", req)
}

func (f *fakeAPI) SpeechToText(ctx context.Context, req apiclient.SpeechToTextRequest) (apiclient.SpeechToTextResponse, error) {
	return f.stt, f.enter(ctx, "stt", req)
}

func (f *fakeAPI) ASRTranscribe(ctx context.Context, req apiclient.ASRRequest) (apiclient.ASRResponse, error) {
	return f.asr, f.enter(ctx, "asr", req)
}

func (f *fakeAPI) TextToImage(ctx context.Context, req apiclient.TextToImageRequest) (apiclient.TextToImageResponse, error) {
	return f.image, f.enter(ctx, "text-to-image", req)
}

func (f *fakeAPI) TextToVideo(ctx context.Context, req apiclient.TextToVideoRequest) (apiclient.VideoResponse, error) {
	return f.video, f.enter(ctx, "text-to-video", req)
}

func (f *fakeAPI) ImageToVideo(ctx context.Context, req apiclient.ImageToVideoRequest) (apiclient.VideoResponse, error) {
	return f.video, f.enter(ctx, "image-to-video", req)
}

func (f *fakeAPI) ReferenceImagesToVideo(ctx context.Context, req apiclient.ReferenceImagesToVideoRequest) (apiclient.VideoResponse, error) {
	return f.video, f.enter(ctx, "reference-images-to-video", req)
}

func (f *fakeAPI) PromptToImageToVideo(ctx context.Context, req apiclient.TextToVideoRequest) (apiclient.VideoResponse, error) {
	return f.video, f.enter(ctx, "prompt-to-image-to-video", req)
}

func (f *fakeAPI) LocalLLM(ctx context.Context, req apiclient.LLMChatRequest) (apiclient.LLMChatResponse, error) {
	return f.llm, f.enter(ctx, "local-llm", req)
}

func (f *fakeAPI) CreateSlides(ctx context.Context, req apiclient.CreateSlidesRequest) (apiclient.CreateSlidesResponse, error) {
	return f.deck, f.enter(ctx, "create-slides", req)
}

func (f *fakeAPI) DownloadSlides(ctx context.Context, filename string) ([]byte, string, error) {
	return f.download, "application/vnd.openxmlformats-officedocument.presentationml.presentation", f.enter(ctx, "download-slides", filename)
}

func (f *fakeAPI) GenerateSlidesFromDocuments(ctx context.Context, req apiclient.SlideDocumentsRequest) (apiclient.SlideDocumentsResponse, error) {
	return f.docs, f.enter(ctx, "generate-slides", req)
}

func (f *fakeAPI) Summarize(ctx context.Context, req apiclient.SummarizeRequest) (apiclient.SummarizeResponse, error) {
	return f.summary, f.enter(ctx, "summarization", req)
}

func (f *fakeAPI) Translate(ctx context.Context, req apiclient.TranslateRequest) (apiclient.TranslateResponse, error) {
	return f.translate, f.enter(ctx, "translate", req)
}

func (f *fakeAPI) TranslationLanguages(ctx context.Context) (apiclient.LanguagesResponse, error) {
	return f.languages, f.enter(ctx, "languages", nil)
}

func (f *fakeAPI) LatexOCR(ctx context.Context, req apiclient.LatexRequest) (apiclient.LatexResponse, error) {
	return f.latex, f.enter(ctx, "latex-ocr", req)
}

func pngFile(t *testing.T, name string) apiclient.File {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return apiclient.File{Name: name, Data: buf.Bytes()}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
