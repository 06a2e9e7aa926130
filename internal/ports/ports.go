package ports

import (
	"context"
	"io"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session producing s16le PCM.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// StreamingConfig describes provider-agnostic streaming settings.
type StreamingConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	Language       string
	InterimResults bool
}

// StreamingSession is an active provider websocket session.
type StreamingSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan domain.TranscriptEvent
	Wait() error
	Close() error
}

// TranscriptionProvider starts streaming transcription sessions.
type TranscriptionProvider interface {
	// Probe reports whether the recogniser can be used at all.
	Probe() error
	StartStreaming(ctx context.Context, cfg StreamingConfig) (StreamingSession, error)
}

// Playback is one running audio playback.
type Playback interface {
	Stop() error
	Done() <-chan struct{}
}

// AudioPlayer plays local audio files.
type AudioPlayer interface {
	Play(ctx context.Context, path string) (Playback, error)
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	SessionStateChanged(kind domain.SessionKind, state domain.SessionState, reason domain.SessionStateReason)
	RecordingTick(kind domain.SessionKind, seconds int)
	TranscriptReady(text string)
	FeatureChanged(snapshot domain.FeatureSnapshot)
	SessionError(code domain.ErrorCode, detail string)
}

// ChatAPI serves the math and search chat controllers.
type ChatAPI interface {
	Chat(ctx context.Context, req apiclient.ChatRequest) (apiclient.ChatResponse, error)
	Math(ctx context.Context, query string) (apiclient.MathResponse, error)
}

// SpeechSynthesisAPI turns text into audio.
type SpeechSynthesisAPI interface {
	TextToSpeech(ctx context.Context, req apiclient.TTSRequest) (apiclient.Audio, error)
}

// ImageUploadAPI stores an image on the backend and returns its asset reference.
type ImageUploadAPI interface {
	UploadImage(ctx context.Context, file apiclient.File) (apiclient.UploadImageResponse, error)
}

type SmartChatAPI interface {
	ImageUploadAPI
	SpeechSynthesisAPI
	SmartChat(ctx context.Context, req apiclient.SmartChatRequest) (apiclient.SmartChatResponse, error)
}

type SearchAPI interface {
	Search(ctx context.Context, req apiclient.SearchRequest) (apiclient.SearchResponse, error)
}

type DataAPI interface {
	UploadCSV(ctx context.Context, file apiclient.File) (apiclient.UploadCSVResponse, error)
	AnalyzeData(ctx context.Context, req apiclient.AnalyzeRequest) (apiclient.AnalyzeResponse, error)
	Charts(ctx context.Context) (apiclient.ChartsResponse, error)
	ClearData(ctx context.Context) (apiclient.StatusResponse, error)
	ChartURL(filename string) string
}

type VisionAPI interface {
	ImageUploadAPI
	Vision(ctx context.Context, req apiclient.VisionRequest) (apiclient.VisionResponse, error)
}

type SpeechToTextAPI interface {
	SpeechToText(ctx context.Context, req apiclient.SpeechToTextRequest) (apiclient.SpeechToTextResponse, error)
}

type ASRAPI interface {
	ASRTranscribe(ctx context.Context, req apiclient.ASRRequest) (apiclient.ASRResponse, error)
}

type ImageGenerationAPI interface {
	TextToImage(ctx context.Context, req apiclient.TextToImageRequest) (apiclient.TextToImageResponse, error)
	MediaURL(ref string) string
}

type VideoGenerationAPI interface {
	ImageUploadAPI
	TextToVideo(ctx context.Context, req apiclient.TextToVideoRequest) (apiclient.VideoResponse, error)
	ImageToVideo(ctx context.Context, req apiclient.ImageToVideoRequest) (apiclient.VideoResponse, error)
	ReferenceImagesToVideo(ctx context.Context, req apiclient.ReferenceImagesToVideoRequest) (apiclient.VideoResponse, error)
	PromptToImageToVideo(ctx context.Context, req apiclient.TextToVideoRequest) (apiclient.VideoResponse, error)
	MediaURL(ref string) string
}

type LLMAPI interface {
	LocalLLM(ctx context.Context, req apiclient.LLMChatRequest) (apiclient.LLMChatResponse, error)
	CreateSlides(ctx context.Context, req apiclient.CreateSlidesRequest) (apiclient.CreateSlidesResponse, error)
	DownloadSlides(ctx context.Context, filename string) ([]byte, string, error)
}

type SlidesAPI interface {
	GenerateSlidesFromDocuments(ctx context.Context, req apiclient.SlideDocumentsRequest) (apiclient.SlideDocumentsResponse, error)
	DownloadSlides(ctx context.Context, filename string) ([]byte, string, error)
	MediaURL(ref string) string
}

type SummaryAPI interface {
	Summarize(ctx context.Context, req apiclient.SummarizeRequest) (apiclient.SummarizeResponse, error)
}

type TranslationAPI interface {
	SpeechSynthesisAPI
	Translate(ctx context.Context, req apiclient.TranslateRequest) (apiclient.TranslateResponse, error)
	TranslationLanguages(ctx context.Context) (apiclient.LanguagesResponse, error)
}

type LatexAPI interface {
	ImageUploadAPI
	LatexOCR(ctx context.Context, req apiclient.LatexRequest) (apiclient.LatexResponse, error)
}

type HealthAPI interface {
	Health(ctx context.Context) (apiclient.HealthResponse, error)
}
