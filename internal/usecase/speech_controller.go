package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
	"agentconsole/internal/ports"
)

// SpeechMethods are the recognisers /speech-to-text can use.
var SpeechMethods = []string{"auto", "whisper", "google"}

// ASRTasks are the Whisper tasks /api/asr/transcribe accepts.
var ASRTasks = []string{"transcribe", "translate"}

// SpeechOptions configures one /speech-to-text call.
type SpeechOptions struct {
	Method             string `json:"method"`
	Language           string `json:"language"`
	TranslateToEnglish bool   `json:"translateToEnglish"`
	OpenAIAPIKey       string `json:"openaiApiKey"`
}

// SpeechView is what the speech-to-text panel renders.
type SpeechView struct {
	Source     *AudioSource                    `json:"source,omitempty"`
	Transcript *apiclient.SpeechToTextResponse `json:"transcript,omitempty"`
}

// SpeechController records or picks audio and transcribes it.
type SpeechController struct {
	api      ports.SpeechToTextAPI
	state    *featureState
	input    audioInput
	language string
}

func NewSpeechController(api ports.SpeechToTextAPI, recorder *Recorder, language string, events ports.EventSink, logger *slog.Logger) *SpeechController {
	if language == "" {
		language = "vi"
	}
	return &SpeechController{
		api:      api,
		state:    newFeatureState(domain.FeatureSpeech, events, logger),
		input:    audioInput{recorder: recorder},
		language: language,
	}
}

func (c *SpeechController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

func (c *SpeechController) StartRecording(ctx context.Context) error {
	if err := c.input.startRecording(ctx); err != nil {
		return c.state.report(err)
	}
	c.state.clearError()
	return nil
}

func (c *SpeechController) StopRecording(ctx context.Context) (SpeechView, error) {
	source, err := c.input.stopRecording(ctx)
	if err != nil {
		return SpeechView{}, c.state.report(err)
	}
	if source == nil {
		return SpeechView{}, nil
	}
	view := SpeechView{Source: source}
	c.state.setResult(view)
	return view, nil
}

func (c *SpeechController) SelectFile(file apiclient.File) (SpeechView, error) {
	source, err := c.input.selectFile(file)
	if err != nil {
		return SpeechView{}, c.state.report(err)
	}
	view := SpeechView{Source: source}
	c.state.clearError()
	c.state.setResult(view)
	return view, nil
}

// Transcribe sends the current audio to /speech-to-text.
func (c *SpeechController) Transcribe(ctx context.Context, opts SpeechOptions) (SpeechView, error) {
	file, err := c.input.require()
	if err != nil {
		return SpeechView{}, c.state.report(err)
	}
	if opts.Method == "" {
		opts.Method = SpeechMethods[0]
	}
	if !lo.Contains(SpeechMethods, opts.Method) {
		return SpeechView{}, c.state.report(domain.Invalid("method", "unsupported recognition method %q", opts.Method))
	}
	if opts.Language == "" {
		opts.Language = c.language
	}
	_, source := c.input.current()

	return submit(ctx, c.state, func(ctx context.Context) (SpeechView, error) {
		resp, err := c.api.SpeechToText(ctx, apiclient.SpeechToTextRequest{
			Audio:              file,
			Method:             opts.Method,
			Language:           opts.Language,
			TranslateToEnglish: opts.TranslateToEnglish,
			OpenAIAPIKey:       strings.TrimSpace(opts.OpenAIAPIKey),
		})
		if err != nil {
			return SpeechView{}, err
		}
		if !resp.Success {
			return SpeechView{}, &domain.DomainError{Feature: domain.FeatureSpeech, Message: failureText(resp.Error, "speech could not be recognised")}
		}
		return SpeechView{Source: source, Transcript: &resp}, nil
	})
}

func (c *SpeechController) Close() {
	c.input.close()
}

// ASROptions configures one Whisper transcription.
type ASROptions struct {
	Language  string `json:"language"`
	Task      string `json:"task"`
	ModelName string `json:"modelName"`
}

// ASRView is what the ASR panel renders.
type ASRView struct {
	Source *AudioSource           `json:"source,omitempty"`
	Result *apiclient.ASRResponse `json:"result,omitempty"`
}

// ASRController transcribes audio with the backend's Whisper models.
type ASRController struct {
	api   ports.ASRAPI
	state *featureState
	input audioInput
}

func NewASRController(api ports.ASRAPI, recorder *Recorder, events ports.EventSink, logger *slog.Logger) *ASRController {
	return &ASRController{
		api:   api,
		state: newFeatureState(domain.FeatureASR, events, logger),
		input: audioInput{recorder: recorder},
	}
}

func (c *ASRController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

func (c *ASRController) StartRecording(ctx context.Context) error {
	if err := c.input.startRecording(ctx); err != nil {
		return c.state.report(err)
	}
	c.state.clearError()
	return nil
}

func (c *ASRController) StopRecording(ctx context.Context) (ASRView, error) {
	source, err := c.input.stopRecording(ctx)
	if err != nil {
		return ASRView{}, c.state.report(err)
	}
	if source == nil {
		return ASRView{}, nil
	}
	view := ASRView{Source: source}
	c.state.setResult(view)
	return view, nil
}

func (c *ASRController) SelectFile(file apiclient.File) (ASRView, error) {
	source, err := c.input.selectFile(file)
	if err != nil {
		return ASRView{}, c.state.report(err)
	}
	view := ASRView{Source: source}
	c.state.clearError()
	c.state.setResult(view)
	return view, nil
}

// Transcribe sends the current audio to /api/asr/transcribe. Language
// "auto" lets the model detect it.
func (c *ASRController) Transcribe(ctx context.Context, opts ASROptions) (ASRView, error) {
	file, err := c.input.require()
	if err != nil {
		return ASRView{}, c.state.report(err)
	}
	if opts.Task == "" {
		opts.Task = ASRTasks[0]
	}
	if !lo.Contains(ASRTasks, opts.Task) {
		return ASRView{}, c.state.report(domain.Invalid("task", "task must be transcribe or translate"))
	}
	if strings.EqualFold(opts.Language, "auto") {
		opts.Language = ""
	}
	_, source := c.input.current()

	return submit(ctx, c.state, func(ctx context.Context) (ASRView, error) {
		resp, err := c.api.ASRTranscribe(ctx, apiclient.ASRRequest{
			Audio:     file,
			Language:  opts.Language,
			Task:      opts.Task,
			ModelName: opts.ModelName,
		})
		if err != nil {
			return ASRView{}, err
		}
		if !resp.Success {
			return ASRView{}, &domain.DomainError{Feature: domain.FeatureASR, Message: failureText(resp.Error, "the audio could not be transcribed")}
		}
		return ASRView{Source: source, Result: &resp}, nil
	})
}

func (c *ASRController) Close() {
	c.input.close()
}

func failureText(message string, fallback string) string {
	if message = strings.TrimSpace(message); message != "" {
		return message
	}
	return fallback
}
