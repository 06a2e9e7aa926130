package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/bootstrap"
	"agentconsole/internal/domain"
	"agentconsole/internal/events"
)

const eventStartupError = events.TopicSessionError

// App is the Wails application root.
type App struct {
	ctx context.Context

	bus      *events.Bus
	services *bootstrap.Services
	bootErr  error
}

func NewApp() *App {
	return &App{bus: events.NewBus()}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	if err := a.bus.Forward(a.emit); err != nil {
		a.fail(err)
		return
	}

	services, err := bootstrap.Build(a.bus, &wailsClipboard{})
	if err != nil {
		a.fail(err)
		return
	}

	a.services = services
	a.bus.SessionStateChanged(domain.SessionKindRecording, domain.SessionStateIdle, domain.SessionReasonMicCold)
	services.Logger.Info("console started", "api", services.API.BaseURL())
}

func (a *App) shutdown(_ context.Context) {
	if a.services != nil {
		_ = a.services.Close()
	}
}

func (a *App) fail(err error) {
	a.bootErr = err
	a.emit(eventStartupError, events.SessionErrorPayload{Code: domain.ErrorCodeStartup, Detail: err.Error()})
}

// emit forwards one bus event to the frontend, adding display text to
// session events.
func (a *App) emit(name string, payload any) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, name, decorate(payload))
}

func decorate(payload any) any {
	switch p := payload.(type) {
	case events.SessionStatePayload:
		return map[string]string{
			"kind":    string(p.Kind),
			"state":   string(p.State),
			"reason":  string(p.Reason),
			"message": sessionReasonMessage(p.Reason),
		}
	case events.SessionErrorPayload:
		return map[string]string{
			"code":    string(p.Code),
			"message": errorMessage(p.Code, p.Detail),
			"detail":  p.Detail,
		}
	default:
		return payload
	}
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}
	if a.services == nil {
		return map[string]string{}
	}

	cfg := a.services.Config
	dictation := "unavailable"
	if a.services.Dictation.Available() {
		dictation = "deepgram " + cfg.Deepgram.Model
	}
	return map[string]string{
		"apiUrl":           a.services.API.BaseURL(),
		"dictation":        dictation,
		"audioInput":       cfg.Audio.InputDevice,
		"audioInputFormat": cfg.Audio.InputFormat,
		"searchEngine":     cfg.Defaults.SearchEngine,
		"speechLanguage":   cfg.Defaults.SpeechLanguage,
	}
}

// Health reports which backend integrations are configured.
func (a *App) Health() (apiclient.HealthResponse, error) {
	return with(a, func(s *bootstrap.Services) (apiclient.HealthResponse, error) {
		return s.API.Health(a.ctx)
	})
}

// GetSnapshots returns the current state of every controller.
func (a *App) GetSnapshots() (map[domain.Feature]domain.FeatureSnapshot, error) {
	return with(a, func(s *bootstrap.Services) (map[domain.Feature]domain.FeatureSnapshot, error) {
		out := map[domain.Feature]domain.FeatureSnapshot{}
		for _, snapshot := range []domain.FeatureSnapshot{
			s.Math.Snapshot(), s.WebChat.Snapshot(), s.SmartChat.Snapshot(), s.Search.Snapshot(),
			s.Data.Snapshot(), s.Vision.Snapshot(), s.Speech.Snapshot(), s.ASR.Snapshot(),
			s.Images.Snapshot(), s.Video.Snapshot(), s.LLM.Snapshot(), s.Slides.Snapshot(),
			s.Summary.Snapshot(), s.Translation.Snapshot(), s.Latex.Snapshot(), s.Dictation.Snapshot(),
		} {
			out[snapshot.Feature] = snapshot
		}
		return out, nil
	})
}

// OpenMedia opens a generated image, video or presentation in the browser.
func (a *App) OpenMedia(url string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	runtime.BrowserOpenURL(a.ctx, url)
	return nil
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.services == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// with runs fn once the services are wired.
func with[T any](a *App, fn func(s *bootstrap.Services) (T, error)) (T, error) {
	if err := a.requireReady(); err != nil {
		var zero T
		return zero, err
	}
	return fn(a.services)
}

func sessionReasonMessage(reason domain.SessionStateReason) string {
	switch reason {
	case domain.SessionReasonMicCold:
		return "Mic cold"
	case domain.SessionReasonRecordingStarted:
		return "Recording started"
	case domain.SessionReasonRecordingFinished:
		return "Recording finished"
	case domain.SessionReasonRecordingDiscarded:
		return "Recording discarded"
	case domain.SessionReasonListeningStarted:
		return "Listening..."
	case domain.SessionReasonTranscriptReady:
		return "Transcript ready"
	case domain.SessionReasonTranscriptCancelled:
		return "Listening stopped"
	case domain.SessionReasonNoSpeech:
		return "No speech detected"
	case domain.SessionReasonTranscriptionFailed:
		return "Transcription failed"
	case domain.SessionReasonMicrophoneDenied:
		return "Microphone access denied"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeMicrophone:
		return "Microphone unavailable"
	case domain.ErrorCodeAudioStop:
		return "Audio stop issue"
	case domain.ErrorCodeAudioStream:
		return "Audio streaming issue"
	case domain.ErrorCodeTranscription:
		return "Transcription error"
	case domain.ErrorCodeSpeechUnsupported:
		return "Speech recognition is not supported"
	case domain.ErrorCodeNoSpeech:
		return "No speech detected, please try again"
	case domain.ErrorCodePlayback:
		return "Audio playback failed"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
