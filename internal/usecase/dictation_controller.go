package usecase

import (
	"context"
	"errors"
	"log/slog"

	"agentconsole/internal/domain"
	"agentconsole/internal/ports"
)

// Dictation is the text a dictation session produced.
type Dictation struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Locale   string `json:"locale"`
}

// DictationController fills a text box from one live transcript session.
// It is busy while listening.
type DictationController struct {
	transcriber *Transcriber
	state       *featureState
}

func NewDictationController(transcriber *Transcriber, events ports.EventSink, logger *slog.Logger) *DictationController {
	return &DictationController{
		transcriber: transcriber,
		state:       newFeatureState(domain.FeatureDictation, events, logger),
	}
}

func (c *DictationController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

// Available reports whether speech recognition can be used at all.
func (c *DictationController) Available() bool {
	return c.transcriber.Available() == nil
}

// Start begins listening. The outcome is published when it arrives.
func (c *DictationController) Start(ctx context.Context, language string) error {
	if err := c.transcriber.Available(); err != nil {
		return c.state.report(err)
	}
	if err := c.state.begin(); err != nil {
		return err
	}

	outcomes, err := c.transcriber.Start(ctx, language)
	if err != nil {
		c.state.end(nil, err)
		return err
	}

	go c.await(outcomes, language)
	return nil
}

func (c *DictationController) await(outcomes <-chan domain.TranscriptOutcome, language string) {
	outcome, ok := <-outcomes
	if !ok {
		c.state.release()
		return
	}
	c.apply(outcome, language)
}

func (c *DictationController) apply(outcome domain.TranscriptOutcome, language string) {
	switch outcome.Kind {
	case domain.TranscriptOutcomeResult:
		c.state.end(Dictation{Text: outcome.Text, Language: language, Locale: Locale(language)}, nil)
	case domain.TranscriptOutcomeEnded:
		c.state.release()
	default:
		c.state.end(nil, outcomeError(outcome))
	}
}

// Stop ends listening and returns the outcome it produced.
func (c *DictationController) Stop(ctx context.Context) (domain.TranscriptOutcome, error) {
	outcome, err := c.transcriber.Stop(ctx)
	if errors.Is(err, ErrNoActiveSession) {
		return domain.TranscriptOutcome{}, nil
	}
	return outcome, err
}

func (c *DictationController) Close() {
	c.transcriber.Close()
}

func outcomeError(outcome domain.TranscriptOutcome) error {
	if errors.Is(outcome.Err, ErrNoSpeech) {
		return ErrNoSpeech
	}
	return &domain.CaptureError{Code: domain.ErrorCodeTranscription, Message: outcome.Message}
}
