package usecase

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
	"agentconsole/internal/ports"
)

const minSummaryChars = 50

// SummaryController condenses long text.
type SummaryController struct {
	api   ports.SummaryAPI
	state *featureState
}

func NewSummaryController(api ports.SummaryAPI, events ports.EventSink, logger *slog.Logger) *SummaryController {
	return &SummaryController{api: api, state: newFeatureState(domain.FeatureSummary, events, logger)}
}

func (c *SummaryController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

// Summarize needs at least 50 characters. Zero lengths use 130/30.
func (c *SummaryController) Summarize(ctx context.Context, text string, maxLength, minLength int) (apiclient.SummarizeResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return apiclient.SummarizeResponse{}, c.state.report(domain.Invalid("text", "please enter text to summarize"))
	}
	if utf8.RuneCountInString(text) < minSummaryChars {
		return apiclient.SummarizeResponse{}, c.state.report(domain.Invalid("text", "text is too short, please provide at least %d characters", minSummaryChars))
	}
	if maxLength > 0 && minLength > maxLength {
		return apiclient.SummarizeResponse{}, c.state.report(domain.Invalid("min_length", "minimum length cannot exceed maximum length"))
	}

	return submit(ctx, c.state, func(ctx context.Context) (apiclient.SummarizeResponse, error) {
		resp, err := c.api.Summarize(ctx, apiclient.SummarizeRequest{Text: text, MaxLength: maxLength, MinLength: minLength})
		if err != nil {
			return apiclient.SummarizeResponse{}, err
		}
		if resp.Summary == "" {
			return apiclient.SummarizeResponse{}, &domain.DomainError{Feature: domain.FeatureSummary, Message: "no summary was produced"}
		}
		return resp, nil
	})
}

// Language is one entry of the translation catalogue.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Translation is the last translation result.
type Translation struct {
	Text           string    `json:"text"`
	TranslatedText string    `json:"translatedText"`
	Source         string    `json:"source"`
	Target         string    `json:"target"`
	Detected       *Language `json:"detected,omitempty"`
	Pronunciation  string    `json:"pronunciation,omitempty"`
	Confidence     float64   `json:"confidence,omitempty"`
}

// TranslationController translates text and reads or copies the result.
type TranslationController struct {
	api       ports.TranslationAPI
	clipboard ports.Clipboard
	speaker   *Speaker
	state     *featureState
	target    string

	langMu    sync.Mutex
	languages []Language

	mu   sync.Mutex
	last *Translation
}

func NewTranslationController(api ports.TranslationAPI, clipboard ports.Clipboard, speaker *Speaker, target string, events ports.EventSink, logger *slog.Logger) *TranslationController {
	if target == "" {
		target = "en"
	}
	return &TranslationController{
		api:       api,
		clipboard: clipboard,
		speaker:   speaker,
		state:     newFeatureState(domain.FeatureTranslation, events, logger),
		target:    target,
	}
}

func (c *TranslationController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

// Languages returns the catalogue sorted by name. It is fetched once.
func (c *TranslationController) Languages(ctx context.Context) ([]Language, error) {
	c.langMu.Lock()
	defer c.langMu.Unlock()
	if c.languages != nil {
		return c.languages, nil
	}

	resp, err := c.api.TranslationLanguages(ctx)
	if err != nil {
		return nil, c.state.report(err)
	}
	languages := make([]Language, 0, len(resp.Languages))
	for code, name := range resp.Languages {
		languages = append(languages, Language{Code: code, Name: name})
	}
	sort.Slice(languages, func(i, j int) bool { return languages[i].Name < languages[j].Name })
	c.languages = languages
	return languages, nil
}

// Translate renders text in target. An empty source means auto-detect.
func (c *TranslationController) Translate(ctx context.Context, text, source, target string) (Translation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Translation{}, c.state.report(domain.Invalid("text", "please enter text to translate"))
	}
	if source == "" {
		source = "auto"
	}
	if target == "" {
		target = c.target
	}
	if target == "auto" {
		return Translation{}, c.state.report(domain.Invalid("target_lang", "please choose a target language"))
	}

	return submit(ctx, c.state, func(ctx context.Context) (Translation, error) {
		resp, err := c.api.Translate(ctx, apiclient.TranslateRequest{Text: text, SourceLang: source, TargetLang: target})
		if err != nil {
			return Translation{}, err
		}
		result := Translation{
			Text:           text,
			TranslatedText: resp.TranslatedText,
			Source:         source,
			Target:         target,
			Pronunciation:  resp.Pronunciation,
			Confidence:     resp.Confidence,
		}
		if source == "auto" && resp.SourceLanguage.Code != "" {
			result.Detected = &Language{Code: resp.SourceLanguage.Code, Name: resp.SourceLanguage.Name}
		}
		c.mu.Lock()
		c.last = &result
		c.mu.Unlock()
		return result, nil
	})
}

func (c *TranslationController) lastTranslation() *Translation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Copy puts the last translation on the clipboard.
func (c *TranslationController) Copy(ctx context.Context) error {
	last := c.lastTranslation()
	if last == nil || last.TranslatedText == "" {
		return c.state.report(domain.Invalid("text", "nothing to copy yet"))
	}
	return copyText(ctx, c.state, c.clipboard, last.TranslatedText)
}

// Speak reads the last translation aloud in the target language.
func (c *TranslationController) Speak(ctx context.Context) (SpokenAudio, error) {
	last := c.lastTranslation()
	if last == nil {
		return SpokenAudio{}, c.state.report(domain.Invalid("text", "nothing to read aloud yet"))
	}
	return speak(ctx, c.state, c.api, c.speaker, last.TranslatedText, last.Target)
}
