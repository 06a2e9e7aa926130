package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
	"agentconsole/internal/ports"
)

const (
	minSlides = 1
	maxSlides = 30
)

// LLMSettings is the mode picked in the UI.
type LLMSettings struct {
	UseAPI      bool    `json:"useApi"`
	APIKey      string  `json:"apiKey"`
	ModelName   string  `json:"modelName"`
	MaxLength   int     `json:"maxLength"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Mode converts the settings into the request variant, rejecting API mode
// without a key.
func (s LLMSettings) Mode() (apiclient.LLMMode, error) {
	if !s.UseAPI {
		return apiclient.LocalMode{}, nil
	}
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, domain.Invalid("api_key", "an API key is required in API mode")
	}
	return apiclient.APIMode{APIKey: s.APIKey, ModelName: s.ModelName}, nil
}

// LLMReply is the last chat answer.
type LLMReply struct {
	Response string `json:"response"`
	Model    string `json:"model,omitempty"`
	Device   string `json:"device,omitempty"`
}

// SlideDeck is a generated presentation.
type SlideDeck struct {
	Filename        string          `json:"filename"`
	Title           string          `json:"title"`
	NumSlides       int             `json:"numSlides"`
	NumImages       int             `json:"numImages,omitempty"`
	PresentationURL string          `json:"presentationUrl,omitempty"`
	Slides          json.RawMessage `json:"slides,omitempty"`
	SavedTo         string          `json:"savedTo,omitempty"`
}

// LLMView is what the LLM panel renders.
type LLMView struct {
	Reply *LLMReply  `json:"reply,omitempty"`
	Deck  *SlideDeck `json:"deck,omitempty"`
}

// LLMController chats with the local or hosted model and drafts slide decks.
type LLMController struct {
	api   ports.LLMAPI
	state *featureState

	mu   sync.Mutex
	view LLMView
}

func NewLLMController(api ports.LLMAPI, events ports.EventSink, logger *slog.Logger) *LLMController {
	return &LLMController{api: api, state: newFeatureState(domain.FeatureLLM, events, logger)}
}

func (c *LLMController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

func (c *LLMController) Chat(ctx context.Context, message string, settings LLMSettings) (LLMView, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return c.current(), c.state.report(domain.Invalid("message", "please enter a message"))
	}
	mode, err := settings.Mode()
	if err != nil {
		return c.current(), c.state.report(err)
	}

	return submit(ctx, c.state, func(ctx context.Context) (LLMView, error) {
		resp, err := c.api.LocalLLM(ctx, apiclient.LLMChatRequest{
			Message:     message,
			MaxLength:   settings.MaxLength,
			Temperature: settings.Temperature,
			Mode:        mode,
		})
		if err != nil {
			return LLMView{}, err
		}
		if !resp.Success && resp.Error != "" {
			return LLMView{}, &domain.DomainError{Feature: domain.FeatureLLM, Message: resp.Error}
		}
		reply := &LLMReply{Response: resp.Response, Model: resp.Model, Device: resp.Device}
		return c.replace(func(v *LLMView) { v.Reply = reply }), nil
	})
}

// CreateSlides drafts a deck about topic.
func (c *LLMController) CreateSlides(ctx context.Context, topic string, numSlides int, settings LLMSettings) (LLMView, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return c.current(), c.state.report(domain.Invalid("topic", "please enter a topic"))
	}
	if numSlides == 0 {
		numSlides = 5
	}
	if numSlides < minSlides || numSlides > maxSlides {
		return c.current(), c.state.report(domain.Invalid("num_slides", "number of slides must be between %d and %d", minSlides, maxSlides))
	}
	mode, err := settings.Mode()
	if err != nil {
		return c.current(), c.state.report(err)
	}

	return submit(ctx, c.state, func(ctx context.Context) (LLMView, error) {
		resp, err := c.api.CreateSlides(ctx, apiclient.CreateSlidesRequest{Topic: topic, NumSlides: numSlides, Mode: mode})
		if err != nil {
			return LLMView{}, err
		}
		if !resp.Success {
			return LLMView{}, &domain.DomainError{Feature: domain.FeatureLLM, Message: failureText(resp.Error, "the slides could not be created")}
		}
		deck := &SlideDeck{Filename: resp.Filename, Title: resp.Title, NumSlides: resp.NumSlides, Slides: resp.Slides}
		return c.replace(func(v *LLMView) { v.Deck = deck }), nil
	})
}

// Download saves the last drafted deck into dir.
func (c *LLMController) Download(ctx context.Context, dir string) (LLMView, error) {
	deck := c.current().Deck
	if deck == nil || deck.Filename == "" {
		return c.current(), c.state.report(domain.Invalid("filename", "please create slides first"))
	}
	if dir == "" {
		return c.current(), c.state.report(errNoSaveDir)
	}
	return submit(ctx, c.state, func(ctx context.Context) (LLMView, error) {
		path, err := downloadDeck(ctx, c.api, deck.Filename, dir)
		if err != nil {
			return LLMView{}, err
		}
		saved := *deck
		saved.SavedTo = path
		return c.replace(func(v *LLMView) { v.Deck = &saved }), nil
	})
}

func (c *LLMController) replace(fn func(v *LLMView)) LLMView {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.view)
	return c.view
}

func (c *LLMController) current() LLMView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

var errNoSaveDir = domain.Invalid("directory", "please choose where to save the presentation")

type slideDownloader interface {
	DownloadSlides(ctx context.Context, filename string) ([]byte, string, error)
}

func downloadDeck(ctx context.Context, api slideDownloader, filename string, dir string) (string, error) {
	data, _, err := api.DownloadSlides(ctx, filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save presentation: %w", err)
	}
	return path, nil
}
