package apiclient

import (
	"context"
	"strings"
)

// LLMMode selects where language-model requests run. It is either LocalMode
// or APIMode; the flat use_api/api_key/model_name fields only exist on the wire.
type LLMMode interface {
	wire() llmWire
}

// LocalMode runs the model on the backend host.
type LocalMode struct{}

// APIMode proxies the request to a hosted model using the caller's key.
type APIMode struct {
	APIKey    string
	ModelName string
}

// DefaultAPIModel is sent when APIMode has no model name.
const DefaultAPIModel = "gemini-1.5-flash"

// DefaultTemperature is sent when a chat request leaves Temperature unset.
const DefaultTemperature = 0.7

type llmWire struct {
	UseAPI    bool   `json:"use_api"`
	APIKey    string `json:"api_key,omitempty"`
	ModelName string `json:"model_name,omitempty"`
}

func (LocalMode) wire() llmWire {
	return llmWire{}
}

func (m APIMode) wire() llmWire {
	model := strings.TrimSpace(m.ModelName)
	if model == "" {
		model = DefaultAPIModel
	}
	return llmWire{UseAPI: true, APIKey: strings.TrimSpace(m.APIKey), ModelName: model}
}

func modeWire(mode LLMMode) llmWire {
	if mode == nil {
		return LocalMode{}.wire()
	}
	return mode.wire()
}

// LocalLLM posts to /local-llm.
func (c *Client) LocalLLM(ctx context.Context, req LLMChatRequest) (LLMChatResponse, error) {
	if req.MaxLength <= 0 {
		req.MaxLength = 512
	}
	temperature := DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	payload := struct {
		Message     string  `json:"message"`
		MaxLength   int     `json:"max_length"`
		Temperature float64 `json:"temperature"`
		llmWire
	}{
		Message:     req.Message,
		MaxLength:   req.MaxLength,
		Temperature: temperature,
		llmWire:     modeWire(req.Mode),
	}

	var out LLMChatResponse
	err := c.postJSON(ctx, "/local-llm", payload, &out)
	return out, err
}

// CreateSlides posts to /create-slides.
func (c *Client) CreateSlides(ctx context.Context, req CreateSlidesRequest) (CreateSlidesResponse, error) {
	if req.NumSlides <= 0 {
		req.NumSlides = 5
	}
	payload := struct {
		Topic     string `json:"topic"`
		NumSlides int    `json:"num_slides"`
		llmWire
	}{
		Topic:     req.Topic,
		NumSlides: req.NumSlides,
		llmWire:   modeWire(req.Mode),
	}

	var out CreateSlidesResponse
	err := c.postJSON(ctx, "/create-slides", payload, &out)
	return out, err
}
