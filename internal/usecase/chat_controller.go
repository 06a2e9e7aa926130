package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
	"agentconsole/internal/mathresult"
	"agentconsole/internal/ports"
)

type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleAgent ChatRole = "agent"
)

// ChatMessage is one immutable history entry.
type ChatMessage struct {
	ID              string             `json:"id"`
	Role            ChatRole           `json:"role"`
	Text            string             `json:"text"`
	Math            *mathresult.Result `json:"math,omitempty"`
	Notice          string             `json:"notice,omitempty"`
	Images          []string           `json:"images,omitempty"`
	SearchPerformed bool               `json:"searchPerformed,omitempty"`
	SearchEngine    string             `json:"searchEngine,omitempty"`
	Failed          bool               `json:"failed,omitempty"`
	At              time.Time          `json:"at"`
}

func newChatMessage(role ChatRole, text string) ChatMessage {
	return ChatMessage{ID: uuid.NewString(), Role: role, Text: text, At: time.Now()}
}

func errorEntry(err error) ChatMessage {
	_, message := describeError(err)
	entry := newChatMessage(ChatRoleAgent, message)
	entry.Failed = true
	return entry
}

// chatHistory only ever appends.
type chatHistory struct {
	mu       sync.Mutex
	messages []ChatMessage
}

func (h *chatHistory) append(entries ...ChatMessage) []ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, entries...)
	return h.copyLocked()
}

func (h *chatHistory) snapshot() []ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.copyLocked()
}

func (h *chatHistory) copyLocked() []ChatMessage {
	out := make([]ChatMessage, len(h.messages))
	copy(out, h.messages)
	return out
}

// ChatController drives the math and web-search chats over /chat.
type ChatController struct {
	api     ports.ChatAPI
	state   *featureState
	history chatHistory

	engineMu sync.Mutex
	engine   string
}

func NewChatController(api ports.ChatAPI, feature domain.Feature, searchEngine string, events ports.EventSink, logger *slog.Logger) *ChatController {
	if searchEngine == "" {
		searchEngine = apiclient.SearchEngineDuckDuckGo
	}
	return &ChatController{
		api:    api,
		state:  newFeatureState(feature, events, logger),
		engine: searchEngine,
	}
}

func (c *ChatController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

func (c *ChatController) History() []ChatMessage {
	return c.history.snapshot()
}

// SetSearchEngine picks the engine for later messages.
func (c *ChatController) SetSearchEngine(engine string) error {
	switch engine {
	case apiclient.SearchEngineDuckDuckGo, apiclient.SearchEngineGoogle, apiclient.SearchEngineSerpAPI:
	default:
		return c.state.report(domain.Invalid("search_engine", "unsupported search engine %q", engine))
	}
	c.engineMu.Lock()
	c.engine = engine
	c.engineMu.Unlock()
	return nil
}

func (c *ChatController) searchEngine() string {
	c.engineMu.Lock()
	defer c.engineMu.Unlock()
	return c.engine
}

// Send appends the user message and the agent's reply to the history.
// A failed request appends an error entry instead of a reply.
func (c *ChatController) Send(ctx context.Context, text string) ([]ChatMessage, error) {
	return c.exchange(ctx, text, func(ctx context.Context, message string) (ChatMessage, error) {
		resp, err := c.api.Chat(ctx, apiclient.ChatRequest{
			Message:      message,
			Feature:      string(c.state.feature),
			SearchEngine: c.searchEngine(),
		})
		if err != nil {
			return ChatMessage{}, err
		}
		if c.state.feature == domain.FeatureMath {
			return mathReply(mathresult.Normalize(resp.Response)), nil
		}
		return newChatMessage(ChatRoleAgent, apiclient.TextOf(resp.Response)), nil
	})
}

// Compute sends the query to the dedicated /math endpoint.
func (c *ChatController) Compute(ctx context.Context, query string) ([]ChatMessage, error) {
	return c.exchange(ctx, query, func(ctx context.Context, message string) (ChatMessage, error) {
		resp, err := c.api.Math(ctx, message)
		if err != nil {
			return ChatMessage{}, err
		}
		return mathReply(mathresult.FromMath(resp)), nil
	})
}

func (c *ChatController) exchange(
	ctx context.Context,
	text string,
	ask func(ctx context.Context, message string) (ChatMessage, error),
) ([]ChatMessage, error) {
	message := strings.TrimSpace(text)
	if message == "" {
		return nil, c.state.report(domain.Invalid("message", "please enter a message"))
	}
	if err := c.state.begin(); err != nil {
		return nil, err
	}

	c.state.setResult(c.history.append(newChatMessage(ChatRoleUser, message)))

	reply, err := ask(ctx, message)
	if err != nil {
		c.state.failWith(c.history.append(errorEntry(err)), err)
		return nil, err
	}

	history := c.history.append(reply)
	c.state.end(history, nil)
	return history, nil
}

func mathReply(result mathresult.Result) ChatMessage {
	reply := newChatMessage(ChatRoleAgent, result.Summary())
	reply.Math = &result
	reply.Notice = result.Notice()
	return reply
}
