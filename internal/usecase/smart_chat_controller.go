package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
	"agentconsole/internal/media"
	"agentconsole/internal/ports"
)

// DefaultMaxChatImages caps the images attached to one smart-chat turn.
const DefaultMaxChatImages = 5

// PendingImage is an image picked for the next smart-chat turn.
type PendingImage struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Info media.ImageInfo `json:"info"`
	file apiclient.File
}

// SmartChatView is what the smart-chat panel renders.
type SmartChatView struct {
	Messages     []ChatMessage  `json:"messages"`
	Pending      []PendingImage `json:"pending"`
	SearchEngine string         `json:"searchEngine"`
	Speaking     bool           `json:"speaking"`
}

// SmartChatController chats with optional web search and image context.
type SmartChatController struct {
	api       ports.SmartChatAPI
	speaker   *Speaker
	state     *featureState
	history   chatHistory
	maxImages int
	ttsLang   string

	mu      sync.Mutex
	pending []PendingImage
	engine  string
}

type SmartChatOptions struct {
	SearchEngine string
	MaxImages    int
	TTSLanguage  string
}

func NewSmartChatController(api ports.SmartChatAPI, speaker *Speaker, events ports.EventSink, logger *slog.Logger, opts SmartChatOptions) *SmartChatController {
	if opts.SearchEngine == "" {
		opts.SearchEngine = apiclient.SearchEngineGoogle
	}
	if opts.MaxImages <= 0 {
		opts.MaxImages = DefaultMaxChatImages
	}
	if opts.TTSLanguage == "" {
		opts.TTSLanguage = "vi"
	}
	return &SmartChatController{
		api:       api,
		speaker:   speaker,
		state:     newFeatureState(domain.FeatureSmartChat, events, logger),
		maxImages: opts.MaxImages,
		ttsLang:   opts.TTSLanguage,
		engine:    opts.SearchEngine,
	}
}

func (c *SmartChatController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

func (c *SmartChatController) View() SmartChatView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked(c.history.snapshot())
}

func (c *SmartChatController) viewLocked(messages []ChatMessage) SmartChatView {
	pending := make([]PendingImage, len(c.pending))
	copy(pending, c.pending)
	return SmartChatView{
		Messages:     messages,
		Pending:      pending,
		SearchEngine: c.engine,
		Speaking:     c.speaker != nil && c.speaker.Playing(),
	}
}

func (c *SmartChatController) publish() SmartChatView {
	view := c.View()
	c.state.setResult(view)
	return view
}

func (c *SmartChatController) SetSearchEngine(engine string) error {
	switch engine {
	case apiclient.SearchEngineDuckDuckGo, apiclient.SearchEngineGoogle, apiclient.SearchEngineSerpAPI:
	default:
		return c.state.report(domain.Invalid("search_engine", "unsupported search engine %q", engine))
	}
	c.mu.Lock()
	c.engine = engine
	c.mu.Unlock()
	c.publish()
	return nil
}

// AddImages validates and queues images for the next turn. The whole batch
// is rejected when one file is not an image or the turn would exceed the cap.
func (c *SmartChatController) AddImages(files []apiclient.File) (SmartChatView, error) {
	if len(files) == 0 {
		return c.View(), nil
	}

	batch := make([]PendingImage, 0, len(files))
	for _, file := range files {
		info, err := media.CheckImage("images", file)
		if err != nil {
			return c.View(), c.state.report(err)
		}
		batch = append(batch, PendingImage{ID: uuid.NewString(), Name: file.Name, Info: info, file: file})
	}

	c.mu.Lock()
	if len(c.pending)+len(batch) > c.maxImages {
		selected := len(c.pending)
		c.mu.Unlock()
		return c.View(), c.state.report(domain.Invalid("images",
			"at most %d images per message (%d already selected)", c.maxImages, selected))
	}
	c.pending = append(c.pending, batch...)
	c.mu.Unlock()

	c.state.clearError()
	return c.publish(), nil
}

func (c *SmartChatController) RemoveImage(id string) SmartChatView {
	c.mu.Lock()
	c.pending = lo.Reject(c.pending, func(img PendingImage, _ int) bool { return img.ID == id })
	c.mu.Unlock()
	return c.publish()
}

// Send uploads the pending images, then asks /smart-chat. Images stay
// queued when the turn fails so it can be retried.
func (c *SmartChatController) Send(ctx context.Context, text string) (SmartChatView, error) {
	message := strings.TrimSpace(text)
	if message == "" {
		return c.View(), c.state.report(domain.Invalid("message", "please enter a message"))
	}
	if err := c.state.begin(); err != nil {
		return c.View(), err
	}

	c.mu.Lock()
	pending := make([]PendingImage, len(c.pending))
	copy(pending, c.pending)
	engine := c.engine
	c.mu.Unlock()

	user := newChatMessage(ChatRoleUser, message)
	user.Images = lo.Map(pending, func(img PendingImage, _ int) string { return img.Name })
	c.history.append(user)
	c.state.setResult(c.View())

	reply, err := c.ask(ctx, message, engine, pending)
	if err != nil {
		c.history.append(errorEntry(err))
		view := c.View()
		c.state.failWith(view, err)
		return view, err
	}

	c.mu.Lock()
	c.pending = lo.Reject(c.pending, func(img PendingImage, _ int) bool {
		return lo.ContainsBy(pending, func(sent PendingImage) bool { return sent.ID == img.ID })
	})
	c.mu.Unlock()

	c.history.append(reply)
	view := c.View()
	c.state.end(view, nil)
	return view, nil
}

func (c *SmartChatController) ask(ctx context.Context, message string, engine string, pending []PendingImage) (ChatMessage, error) {
	filenames, err := c.upload(ctx, pending)
	if err != nil {
		return ChatMessage{}, err
	}

	resp, err := c.api.SmartChat(ctx, apiclient.SmartChatRequest{
		Message:        message,
		SearchEngine:   engine,
		ImageFilenames: filenames,
	})
	if err != nil {
		return ChatMessage{}, err
	}

	reply := newChatMessage(ChatRoleAgent, resp.Response)
	reply.SearchPerformed = resp.SearchPerformed
	reply.SearchEngine = resp.SearchEngine
	return reply, nil
}

// upload sends images concurrently and keeps the selection order.
func (c *SmartChatController) upload(ctx context.Context, pending []PendingImage) ([]string, error) {
	filenames := make([]string, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range pending {
		i, img := i, img
		g.Go(func() error {
			resp, err := c.api.UploadImage(gctx, img.file)
			if err != nil {
				return err
			}
			if resp.Filename == "" {
				return fmt.Errorf("upload of %s returned no filename", img.Name)
			}
			filenames[i] = resp.Filename
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filenames, nil
}

// Speak reads text aloud, stopping anything this controller is playing.
func (c *SmartChatController) Speak(ctx context.Context, text string) (SpokenAudio, error) {
	return speak(ctx, c.state, c.api, c.speaker, text, c.ttsLang)
}

func (c *SmartChatController) StopSpeaking() error {
	if c.speaker == nil {
		return nil
	}
	return c.speaker.Stop()
}

// speak runs text-to-speech outside the busy guard so replies can be read
// while a request is in flight.
func speak(ctx context.Context, state *featureState, api ports.SpeechSynthesisAPI, speaker *Speaker, text string, lang string) (SpokenAudio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return SpokenAudio{}, state.report(domain.Invalid("text", "nothing to read aloud"))
	}
	if speaker == nil {
		return SpokenAudio{}, state.report(&domain.CaptureError{Code: domain.ErrorCodePlayback, Message: "audio playback is not available"})
	}
	clip, err := api.TextToSpeech(ctx, apiclient.TTSRequest{Text: text, Lang: lang})
	if err != nil {
		return SpokenAudio{}, state.report(err)
	}
	spoken, err := speaker.Play(ctx, clip)
	if err != nil {
		return SpokenAudio{}, state.report(err)
	}
	return spoken, nil
}
