package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
	"agentconsole/internal/media"
	"agentconsole/internal/ports"
)

// SourceDocument is a file queued for slide generation.
type SourceDocument struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int    `json:"size"`
	file apiclient.File
}

// SlidesView is what the slide-generation panel renders.
type SlidesView struct {
	Documents []SourceDocument `json:"documents"`
	Deck      *SlideDeck       `json:"deck,omitempty"`
}

// SlidesController builds a presentation from uploaded documents.
type SlidesController struct {
	api   ports.SlidesAPI
	state *featureState

	mu   sync.Mutex
	docs []SourceDocument
	deck *SlideDeck
}

func NewSlidesController(api ports.SlidesAPI, events ports.EventSink, logger *slog.Logger) *SlidesController {
	return &SlidesController{api: api, state: newFeatureState(domain.FeatureSlides, events, logger)}
}

func (c *SlidesController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

func (c *SlidesController) View() SlidesView {
	c.mu.Lock()
	defer c.mu.Unlock()
	docs := make([]SourceDocument, len(c.docs))
	copy(docs, c.docs)
	return SlidesView{Documents: docs, Deck: c.deck}
}

// AddDocuments queues files. Unsupported files reject the whole batch.
func (c *SlidesController) AddDocuments(files []apiclient.File) (SlidesView, error) {
	batch := make([]SourceDocument, 0, len(files))
	for _, file := range files {
		if err := media.CheckDocument("files", file); err != nil {
			return c.View(), c.state.report(err)
		}
		batch = append(batch, SourceDocument{ID: uuid.NewString(), Name: file.Name, Size: len(file.Data), file: file})
	}

	c.mu.Lock()
	c.docs = append(c.docs, batch...)
	c.mu.Unlock()

	view := c.View()
	c.state.clearError()
	c.state.setResult(view)
	return view, nil
}

func (c *SlidesController) RemoveDocument(id string) SlidesView {
	c.mu.Lock()
	c.docs = lo.Reject(c.docs, func(doc SourceDocument, _ int) bool { return doc.ID == id })
	c.mu.Unlock()
	view := c.View()
	c.state.setResult(view)
	return view
}

// Generate sends every queued document to the backend.
func (c *SlidesController) Generate(ctx context.Context, numSlides int) (SlidesView, error) {
	docs := c.View().Documents
	if len(docs) == 0 {
		return c.View(), c.state.report(domain.Invalid("files", "please add at least one document"))
	}
	if numSlides == 0 {
		numSlides = 10
	}
	if numSlides < minSlides || numSlides > maxSlides {
		return c.View(), c.state.report(domain.Invalid("num_slides", "number of slides must be between %d and %d", minSlides, maxSlides))
	}

	return submit(ctx, c.state, func(ctx context.Context) (SlidesView, error) {
		resp, err := c.api.GenerateSlidesFromDocuments(ctx, apiclient.SlideDocumentsRequest{
			Files:     lo.Map(docs, func(doc SourceDocument, _ int) apiclient.File { return doc.file }),
			NumSlides: numSlides,
		})
		if err != nil {
			return SlidesView{}, err
		}
		if !resp.Success {
			return SlidesView{}, &domain.DomainError{Feature: domain.FeatureSlides, Message: failureText(resp.Error, "the presentation could not be generated")}
		}
		deck := &SlideDeck{
			Filename:  resp.Filename,
			Title:     resp.Title,
			NumSlides: resp.NumSlides,
			NumImages: resp.NumImages,
		}
		if resp.PresentationURL != "" {
			deck.PresentationURL = c.api.MediaURL(resp.PresentationURL)
		}
		c.mu.Lock()
		c.deck = deck
		c.mu.Unlock()
		return c.View(), nil
	})
}

// Download saves the generated presentation into dir.
func (c *SlidesController) Download(ctx context.Context, dir string) (SlidesView, error) {
	deck := c.View().Deck
	if deck == nil || deck.Filename == "" {
		return c.View(), c.state.report(domain.Invalid("filename", "please generate a presentation first"))
	}
	if dir == "" {
		return c.View(), c.state.report(errNoSaveDir)
	}
	return submit(ctx, c.state, func(ctx context.Context) (SlidesView, error) {
		path, err := downloadDeck(ctx, c.api, deck.Filename, dir)
		if err != nil {
			return SlidesView{}, err
		}
		saved := *deck
		saved.SavedTo = path
		c.mu.Lock()
		c.deck = &saved
		c.mu.Unlock()
		return c.View(), nil
	})
}
