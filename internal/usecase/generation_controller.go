package usecase

import (
	"context"
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

const (
	minImageSide       = 256
	maxImageSide       = 2048
	minVideoWait       = 30
	maxVideoWait       = 600
	defaultVideoWait   = 300
	maxReferenceImages = 3
)

// GeneratedImage is the last text-to-image result.
type GeneratedImage struct {
	Prompt   string `json:"prompt"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	ImageURL string `json:"imageUrl"`
	Message  string `json:"message,omitempty"`
}

// ImageController generates images from prompts.
type ImageController struct {
	api   ports.ImageGenerationAPI
	state *featureState
}

func NewImageController(api ports.ImageGenerationAPI, events ports.EventSink, logger *slog.Logger) *ImageController {
	return &ImageController{api: api, state: newFeatureState(domain.FeatureImage, events, logger)}
}

func (c *ImageController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

// Generate renders prompt at width x height. Zero sides default to 1024.
func (c *ImageController) Generate(ctx context.Context, prompt string, width, height int) (GeneratedImage, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return GeneratedImage{}, c.state.report(domain.Invalid("prompt", "please describe the image to generate"))
	}
	if width == 0 {
		width = 1024
	}
	if height == 0 {
		height = 1024
	}
	if width < minImageSide || width > maxImageSide || height < minImageSide || height > maxImageSide {
		return GeneratedImage{}, c.state.report(domain.Invalid("size", "width and height must be between %d and %d", minImageSide, maxImageSide))
	}

	return submit(ctx, c.state, func(ctx context.Context) (GeneratedImage, error) {
		resp, err := c.api.TextToImage(ctx, apiclient.TextToImageRequest{Prompt: prompt, Width: width, Height: height})
		if err != nil {
			return GeneratedImage{}, err
		}
		if resp.ImageURL == "" {
			return GeneratedImage{}, &domain.DomainError{Feature: domain.FeatureImage, Message: failureText(resp.Message, "no image was generated")}
		}
		return GeneratedImage{
			Prompt:   prompt,
			Width:    width,
			Height:   height,
			ImageURL: c.api.MediaURL(resp.ImageURL),
			Message:  resp.Message,
		}, nil
	})
}

// ReferenceImage is an uploaded image usable for video generation.
type ReferenceImage struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Filename string `json:"filename"`
}

// GeneratedVideo is the last video result.
type GeneratedVideo struct {
	Mode           string  `json:"mode"`
	Prompt         string  `json:"prompt,omitempty"`
	VideoURL       string  `json:"videoUrl"`
	ImageURL       string  `json:"imageUrl,omitempty"`
	GenerationTime float64 `json:"generationTime"`
	Model          string  `json:"model,omitempty"`
	Message        string  `json:"message,omitempty"`
}

// VideoView is what the video panel renders.
type VideoView struct {
	References []ReferenceImage `json:"references"`
	Video      *GeneratedVideo  `json:"video,omitempty"`
}

// VideoController generates videos from prompts and reference images.
type VideoController struct {
	api         ports.VideoGenerationAPI
	state       *featureState
	defaultWait int

	mu         sync.Mutex
	references []ReferenceImage
	video      *GeneratedVideo
}

func NewVideoController(api ports.VideoGenerationAPI, defaultWait int, events ports.EventSink, logger *slog.Logger) *VideoController {
	if defaultWait < minVideoWait || defaultWait > maxVideoWait {
		defaultWait = defaultVideoWait
	}
	return &VideoController{
		api:         api,
		state:       newFeatureState(domain.FeatureVideo, events, logger),
		defaultWait: defaultWait,
	}
}

func (c *VideoController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

func (c *VideoController) View() VideoView {
	c.mu.Lock()
	defer c.mu.Unlock()
	refs := make([]ReferenceImage, len(c.references))
	copy(refs, c.references)
	return VideoView{References: refs, Video: c.video}
}

// AddReferenceImages uploads images for the reference and image-to-video
// modes. The batch is rejected whole when any file is not an image or the
// total would exceed three.
func (c *VideoController) AddReferenceImages(ctx context.Context, files []apiclient.File) (VideoView, error) {
	if len(files) == 0 {
		return c.View(), nil
	}
	for _, file := range files {
		if _, err := media.CheckImage("images", file); err != nil {
			return c.View(), c.state.report(err)
		}
	}
	if err := c.checkReferenceRoom(len(files)); err != nil {
		return c.View(), c.state.report(err)
	}

	return submit(ctx, c.state, func(ctx context.Context) (VideoView, error) {
		// Another batch may have landed between the first check and the guard.
		if err := c.checkReferenceRoom(len(files)); err != nil {
			return VideoView{}, err
		}
		uploaded := make([]ReferenceImage, len(files))
		g, gctx := errgroup.WithContext(ctx)
		for i, file := range files {
			i, file := i, file
			g.Go(func() error {
				image, err := uploadImage(gctx, c.api, file, media.ImageInfo{})
				if err != nil {
					return err
				}
				uploaded[i] = ReferenceImage{ID: uuid.NewString(), Name: file.Name, Filename: image.Filename}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return VideoView{}, err
		}

		c.mu.Lock()
		c.references = append(c.references, uploaded...)
		c.mu.Unlock()
		return c.View(), nil
	})
}

func (c *VideoController) checkReferenceRoom(adding int) error {
	c.mu.Lock()
	existing := len(c.references)
	c.mu.Unlock()
	if existing+adding > maxReferenceImages {
		return tooManyReferences(existing)
	}
	return nil
}

func tooManyReferences(existing int) error {
	return domain.Invalid("images", "at most %d reference images (%d already uploaded)", maxReferenceImages, existing)
}

func (c *VideoController) RemoveReferenceImage(id string) VideoView {
	c.mu.Lock()
	c.references = lo.Reject(c.references, func(ref ReferenceImage, _ int) bool { return ref.ID == id })
	c.mu.Unlock()
	view := c.View()
	c.state.setResult(view)
	return view
}

func (c *VideoController) TextToVideo(ctx context.Context, prompt string, maxWait int) (VideoView, error) {
	prompt, maxWait, err := c.checkPrompt(prompt, maxWait)
	if err != nil {
		return c.View(), err
	}
	return c.generate(ctx, "text", prompt, func(ctx context.Context) (apiclient.VideoResponse, error) {
		return c.api.TextToVideo(ctx, apiclient.TextToVideoRequest{Prompt: prompt, MaxWaitTime: maxWait})
	})
}

// PromptToImageToVideo first draws an image from prompt, then animates it.
func (c *VideoController) PromptToImageToVideo(ctx context.Context, prompt string, maxWait int) (VideoView, error) {
	prompt, maxWait, err := c.checkPrompt(prompt, maxWait)
	if err != nil {
		return c.View(), err
	}
	return c.generate(ctx, "prompt_image", prompt, func(ctx context.Context) (apiclient.VideoResponse, error) {
		return c.api.PromptToImageToVideo(ctx, apiclient.TextToVideoRequest{Prompt: prompt, MaxWaitTime: maxWait})
	})
}

// ReferenceImagesToVideo animates prompt guided by every uploaded reference.
func (c *VideoController) ReferenceImagesToVideo(ctx context.Context, prompt string, maxWait int) (VideoView, error) {
	refs := c.View().References
	if len(refs) == 0 {
		return c.View(), c.state.report(domain.Invalid("images", "please upload at least one reference image"))
	}
	prompt, maxWait, err := c.checkPrompt(prompt, maxWait)
	if err != nil {
		return c.View(), err
	}
	filenames := lo.Map(refs, func(ref ReferenceImage, _ int) string { return ref.Filename })
	return c.generate(ctx, "reference", prompt, func(ctx context.Context) (apiclient.VideoResponse, error) {
		return c.api.ReferenceImagesToVideo(ctx, apiclient.ReferenceImagesToVideoRequest{
			ImageFilenames: filenames,
			Prompt:         prompt,
			MaxWaitTime:    maxWait,
		})
	})
}

// ImageToVideo animates one uploaded reference image. The prompt is optional.
func (c *VideoController) ImageToVideo(ctx context.Context, referenceID string, prompt string, maxWait int) (VideoView, error) {
	ref, ok := lo.Find(c.View().References, func(ref ReferenceImage) bool { return ref.ID == referenceID })
	if !ok {
		return c.View(), c.state.report(domain.Invalid("image", "please upload the image to animate first"))
	}
	maxWait, err := c.checkWait(maxWait)
	if err != nil {
		return c.View(), err
	}
	prompt = strings.TrimSpace(prompt)
	return c.generate(ctx, "image", prompt, func(ctx context.Context) (apiclient.VideoResponse, error) {
		return c.api.ImageToVideo(ctx, apiclient.ImageToVideoRequest{
			ImageFilename: ref.Filename,
			Prompt:        prompt,
			MaxWaitTime:   maxWait,
		})
	})
}

func (c *VideoController) checkPrompt(prompt string, maxWait int) (string, int, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", 0, c.state.report(domain.Invalid("prompt", "please describe the video to generate"))
	}
	maxWait, err := c.checkWait(maxWait)
	return prompt, maxWait, err
}

func (c *VideoController) checkWait(maxWait int) (int, error) {
	if maxWait == 0 {
		return c.defaultWait, nil
	}
	if maxWait < minVideoWait || maxWait > maxVideoWait {
		return 0, c.state.report(domain.Invalid("max_wait_time", "max wait must be between %d and %d seconds", minVideoWait, maxVideoWait))
	}
	return maxWait, nil
}

func (c *VideoController) generate(
	ctx context.Context,
	mode string,
	prompt string,
	call func(context.Context) (apiclient.VideoResponse, error),
) (VideoView, error) {
	return submit(ctx, c.state, func(ctx context.Context) (VideoView, error) {
		resp, err := call(ctx)
		if err != nil {
			return VideoView{}, err
		}
		if resp.VideoURL == "" {
			return VideoView{}, &domain.DomainError{Feature: domain.FeatureVideo, Message: failureText(resp.Message, "no video was generated")}
		}
		video := &GeneratedVideo{
			Mode:           mode,
			Prompt:         prompt,
			VideoURL:       c.api.MediaURL(resp.VideoURL),
			GenerationTime: resp.GenerationTime,
			Model:          resp.Model,
			Message:        resp.Message,
		}
		if resp.ImageURL != "" {
			video.ImageURL = c.api.MediaURL(resp.ImageURL)
		}
		c.mu.Lock()
		c.video = video
		c.mu.Unlock()
		return c.View(), nil
	})
}
