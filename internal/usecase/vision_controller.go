package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
	"agentconsole/internal/media"
	"agentconsole/internal/ports"
)

// VisionActions are the analyses /vision supports.
var VisionActions = []string{
	apiclient.VisionVQA,
	apiclient.VisionOCREasyOCR,
	apiclient.VisionOCRDeepSeek,
	apiclient.VisionOCRPaddle,
}

// VisionView is what the vision panel renders.
type VisionView struct {
	Image  *UploadedImage          `json:"image,omitempty"`
	Action string                  `json:"action,omitempty"`
	Result *apiclient.VisionResult `json:"result,omitempty"`
}

// VisionController answers questions about, or reads text from, one image.
type VisionController struct {
	api   ports.VisionAPI
	state *featureState
	slot  uploadSlot
}

func NewVisionController(api ports.VisionAPI, events ports.EventSink, logger *slog.Logger) *VisionController {
	return &VisionController{
		api:   api,
		state: newFeatureState(domain.FeatureVision, events, logger),
	}
}

func (c *VisionController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

// UploadImage replaces the controller's image and clears the last result.
func (c *VisionController) UploadImage(ctx context.Context, file apiclient.File) (VisionView, error) {
	info, err := media.CheckImage("image", file)
	if err != nil {
		return VisionView{Image: c.slot.get()}, c.state.report(err)
	}
	return submit(ctx, c.state, func(ctx context.Context) (VisionView, error) {
		image, err := uploadImage(ctx, c.api, file, info)
		if err != nil {
			return VisionView{}, err
		}
		c.slot.set(image)
		return VisionView{Image: image}, nil
	})
}

// Analyze runs action on the uploaded image. VQA needs a question.
func (c *VisionController) Analyze(ctx context.Context, action string, question string) (VisionView, error) {
	image := c.slot.get()
	if image == nil {
		return VisionView{}, c.state.report(domain.Invalid("image", "please upload an image first"))
	}
	if !lo.Contains(VisionActions, action) {
		return VisionView{Image: image}, c.state.report(domain.Invalid("action", "unsupported vision action %q", action))
	}
	question = strings.TrimSpace(question)
	if action == apiclient.VisionVQA && question == "" {
		return VisionView{Image: image}, c.state.report(domain.Invalid("question", "please enter a question about the image"))
	}
	if action != apiclient.VisionVQA {
		question = ""
	}

	return submit(ctx, c.state, func(ctx context.Context) (VisionView, error) {
		resp, err := c.api.Vision(ctx, apiclient.VisionRequest{
			Action:        action,
			ImageFilename: image.Filename,
			Question:      question,
		})
		if err != nil {
			return VisionView{}, err
		}
		if resp.Result.Failed() {
			message := resp.Result.Error
			if message == "" {
				message = "the image could not be analysed"
			}
			return VisionView{}, &domain.DomainError{Feature: domain.FeatureVision, Message: message}
		}
		result := resp.Result
		return VisionView{Image: image, Action: action, Result: &result}, nil
	})
}
