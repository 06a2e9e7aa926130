package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
	"agentconsole/internal/media"
	"agentconsole/internal/ports"
)

type LatexServiceStatus string

const (
	LatexServiceUnknown  LatexServiceStatus = "unknown"
	LatexServiceRunning  LatexServiceStatus = "running"
	LatexServiceStopped  LatexServiceStatus = "stopped"
	LatexServiceStarting LatexServiceStatus = "starting"
	LatexServiceStopping LatexServiceStatus = "stopping"
)

// LatexView is what the LaTeX OCR panel renders.
type LatexView struct {
	Service   LatexServiceStatus `json:"service"`
	Image     *UploadedImage     `json:"image,omitempty"`
	LatexCode string             `json:"latexCode,omitempty"`
}

// LatexController converts formula images to LaTeX and manages the OCR
// service lifecycle.
type LatexController struct {
	api       ports.LatexAPI
	clipboard ports.Clipboard
	state     *featureState
	slot      uploadSlot

	mu      sync.Mutex
	service LatexServiceStatus
	code    string
}

func NewLatexController(api ports.LatexAPI, clipboard ports.Clipboard, events ports.EventSink, logger *slog.Logger) *LatexController {
	return &LatexController{
		api:       api,
		clipboard: clipboard,
		state:     newFeatureState(domain.FeatureLatex, events, logger),
		service:   LatexServiceUnknown,
	}
}

func (c *LatexController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

func (c *LatexController) view() LatexView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return LatexView{Service: c.service, Image: c.slot.get(), LatexCode: c.code}
}

func (c *LatexController) setService(status LatexServiceStatus) {
	c.mu.Lock()
	c.service = status
	c.mu.Unlock()
}

// CheckHealth asks whether the OCR container is ready.
func (c *LatexController) CheckHealth(ctx context.Context) (LatexView, error) {
	return submit(ctx, c.state, func(ctx context.Context) (LatexView, error) {
		resp, err := c.api.LatexOCR(ctx, apiclient.LatexRequest{Action: apiclient.LatexActionHealthCheck})
		if err != nil {
			c.setService(LatexServiceStopped)
			return LatexView{}, err
		}
		if resp.Health != nil && resp.Health.Ready {
			c.setService(LatexServiceRunning)
		} else {
			c.setService(LatexServiceStopped)
		}
		return c.view(), nil
	})
}

func (c *LatexController) StartService(ctx context.Context) (LatexView, error) {
	return c.lifecycle(ctx, apiclient.LatexActionStartService, LatexServiceStarting, LatexServiceRunning, LatexServiceStopped)
}

func (c *LatexController) StopService(ctx context.Context) (LatexView, error) {
	return c.lifecycle(ctx, apiclient.LatexActionStopService, LatexServiceStopping, LatexServiceStopped, LatexServiceRunning)
}

func (c *LatexController) lifecycle(ctx context.Context, action string, during, ok, failed LatexServiceStatus) (LatexView, error) {
	if c.state.isBusy() {
		return c.view(), ErrBusy
	}
	c.setService(during)
	return submit(ctx, c.state, func(ctx context.Context) (LatexView, error) {
		resp, err := c.api.LatexOCR(ctx, apiclient.LatexRequest{Action: action})
		if err != nil {
			c.setService(failed)
			return LatexView{}, err
		}
		if resp.Status != "success" {
			c.setService(failed)
			return LatexView{}, &domain.DomainError{Feature: domain.FeatureLatex, Message: latexMessage(resp, "the LaTeX OCR service did not respond to "+action)}
		}
		c.setService(ok)
		c.state.setNotice(resp.Message)
		return c.view(), nil
	})
}

// Upload stores the formula image. Convert is rejected until one succeeds.
func (c *LatexController) Upload(ctx context.Context, file apiclient.File) (LatexView, error) {
	info, err := media.CheckImage("image", file)
	if err != nil {
		return c.view(), c.state.report(err)
	}
	return submit(ctx, c.state, func(ctx context.Context) (LatexView, error) {
		image, err := uploadImage(ctx, c.api, file, info)
		if err != nil {
			return LatexView{}, err
		}
		c.slot.set(image)
		c.mu.Lock()
		c.code = ""
		c.mu.Unlock()
		return c.view(), nil
	})
}

// Convert turns the uploaded image into LaTeX source.
func (c *LatexController) Convert(ctx context.Context) (LatexView, error) {
	image := c.slot.get()
	if image == nil {
		return c.view(), c.state.report(domain.Invalid("image", "please upload an image first"))
	}
	return submit(ctx, c.state, func(ctx context.Context) (LatexView, error) {
		resp, err := c.api.LatexOCR(ctx, apiclient.LatexRequest{ImageFilename: image.Filename, Action: apiclient.LatexActionConvert})
		if err != nil {
			return LatexView{}, err
		}
		if resp.Status != "success" || (resp.Success != nil && !*resp.Success) {
			return LatexView{}, &domain.DomainError{Feature: domain.FeatureLatex, Message: latexMessage(resp, "the image could not be converted")}
		}
		c.mu.Lock()
		c.code = resp.LatexCode
		c.mu.Unlock()
		return c.view(), nil
	})
}

// Copy puts the converted LaTeX on the clipboard.
func (c *LatexController) Copy(ctx context.Context) error {
	code := strings.TrimSpace(c.view().LatexCode)
	if code == "" {
		return c.state.report(domain.Invalid("latex", "nothing to copy yet"))
	}
	return copyText(ctx, c.state, c.clipboard, code)
}

func latexMessage(resp apiclient.LatexResponse, fallback string) string {
	if resp.Message != "" {
		return resp.Message
	}
	return fallback
}

func copyText(ctx context.Context, state *featureState, clipboard ports.Clipboard, text string) error {
	if clipboard == nil {
		return state.report(&domain.CaptureError{Code: domain.ErrorCodeClipboard, Message: "clipboard is not available"})
	}
	if err := clipboard.SetText(ctx, text); err != nil {
		return state.report(&domain.CaptureError{Code: domain.ErrorCodeClipboard, Message: "could not copy to the clipboard", Err: err})
	}
	state.setNotice("copied to clipboard")
	state.update(func(*featureState) {})
	return nil
}
