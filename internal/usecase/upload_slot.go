package usecase

import (
	"context"
	"fmt"
	"sync"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/media"
	"agentconsole/internal/ports"
)

// UploadedImage is an asset reference returned by /upload-image.
type UploadedImage struct {
	Filename string          `json:"filename"`
	Name     string          `json:"name"`
	Info     media.ImageInfo `json:"info"`
}

// uploadSlot remembers the one image a controller uploaded. References are
// never shared between controllers.
type uploadSlot struct {
	mu    sync.Mutex
	image *UploadedImage
}

func (s *uploadSlot) get() *UploadedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

func (s *uploadSlot) set(image *UploadedImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = image
}

// uploadImage sends file and returns the stored reference.
func uploadImage(ctx context.Context, api ports.ImageUploadAPI, file apiclient.File, info media.ImageInfo) (*UploadedImage, error) {
	resp, err := api.UploadImage(ctx, file)
	if err != nil {
		return nil, err
	}
	if resp.Filename == "" {
		return nil, fmt.Errorf("upload of %s returned no filename", file.Name)
	}
	return &UploadedImage{Filename: resp.Filename, Name: file.Name, Info: info}, nil
}
