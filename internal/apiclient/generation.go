package apiclient

import "context"

const (
	defaultImageSize  = 1024
	defaultVideoWaitS = 300
)

// TextToImage posts to /text-to-image.
func (c *Client) TextToImage(ctx context.Context, req TextToImageRequest) (TextToImageResponse, error) {
	if req.Width <= 0 {
		req.Width = defaultImageSize
	}
	if req.Height <= 0 {
		req.Height = defaultImageSize
	}
	var out TextToImageResponse
	err := c.postJSON(ctx, "/text-to-image", req, &out)
	return out, err
}

// TextToVideo posts to /text-to-video. The call blocks until the backend
// finishes or gives up after MaxWaitTime seconds.
func (c *Client) TextToVideo(ctx context.Context, req TextToVideoRequest) (VideoResponse, error) {
	if req.MaxWaitTime <= 0 {
		req.MaxWaitTime = defaultVideoWaitS
	}
	var out VideoResponse
	err := c.postJSON(ctx, "/text-to-video", req, &out)
	return out, err
}

// ImageToVideo posts to /image-to-video.
func (c *Client) ImageToVideo(ctx context.Context, req ImageToVideoRequest) (VideoResponse, error) {
	if req.MaxWaitTime <= 0 {
		req.MaxWaitTime = defaultVideoWaitS
	}
	var out VideoResponse
	err := c.postJSON(ctx, "/image-to-video", req, &out)
	return out, err
}

// ReferenceImagesToVideo posts to /reference-images-to-video.
func (c *Client) ReferenceImagesToVideo(ctx context.Context, req ReferenceImagesToVideoRequest) (VideoResponse, error) {
	if req.MaxWaitTime <= 0 {
		req.MaxWaitTime = defaultVideoWaitS
	}
	var out VideoResponse
	err := c.postJSON(ctx, "/reference-images-to-video", req, &out)
	return out, err
}

// PromptToImageToVideo posts to /prompt-to-image-to-video; the response
// carries both the intermediate image_url and the video_url.
func (c *Client) PromptToImageToVideo(ctx context.Context, req TextToVideoRequest) (VideoResponse, error) {
	if req.MaxWaitTime <= 0 {
		req.MaxWaitTime = defaultVideoWaitS
	}
	var out VideoResponse
	err := c.postJSON(ctx, "/prompt-to-image-to-video", req, &out)
	return out, err
}
