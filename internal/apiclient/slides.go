package apiclient

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// DownloadSlides fetches a generated presentation.
func (c *Client) DownloadSlides(ctx context.Context, filename string) ([]byte, string, error) {
	return c.getBytes(ctx, "/download-slides/"+url.PathEscape(strings.TrimSpace(filename)))
}

// GenerateSlidesFromDocuments uploads every document under the repeated
// multipart field "files" to /generate-slides.
func (c *Client) GenerateSlidesFromDocuments(ctx context.Context, req SlideDocumentsRequest) (SlideDocumentsResponse, error) {
	if req.NumSlides <= 0 {
		req.NumSlides = 10
	}

	var f form
	for _, file := range req.Files {
		f.addFile("files", file)
	}
	f.set("num_slides", strconv.Itoa(req.NumSlides))

	var out SlideDocumentsResponse
	err := c.postMultipart(ctx, "/generate-slides", f, &out)
	return out, err
}
