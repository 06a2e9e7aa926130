package apiclient

import "context"

// Vision actions accepted by /vision.
const (
	VisionVQA         = "vqa"
	VisionOCREasyOCR  = "ocr_easyocr"
	VisionOCRDeepSeek = "ocr_deepseek"
	VisionOCRPaddle   = "ocr_paddle"
)

// UploadImage sends file as multipart "file" to /upload-image and returns the
// asset reference the backend assigned.
func (c *Client) UploadImage(ctx context.Context, file File) (UploadImageResponse, error) {
	var f form
	f.addFile("file", file)

	var out UploadImageResponse
	err := c.postMultipart(ctx, "/upload-image", f, &out)
	return out, err
}

// Vision posts to /vision.
func (c *Client) Vision(ctx context.Context, req VisionRequest) (VisionResponse, error) {
	var out VisionResponse
	err := c.postJSON(ctx, "/vision", req, &out)
	return out, err
}

// LatexOCR posts to /latex-ocr.
func (c *Client) LatexOCR(ctx context.Context, req LatexRequest) (LatexResponse, error) {
	var out LatexResponse
	err := c.postJSON(ctx, "/latex-ocr", req, &out)
	return out, err
}
