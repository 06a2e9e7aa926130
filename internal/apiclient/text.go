package apiclient

import (
	"context"
	"strings"
)

// Summarize posts to /summarization.
func (c *Client) Summarize(ctx context.Context, req SummarizeRequest) (SummarizeResponse, error) {
	if req.MaxLength <= 0 {
		req.MaxLength = 130
	}
	if req.MinLength <= 0 {
		req.MinLength = 30
	}
	var out SummarizeResponse
	err := c.postJSON(ctx, "/summarization", req, &out)
	return out, err
}

// Translate posts to /translate. An empty source language means auto-detect.
func (c *Client) Translate(ctx context.Context, req TranslateRequest) (TranslateResponse, error) {
	if strings.TrimSpace(req.SourceLang) == "" {
		req.SourceLang = "auto"
	}
	var out TranslateResponse
	err := c.postJSON(ctx, "/translate", req, &out)
	return out, err
}

// TranslationLanguages reads the code to name catalogue.
func (c *Client) TranslationLanguages(ctx context.Context) (LanguagesResponse, error) {
	var out LanguagesResponse
	err := c.getJSON(ctx, "/translation/languages", &out)
	return out, err
}
