package apiclient

import (
	"context"
	"strings"
)

// Search engines understood by the backend.
const (
	SearchEngineDuckDuckGo = "duckduckgo"
	SearchEngineGoogle     = "google"
	SearchEngineSerpAPI    = "serpapi"
)

const defaultMaxResults = 5

// Chat posts to /chat. Feature is "math" or "search".
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if strings.TrimSpace(req.SearchEngine) == "" {
		req.SearchEngine = SearchEngineDuckDuckGo
	}
	var out ChatResponse
	err := c.postJSON(ctx, "/chat", req, &out)
	return out, err
}

// SmartChat posts to /smart-chat. ImageFilenames must come from UploadImage.
func (c *Client) SmartChat(ctx context.Context, req SmartChatRequest) (SmartChatResponse, error) {
	if strings.TrimSpace(req.SearchEngine) == "" {
		req.SearchEngine = SearchEngineGoogle
	}
	if req.ImageFilenames == nil {
		req.ImageFilenames = []string{}
	}
	var out SmartChatResponse
	err := c.postJSON(ctx, "/smart-chat", req, &out)
	return out, err
}

// Search posts to /search.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	if strings.TrimSpace(req.SearchEngine) == "" {
		req.SearchEngine = SearchEngineDuckDuckGo
	}
	if req.MaxResults <= 0 {
		req.MaxResults = defaultMaxResults
	}
	var out SearchResponse
	err := c.postJSON(ctx, "/search", req, &out)
	return out, err
}

// Math posts to /math.
func (c *Client) Math(ctx context.Context, query string) (MathResponse, error) {
	var out MathResponse
	err := c.postJSON(ctx, "/math", MathRequest{Query: query}, &out)
	return out, err
}

// Health reads /health.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.getJSON(ctx, "/health", &out)
	return out, err
}
