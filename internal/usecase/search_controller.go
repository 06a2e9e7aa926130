package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
	"agentconsole/internal/ports"
)

const maxSearchResults = 20

// SearchResult is the last /search answer.
type SearchResult struct {
	Query        string          `json:"query"`
	SearchEngine string          `json:"searchEngine"`
	Results      json.RawMessage `json:"results"`
}

// SearchController runs direct web searches.
type SearchController struct {
	api        ports.SearchAPI
	state      *featureState
	engine     string
	maxResults int
}

func NewSearchController(api ports.SearchAPI, searchEngine string, maxResults int, events ports.EventSink, logger *slog.Logger) *SearchController {
	if searchEngine == "" {
		searchEngine = apiclient.SearchEngineDuckDuckGo
	}
	if maxResults <= 0 || maxResults > maxSearchResults {
		maxResults = 5
	}
	return &SearchController{
		api:        api,
		state:      newFeatureState(domain.FeatureWebSearch, events, logger),
		engine:     searchEngine,
		maxResults: maxResults,
	}
}

func (c *SearchController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

// Search queries the backend. Empty engine and zero maxResults use the
// controller defaults.
func (c *SearchController) Search(ctx context.Context, query string, engine string, maxResults int) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, c.state.report(domain.Invalid("query", "please enter a search query"))
	}
	if engine == "" {
		engine = c.engine
	}
	if maxResults == 0 {
		maxResults = c.maxResults
	}
	if maxResults < 1 || maxResults > maxSearchResults {
		return SearchResult{}, c.state.report(domain.Invalid("max_results", "max results must be between 1 and %d", maxSearchResults))
	}

	return submit(ctx, c.state, func(ctx context.Context) (SearchResult, error) {
		resp, err := c.api.Search(ctx, apiclient.SearchRequest{Query: query, SearchEngine: engine, MaxResults: maxResults})
		if err != nil {
			return SearchResult{}, err
		}
		return SearchResult{Query: query, SearchEngine: engine, Results: resp.Results}, nil
	})
}
