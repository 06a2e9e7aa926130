package apiclient

import (
	"context"
	"net/url"
	"strings"
)

// Data analysis actions.
const (
	AnalyzeSummary     = "summary"
	AnalyzeInfo        = "info"
	AnalyzeColumn      = "analyze_column"
	AnalyzeCreateChart = "create_chart"
	AnalyzeAIAnalyze   = "ai_analyze"
)

// UploadCSV sends file as multipart "file" to /upload-csv.
func (c *Client) UploadCSV(ctx context.Context, file File) (UploadCSVResponse, error) {
	var f form
	f.addFile("file", file)

	var out UploadCSVResponse
	err := c.postMultipart(ctx, "/upload-csv", f, &out)
	return out, err
}

// AnalyzeData posts {action, ...params} to /analyze-data.
func (c *Client) AnalyzeData(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error) {
	var out AnalyzeResponse
	err := c.postJSON(ctx, "/analyze-data", req, &out)
	return out, err
}

// Charts lists chart files generated for the current dataset.
func (c *Client) Charts(ctx context.Context) (ChartsResponse, error) {
	var out ChartsResponse
	err := c.getJSON(ctx, "/charts", &out)
	return out, err
}

// ChartURL returns the absolute URL of a generated chart.
func (c *Client) ChartURL(filename string) string {
	return c.baseURL + "/charts/" + url.PathEscape(strings.TrimSpace(filename))
}

// FetchChart downloads a generated chart image.
func (c *Client) FetchChart(ctx context.Context, filename string) ([]byte, string, error) {
	return c.getBytes(ctx, "/charts/"+url.PathEscape(strings.TrimSpace(filename)))
}

// ClearData drops the dataset held by the backend.
func (c *Client) ClearData(ctx context.Context) (StatusResponse, error) {
	var out StatusResponse
	err := c.deleteJSON(ctx, "/clear-data", &out)
	return out, err
}
