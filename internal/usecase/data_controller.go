package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/samber/lo"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
	"agentconsole/internal/media"
	"agentconsole/internal/ports"
)

// ChartTypes lists the chart kinds the backend can draw.
var ChartTypes = []string{"bar", "line", "scatter", "histogram", "pie", "box", "heatmap"}

var chartPathPattern = regexp.MustCompile(`charts[\\/]([^\s'"]+\.png)`)

// Dataset is the CSV currently loaded on the backend by this controller.
type Dataset struct {
	Filename string          `json:"filename"`
	Columns  []string        `json:"columns"`
	Summary  json.RawMessage `json:"summary,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// Analysis is the output of one analysis action.
type Analysis struct {
	Action   string `json:"action"`
	Text     string `json:"text"`
	ChartURL string `json:"chartUrl,omitempty"`
}

// DataView is what the data-analysis panel renders.
type DataView struct {
	Dataset  *Dataset  `json:"dataset,omitempty"`
	Analysis *Analysis `json:"analysis,omitempty"`
	Charts   []string  `json:"charts,omitempty"`
}

// ChartSpec describes a chart request.
type ChartSpec struct {
	Type  string `json:"type"`
	XCol  string `json:"xCol"`
	YCol  string `json:"yCol"`
	Title string `json:"title"`
}

// DataController uploads a CSV and runs analyses against it.
type DataController struct {
	api   ports.DataAPI
	state *featureState

	mu      sync.Mutex
	dataset *Dataset
	view    DataView
}

func NewDataController(api ports.DataAPI, events ports.EventSink, logger *slog.Logger) *DataController {
	return &DataController{
		api:   api,
		state: newFeatureState(domain.FeatureData, events, logger),
	}
}

func (c *DataController) Snapshot() domain.FeatureSnapshot {
	return c.state.Snapshot()
}

// Upload sends a CSV file. Analysis stays disabled until one succeeds.
func (c *DataController) Upload(ctx context.Context, file apiclient.File) (DataView, error) {
	if err := media.CheckCSV("file", file); err != nil {
		return c.current(), c.state.report(err)
	}
	return submit(ctx, c.state, func(ctx context.Context) (DataView, error) {
		resp, err := c.api.UploadCSV(ctx, file)
		if err != nil {
			return DataView{}, err
		}
		filename := resp.Filename
		if filename == "" {
			filename = file.Name
		}
		dataset := &Dataset{
			Filename: filename,
			Columns:  resp.Columns,
			Summary:  resp.Summary,
			Message:  resp.Message,
		}
		return c.replace(func(v *DataView) {
			c.dataset = dataset
			*v = DataView{Dataset: dataset}
		}), nil
	})
}

// CreateChart draws a chart from the loaded dataset.
func (c *DataController) CreateChart(ctx context.Context, spec ChartSpec) (DataView, error) {
	dataset, err := c.requireDataset()
	if err != nil {
		return c.current(), c.state.report(err)
	}
	if spec.Type == "" {
		spec.Type = ChartTypes[0]
	}
	if !lo.Contains(ChartTypes, spec.Type) {
		return c.current(), c.state.report(domain.Invalid("type", "unsupported chart type %q", spec.Type))
	}
	if spec.XCol == "" && len(dataset.Columns) > 0 {
		spec.XCol = dataset.Columns[0]
	}
	if spec.YCol == "" && len(dataset.Columns) > 0 {
		spec.YCol = dataset.Columns[min(1, len(dataset.Columns)-1)]
	}
	for _, col := range []string{spec.XCol, spec.YCol} {
		if len(dataset.Columns) > 0 && !lo.Contains(dataset.Columns, col) {
			return c.current(), c.state.report(domain.Invalid("column", "unknown column %q", col))
		}
	}

	return c.analyze(ctx, apiclient.AnalyzeRequest{
		Action:    apiclient.AnalyzeCreateChart,
		ChartType: spec.Type,
		XCol:      spec.XCol,
		YCol:      spec.YCol,
		Title:     spec.Title,
	})
}

// AIAnalyze asks the model a question about the dataset.
func (c *DataController) AIAnalyze(ctx context.Context, prompt string) (DataView, error) {
	if _, err := c.requireDataset(); err != nil {
		return c.current(), c.state.report(err)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return c.current(), c.state.report(domain.Invalid("prompt", "please enter an analysis question"))
	}
	return c.analyze(ctx, apiclient.AnalyzeRequest{Action: apiclient.AnalyzeAIAnalyze, Prompt: prompt})
}

// AnalyzeColumn describes one column.
func (c *DataController) AnalyzeColumn(ctx context.Context, column string) (DataView, error) {
	dataset, err := c.requireDataset()
	if err != nil {
		return c.current(), c.state.report(err)
	}
	if column == "" || (len(dataset.Columns) > 0 && !lo.Contains(dataset.Columns, column)) {
		return c.current(), c.state.report(domain.Invalid("column", "please choose a column of %s", dataset.Filename))
	}
	return c.analyze(ctx, apiclient.AnalyzeRequest{Action: apiclient.AnalyzeColumn, Column: column})
}

// Summary returns the statistical summary; Info the dataframe info.
func (c *DataController) Summary(ctx context.Context) (DataView, error) {
	return c.simpleAction(ctx, apiclient.AnalyzeSummary)
}

func (c *DataController) Info(ctx context.Context) (DataView, error) {
	return c.simpleAction(ctx, apiclient.AnalyzeInfo)
}

func (c *DataController) simpleAction(ctx context.Context, action string) (DataView, error) {
	if _, err := c.requireDataset(); err != nil {
		return c.current(), c.state.report(err)
	}
	return c.analyze(ctx, apiclient.AnalyzeRequest{Action: action})
}

func (c *DataController) analyze(ctx context.Context, req apiclient.AnalyzeRequest) (DataView, error) {
	return submit(ctx, c.state, func(ctx context.Context) (DataView, error) {
		resp, err := c.api.AnalyzeData(ctx, req)
		if err != nil {
			return DataView{}, err
		}
		analysis := &Analysis{Action: req.Action, Text: apiclient.TextOf(resp.Result)}
		if req.Action == apiclient.AnalyzeCreateChart {
			if match := chartPathPattern.FindStringSubmatch(analysis.Text); match != nil {
				analysis.ChartURL = c.api.ChartURL(match[1])
			}
		}
		return c.replace(func(v *DataView) { v.Analysis = analysis }), nil
	})
}

// Charts lists the chart files the backend has drawn.
func (c *DataController) Charts(ctx context.Context) (DataView, error) {
	return submit(ctx, c.state, func(ctx context.Context) (DataView, error) {
		resp, err := c.api.Charts(ctx)
		if err != nil {
			return DataView{}, err
		}
		urls := lo.Map(resp.Charts, func(name string, _ int) string { return c.api.ChartURL(name) })
		return c.replace(func(v *DataView) { v.Charts = urls }), nil
	})
}

// Clear drops the dataset on the backend and locally.
func (c *DataController) Clear(ctx context.Context) (DataView, error) {
	return submit(ctx, c.state, func(ctx context.Context) (DataView, error) {
		resp, err := c.api.ClearData(ctx)
		if err != nil {
			return DataView{}, err
		}
		c.state.setNotice(resp.Message)
		return c.replace(func(v *DataView) {
			c.dataset = nil
			*v = DataView{}
		}), nil
	})
}

func (c *DataController) requireDataset() (*Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dataset == nil {
		return nil, domain.Invalid("file", "please upload a CSV file first")
	}
	return c.dataset, nil
}

func (c *DataController) replace(fn func(v *DataView)) DataView {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.view)
	return c.view
}

func (c *DataController) current() DataView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}
