package apiclient

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// Client is the single gateway to the agent backend. It performs no retries,
// caching or request coalescing; every call is one HTTP exchange.
type Client struct {
	baseURL string
	http    *resty.Client
	logger  *slog.Logger
}

type Option func(*Client)

// WithHTTPClient swaps the underlying transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		c.http = resty.NewWithClient(hc)
	}
}

// WithTimeout bounds a single request. Zero means wait for the response.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.SetTimeout(timeout)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for baseURL. An empty baseURL falls back to DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		http:    resty.New(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}

	c.http.SetBaseURL(c.baseURL)
	c.http.SetRetryCount(0)
	return c
}

// BaseURL returns the resolved backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// MediaURL resolves a backend-relative media path (e.g. "/videos/a.mp4") to an absolute URL.
// Absolute URLs are returned unchanged.
func (c *Client) MediaURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if parsed, err := url.Parse(ref); err == nil && parsed.IsAbs() {
		return ref
	}
	return c.baseURL + "/" + strings.TrimLeft(ref, "/")
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("X-Request-ID", uuid.NewString())
}

// execute runs req and returns the raw body of a 2xx response.
func (c *Client) execute(req *resty.Request, method string, path string) ([]byte, error) {
	resp, err := c.do(req, method, path)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (c *Client) do(req *resty.Request, method string, path string) (*resty.Response, error) {
	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Warn("backend request failed",
			"method", method,
			"path", path,
			"request_id", req.Header.Get("X-Request-ID"),
			"error", err,
		)
		return nil, transportError(err)
	}

	c.logger.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode(),
		"duration", time.Since(start),
		"request_id", req.Header.Get("X-Request-ID"),
	)

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, decodeError(resp.StatusCode(), resp.Body())
	}
	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return &Error{Message: "encode request: " + err.Error(), Err: err}
	}

	req := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)

	raw, err := c.execute(req, http.MethodPost, path)
	if err != nil {
		return err
	}
	return decodeBody(raw, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	raw, err := c.execute(c.request(ctx), http.MethodGet, path)
	if err != nil {
		return err
	}
	return decodeBody(raw, out)
}

func (c *Client) deleteJSON(ctx context.Context, path string, out any) error {
	raw, err := c.execute(c.request(ctx), http.MethodDelete, path)
	if err != nil {
		return err
	}
	return decodeBody(raw, out)
}

func (c *Client) getBytes(ctx context.Context, path string) ([]byte, string, error) {
	resp, err := c.do(c.request(ctx).SetHeader("Accept", "*/*"), http.MethodGet, path)
	if err != nil {
		return nil, "", err
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

// postForBytes sends a JSON body and returns the response body undecoded.
func (c *Client) postForBytes(ctx context.Context, path string, payload any) ([]byte, string, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, "", &Error{Message: "encode request: " + err.Error(), Err: err}
	}
	req := c.request(ctx).
		SetHeader("Accept", "*/*").
		SetHeader("Content-Type", "application/json").
		SetBody(body)

	resp, err := c.do(req, http.MethodPost, path)
	if err != nil {
		return nil, "", err
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

// form describes a multipart request: files plus scalar fields.
type form struct {
	files  []formFile
	fields map[string]string
}

type formFile struct {
	param string
	file  File
}

func (f *form) addFile(param string, file File) {
	f.files = append(f.files, formFile{param: param, file: file})
}

func (f *form) set(key string, value string) {
	if f.fields == nil {
		f.fields = make(map[string]string)
	}
	f.fields[key] = value
}

func (c *Client) postMultipart(ctx context.Context, path string, f form, out any) error {
	req := c.request(ctx)
	for _, ff := range f.files {
		req.SetMultipartFields(&resty.MultipartField{
			Param:       ff.param,
			FileName:    ff.file.Name,
			ContentType: ff.file.contentType(),
			Reader:      bytes.NewReader(ff.file.Data),
		})
	}
	if len(f.fields) > 0 {
		req.SetFormData(f.fields)
	}

	raw, err := c.execute(req, http.MethodPost, path)
	if err != nil {
		return err
	}
	return decodeBody(raw, out)
}

func decodeBody(raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return &Error{StatusCode: http.StatusOK, Message: "decode response: " + err.Error(), Body: raw, Err: err}
	}
	return nil
}
