// Package mathresult turns the loosely shaped math responses of the backend
// into one structured form.
package mathresult

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/bytedance/sonic"

	"agentconsole/internal/apiclient"
)

// FailureNotice is shown instead of results when the backend reports success=false.
const FailureNotice = "Could not compute a result for this query"

// Media is a titled plot or image reference.
type Media struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Alt   string `json:"alt"`
}

// Result is the structured math response.
type Result struct {
	TextResults []string `json:"text_results"`
	Plots       []Media  `json:"plots"`
	Images      []Media  `json:"images"`
	Success     bool     `json:"success"`
}

type wireResult struct {
	TextResults []string `json:"text_results"`
	Plots       []Media  `json:"plots"`
	Images      []Media  `json:"images"`
	Success     *bool    `json:"success"`
}

// Text wraps a legacy plain-text answer.
func Text(s string) Result {
	return Result{TextResults: []string{s}, Plots: []Media{}, Images: []Media{}, Success: true}
}

// Normalize converts the "response" field of a chat reply. A JSON string is
// parsed when it holds an object and wrapped as text otherwise; an object is
// decoded directly; null or absent yields an unsuccessful empty result.
func Normalize(raw json.RawMessage) Result {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return empty(false)
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := sonic.Unmarshal(trimmed, &s); err != nil {
			return Text(string(trimmed))
		}
		return FromString(s)
	case '{':
		if res, ok := decodeObject(trimmed); ok {
			return res
		}
		return Text(string(trimmed))
	default:
		return Text(string(trimmed))
	}
}

// FromString applies the string branch of Normalize to s.
func FromString(s string) Result {
	candidate := strings.TrimSpace(s)
	if strings.HasPrefix(candidate, "{") {
		if res, ok := decodeObject([]byte(candidate)); ok {
			return res
		}
	}
	return Text(s)
}

// FromMath normalizes a /math reply, whose fields sit at the top level.
func FromMath(resp apiclient.MathResponse) Result {
	if len(resp.TextResults) > 0 || len(resp.Plots) > 0 || len(resp.Images) > 0 {
		return Result{
			TextResults: nonNil(resp.TextResults),
			Plots:       fromItems(resp.Plots),
			Images:      fromItems(resp.Images),
			Success:     resp.Success,
		}
	}
	return Normalize(resp.Result)
}

func decodeObject(data []byte) (Result, bool) {
	var w wireResult
	if err := sonic.Unmarshal(data, &w); err != nil {
		return Result{}, false
	}
	res := Result{
		TextResults: nonNil(w.TextResults),
		Plots:       nonNilMedia(w.Plots),
		Images:      nonNilMedia(w.Images),
		Success:     w.Success == nil || *w.Success,
	}
	return res, true
}

func empty(success bool) Result {
	return Result{TextResults: []string{}, Plots: []Media{}, Images: []Media{}, Success: success}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilMedia(in []Media) []Media {
	if in == nil {
		return []Media{}
	}
	return in
}

func fromItems(items []apiclient.MediaItem) []Media {
	out := make([]Media, 0, len(items))
	for _, item := range items {
		out = append(out, Media(item))
	}
	return out
}

// Notice returns FailureNotice for unsuccessful results, or "".
func (r Result) Notice() string {
	if r.Success {
		return ""
	}
	return FailureNotice
}

// Summary joins the text results in order.
func (r Result) Summary() string {
	return strings.Join(r.TextResults, "\n")
}

// IsEmpty reports whether the result carries nothing to render.
func (r Result) IsEmpty() bool {
	return len(r.TextResults) == 0 && len(r.Plots) == 0 && len(r.Images) == 0
}
