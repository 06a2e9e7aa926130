package apiclient

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
)

// Error is returned for any non-2xx response or transport failure.
// StatusCode is zero when the request never produced a response.
type Error struct {
	StatusCode int
	Message    string
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorMessage extracts the user-displayable message for err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// StatusCode returns the HTTP status carried by err, or zero.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func transportError(err error) *Error {
	return &Error{Message: err.Error(), Err: err}
}

// messageKeys is the fixed precedence for extracting a message from an error body.
var messageKeys = []string{"detail", "error", "message"}

func decodeError(status int, body []byte) *Error {
	apiErr := &Error{StatusCode: status, Body: body}

	var envelope map[string]any
	if err := sonic.Unmarshal(body, &envelope); err == nil {
		for _, key := range messageKeys {
			if msg := messageFrom(envelope[key]); msg != "" {
				apiErr.Message = msg
				return apiErr
			}
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" || bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) || len(text) > 512 {
		text = http.StatusText(status)
	}
	if text == "" {
		text = "request failed"
	}
	apiErr.Message = text
	return apiErr
}

// messageFrom flattens a FastAPI-style detail value into text.
func messageFrom(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if entry, ok := item.(map[string]any); ok {
				if msg, ok := entry["msg"].(string); ok && msg != "" {
					parts = append(parts, msg)
					continue
				}
			}
			if msg := messageFrom(item); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		for _, key := range messageKeys {
			if msg := messageFrom(v[key]); msg != "" {
				return msg
			}
		}
		encoded, err := sonic.MarshalString(v)
		if err != nil {
			return ""
		}
		return encoded
	default:
		encoded, err := sonic.MarshalString(v)
		if err != nil {
			return ""
		}
		return encoded
	}
}
