package apiclient

import (
	"context"
	"strconv"
	"strings"
)

// TextToSpeech posts to /text-to-speech and returns the audio bytes as-is.
func (c *Client) TextToSpeech(ctx context.Context, req TTSRequest) (Audio, error) {
	if strings.TrimSpace(req.Lang) == "" {
		req.Lang = "vi"
	}
	data, contentType, err := c.postForBytes(ctx, "/text-to-speech", req)
	if err != nil {
		return Audio{}, err
	}
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return Audio{Data: data, ContentType: contentType}, nil
}

// SpeechToText uploads a recording to /speech-to-text.
func (c *Client) SpeechToText(ctx context.Context, req SpeechToTextRequest) (SpeechToTextResponse, error) {
	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = "auto"
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = "vi"
	}

	audio := req.Audio
	if audio.Name == "" {
		audio.Name = "recording.wav"
	}

	var f form
	f.addFile("file", audio)
	f.set("method", method)
	f.set("language", language)
	f.set("translate_to_english", strconv.FormatBool(req.TranslateToEnglish))
	if key := strings.TrimSpace(req.OpenAIAPIKey); key != "" {
		f.set("openai_api_key", key)
	}

	var out SpeechToTextResponse
	err := c.postMultipart(ctx, "/speech-to-text", f, &out)
	return out, err
}

// ASRTranscribe uploads audio to /api/asr/transcribe. An empty language lets
// the backend auto-detect.
func (c *Client) ASRTranscribe(ctx context.Context, req ASRRequest) (ASRResponse, error) {
	task := strings.TrimSpace(req.Task)
	if task == "" {
		task = "transcribe"
	}
	model := strings.TrimSpace(req.ModelName)
	if model == "" {
		model = "large-v3"
	}

	var f form
	f.addFile("audio", req.Audio)
	if language := strings.TrimSpace(req.Language); language != "" {
		f.set("language", language)
	}
	f.set("task", task)
	f.set("model_name", model)

	var out ASRResponse
	err := c.postMultipart(ctx, "/api/asr/transcribe", f, &out)
	return out, err
}
