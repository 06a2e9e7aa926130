package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
)

// File is a binary payload sent as one multipart part.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f File) contentType() string {
	if f.ContentType != "" {
		return f.ContentType
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name))); byExt != "" {
		return byExt
	}
	return http.DetectContentType(f.Data)
}

// ReadFile loads path into a File, naming it after the base name.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	f := File{Name: filepath.Base(path), Data: data}
	f.ContentType = f.contentType()
	return f, nil
}

// TextOf renders a loosely typed payload field as text: JSON strings are
// unquoted, anything else is returned as compact JSON.
func TextOf(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := sonic.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed)
	}
	return compact.String()
}

// MediaItem is a titled image or plot reference.
type MediaItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Alt   string `json:"alt"`
}

type ChatRequest struct {
	Message      string `json:"message"`
	Feature      string `json:"feature"`
	SearchEngine string `json:"search_engine"`
}

// ChatResponse.Response is a plain string for most features; for math it may
// carry JSON-encoded structured data.
type ChatResponse struct {
	Response json.RawMessage `json:"response"`
	Status   string          `json:"status"`
}

type SmartChatRequest struct {
	Message        string   `json:"message"`
	SearchEngine   string   `json:"search_engine"`
	ImageFilenames []string `json:"image_filenames"`
}

type SmartChatResponse struct {
	Response        string `json:"response"`
	Status          string `json:"status"`
	SearchPerformed bool   `json:"search_performed"`
	SearchEngine    string `json:"search_engine"`
}

type SearchRequest struct {
	Query        string `json:"query"`
	SearchEngine string `json:"search_engine"`
	MaxResults   int    `json:"max_results"`
}

type SearchResponse struct {
	Results json.RawMessage `json:"results"`
	Status  string          `json:"status"`
}

type MathRequest struct {
	Query string `json:"query"`
}

type MathResponse struct {
	Result      json.RawMessage `json:"result"`
	Status      string          `json:"status"`
	TextResults []string        `json:"text_results"`
	Images      []MediaItem     `json:"images"`
	Plots       []MediaItem     `json:"plots"`
	Success     bool            `json:"success"`
}

type UploadCSVResponse struct {
	Message  string          `json:"message"`
	Filename string          `json:"filename"`
	Summary  json.RawMessage `json:"summary"`
	Columns  []string        `json:"columns"`
	Status   string          `json:"status"`
}

// AnalyzeRequest is flattened into {action, ...params} on the wire.
type AnalyzeRequest struct {
	Action    string `json:"action"`
	Column    string `json:"column,omitempty"`
	ChartType string `json:"chart_type,omitempty"`
	XCol      string `json:"x_col,omitempty"`
	YCol      string `json:"y_col,omitempty"`
	Title     string `json:"title,omitempty"`
	Prompt    string `json:"prompt,omitempty"`
}

type AnalyzeResponse struct {
	Result json.RawMessage `json:"result"`
	Status string          `json:"status"`
}

type ChartsResponse struct {
	Charts []string `json:"charts"`
	Status string   `json:"status"`
}

type StatusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type HealthResponse struct {
	Status            string `json:"status"`
	GeminiConfigured  bool   `json:"gemini_configured"`
	WolframConfigured bool   `json:"wolfram_configured"`
	SerpAPIConfigured bool   `json:"serpapi_configured"`
}

type TTSRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// Audio is an opaque binary audio payload.
type Audio struct {
	Data        []byte
	ContentType string
}

type LLMChatRequest struct {
	Message   string
	MaxLength int
	// Temperature is sent as DefaultTemperature when nil; zero is a valid value.
	Temperature *float64
	Mode        LLMMode
}

type LLMChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Model    string `json:"model"`
	Device   string `json:"device"`
	Error    string `json:"error"`
}

type CreateSlidesRequest struct {
	Topic     string
	NumSlides int
	Mode      LLMMode
}

type CreateSlidesResponse struct {
	Success   bool            `json:"success"`
	Filename  string          `json:"filename"`
	Title     string          `json:"title"`
	NumSlides int             `json:"num_slides"`
	Slides    json.RawMessage `json:"slides"`
	Error     string          `json:"error"`
}

type UploadImageResponse struct {
	Filename string `json:"filename"`
	Message  string `json:"message"`
	Status   string `json:"status"`
}

type VisionRequest struct {
	Action        string `json:"action"`
	ImageFilename string `json:"image_filename"`
	Question      string `json:"question,omitempty"`
}

type VisionResult struct {
	Success  *bool  `json:"success"`
	Answer   string `json:"answer"`
	Text     string `json:"text"`
	Question string `json:"question"`
	Model    string `json:"model"`
	Error    string `json:"error"`
}

// Failed reports whether the backend explicitly marked the result unsuccessful.
func (r VisionResult) Failed() bool {
	return r.Success != nil && !*r.Success
}

type VisionResponse struct {
	Result VisionResult `json:"result"`
	Status string       `json:"status"`
}

type SpeechToTextRequest struct {
	Audio              File
	Method             string
	Language           string
	TranslateToEnglish bool
	OpenAIAPIKey       string
}

type SpeechToTextResponse struct {
	Success  bool   `json:"success"`
	Text     string `json:"text"`
	Method   string `json:"method"`
	Language string `json:"language"`
	Error    string `json:"error"`
}

type ASRRequest struct {
	Audio     File
	Language  string
	Task      string
	ModelName string
}

type ASRResponse struct {
	Success       bool    `json:"success"`
	Transcription string  `json:"transcription"`
	Language      string  `json:"language"`
	Task          string  `json:"task"`
	Model         string  `json:"model"`
	Device        string  `json:"device"`
	Confidence    float64 `json:"confidence"`
	Error         string  `json:"error"`
}

type TextToImageRequest struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type TextToImageResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ImageURL  string `json:"image_url"`
	ImagePath string `json:"image_path"`
}

type TextToVideoRequest struct {
	Prompt      string `json:"prompt"`
	MaxWaitTime int    `json:"max_wait_time"`
}

type ImageToVideoRequest struct {
	ImageFilename string `json:"image_filename"`
	Prompt        string `json:"prompt,omitempty"`
	MaxWaitTime   int    `json:"max_wait_time"`
}

type ReferenceImagesToVideoRequest struct {
	ImageFilenames []string `json:"image_filenames"`
	Prompt         string   `json:"prompt"`
	MaxWaitTime    int      `json:"max_wait_time"`
}

type VideoResponse struct {
	Status         string  `json:"status"`
	Message        string  `json:"message"`
	VideoURL       string  `json:"video_url"`
	ImageURL       string  `json:"image_url"`
	GenerationTime float64 `json:"generation_time"`
	Model          string  `json:"model"`
	Prompt         string  `json:"prompt"`
}

type SummarizeRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
	MinLength int    `json:"min_length"`
	DoSample  bool   `json:"do_sample"`
}

type SummarizeResponse struct {
	Summary          string  `json:"summary"`
	OriginalLength   int     `json:"original_length"`
	SummaryLength    int     `json:"summary_length"`
	CompressionRatio float64 `json:"compression_ratio"`
	Truncated        bool    `json:"truncated"`
	Model            string  `json:"model"`
	Status           string  `json:"status"`
}

type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type LanguageRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type TranslateResponse struct {
	Status         string      `json:"status"`
	TranslatedText string      `json:"translated_text"`
	OriginalText   string      `json:"original_text"`
	SourceLanguage LanguageRef `json:"source_language"`
	TargetLanguage LanguageRef `json:"target_language"`
	Pronunciation  string      `json:"pronunciation"`
	Confidence     float64     `json:"confidence"`
}

type LanguagesResponse struct {
	Status    string            `json:"status"`
	Languages map[string]string `json:"languages"`
	Count     int               `json:"count"`
}

// Latex OCR actions accepted by the backend.
const (
	LatexActionHealthCheck  = "health_check"
	LatexActionStartService = "start_service"
	LatexActionStopService  = "stop_service"
	LatexActionConvert      = "convert"
)

type LatexRequest struct {
	ImageFilename string `json:"image_filename"`
	Action        string `json:"action"`
}

type LatexHealth struct {
	Ready            bool `json:"ready"`
	ContainerRunning bool `json:"container_running"`
}

type LatexResponse struct {
	Status    string       `json:"status"`
	Success   *bool        `json:"success"`
	LatexCode string       `json:"latex_code"`
	Message   string       `json:"message"`
	Health    *LatexHealth `json:"health"`
}

type SlideDocumentsRequest struct {
	Files     []File
	NumSlides int
}

type SlideDocumentsResponse struct {
	Success         bool   `json:"success"`
	Filename        string `json:"filename"`
	PresentationURL string `json:"presentation_url"`
	NumSlides       int    `json:"num_slides"`
	NumImages       int    `json:"num_images"`
	Title           string `json:"title"`
	Error           string `json:"error"`
}
