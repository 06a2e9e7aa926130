package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config stores runtime configuration for the console.
type Config struct {
	API      APIConfig
	Deepgram DeepgramConfig
	Audio    AudioConfig
	Session  SessionConfig
	Log      LogConfig
	Defaults Defaults
}

type APIConfig struct {
	BaseURL string
	// Timeout of zero waits for the backend to answer.
	Timeout time.Duration
}

type DeepgramConfig struct {
	APIKey        string
	APIBaseURL    string
	Model         string
	Language      string
	SmartFormat   bool
	EndpointingMS int
}

type AudioConfig struct {
	RecorderCommand string
	PlayerCommand   string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
	CaptureDir      string
}

type SessionConfig struct {
	ChunkSize      int
	StreamingGrace time.Duration
	// NoSpeechTimeout ends a dictation that heard nothing; negative disables it.
	NoSpeechTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// Defaults are the user-facing presets; they may come from the YAML file.
type Defaults struct {
	SearchEngine      string `yaml:"search_engine"`
	SmartSearchEngine string `yaml:"smart_search_engine"`
	MaxResults        int    `yaml:"max_results"`
	SpeechLanguage    string `yaml:"speech_language"`
	TTSLanguage       string `yaml:"tts_language"`
	TargetLanguage    string `yaml:"target_language"`
	MaxChatImages     int    `yaml:"max_chat_images"`
	VideoMaxWait      int    `yaml:"video_max_wait_seconds"`
}

type fileConfig struct {
	APIURL   string   `yaml:"api_url"`
	Defaults Defaults `yaml:"defaults"`
}

func builtinDefaults() Defaults {
	return Defaults{
		SearchEngine:      "duckduckgo",
		SmartSearchEngine: "google",
		MaxResults:        5,
		SpeechLanguage:    "vi",
		TTSLanguage:       "vi",
		TargetLanguage:    "en",
		MaxChatImages:     5,
		VideoMaxWait:      300,
	}
}

// Load resolves configuration from .env, the optional YAML file named by
// AGENT_CONSOLE_CONFIG and environment variables, in increasing priority.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	file, err := loadFile(strings.TrimSpace(os.Getenv("AGENT_CONSOLE_CONFIG")))
	if err != nil {
		return Config{}, err
	}
	defaults := mergeDefaults(builtinDefaults(), file.Defaults)

	cfg := Config{
		API: APIConfig{
			BaseURL: firstNonEmpty(
				os.Getenv("AGENT_API_URL"),
				os.Getenv("REACT_APP_API_URL"),
				file.APIURL,
				"http://localhost:8000",
			),
			Timeout: time.Duration(firstNonNegativeInt("AGENT_HTTP_TIMEOUT_SECONDS", "", 0)) * time.Second,
		},
		Deepgram: DeepgramConfig{
			APIKey:        strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:    envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:         envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			Language:      strings.TrimSpace(os.Getenv("DEEPGRAM_LANGUAGE")),
			SmartFormat:   envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
			EndpointingMS: firstNonNegativeInt("DEEPGRAM_ENDPOINTING_MS", "", 0),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("AGENT_FFMPEG_COMMAND", "ffmpeg"),
			PlayerCommand:   envOrDefault("AGENT_FFPLAY_COMMAND", "ffplay"),
			InputFormat:     strings.TrimSpace(os.Getenv("AGENT_AUDIO_INPUT_FORMAT")),
			InputDevice:     strings.TrimSpace(os.Getenv("AGENT_AUDIO_INPUT_DEVICE")),
			SampleRate:      envOrDefaultInt("AGENT_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("AGENT_CHANNELS", 1),
			CaptureDir:      envOrDefault("AGENT_CAPTURE_DIR", defaultCaptureDir()),
		},
		Session: SessionConfig{
			ChunkSize:       envOrDefaultInt("AGENT_AUDIO_CHUNK_SIZE", 4096),
			StreamingGrace:  time.Duration(firstNonNegativeInt("AGENT_STREAMING_GRACE_MS", "DEEPGRAM_STREAMING_GRACE_MS", 1000)) * time.Millisecond,
			NoSpeechTimeout: time.Duration(envOrDefaultInt("AGENT_NO_SPEECH_TIMEOUT_MS", 8000)) * time.Millisecond,
		},
		Log: LogConfig{
			Level:  envOrDefault("AGENT_LOG_LEVEL", "info"),
			Format: envOrDefault("AGENT_LOG_FORMAT", "text"),
			File:   strings.TrimSpace(os.Getenv("AGENT_LOG_FILE")),
		},
		Defaults: Defaults{
			SearchEngine:      envOrDefault("AGENT_SEARCH_ENGINE", defaults.SearchEngine),
			SmartSearchEngine: envOrDefault("AGENT_SMART_SEARCH_ENGINE", defaults.SmartSearchEngine),
			MaxResults:        envOrDefaultInt("AGENT_SEARCH_MAX_RESULTS", defaults.MaxResults),
			SpeechLanguage:    envOrDefault("AGENT_SPEECH_LANGUAGE", defaults.SpeechLanguage),
			TTSLanguage:       envOrDefault("AGENT_TTS_LANGUAGE", defaults.TTSLanguage),
			TargetLanguage:    envOrDefault("AGENT_TARGET_LANGUAGE", defaults.TargetLanguage),
			MaxChatImages:     envOrDefaultInt("AGENT_MAX_CHAT_IMAGES", defaults.MaxChatImages),
			VideoMaxWait:      envOrDefaultInt("AGENT_VIDEO_MAX_WAIT_SECONDS", defaults.VideoMaxWait),
		},
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 4096
	}
	if cfg.Defaults.MaxChatImages <= 0 {
		cfg.Defaults.MaxChatImages = 5
	}
	if cfg.Defaults.MaxResults <= 0 {
		cfg.Defaults.MaxResults = 5
	}
	if cfg.Defaults.VideoMaxWait <= 0 {
		cfg.Defaults.VideoMaxWait = 300
	}

	return cfg, nil
}

func loadFile(path string) (fileConfig, error) {
	if path == "" {
		return fileConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config file: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fileConfig{}, fmt.Errorf("parse config file %s: %w", filepath.Base(path), err)
	}
	return file, nil
}

func mergeDefaults(base Defaults, overlay Defaults) Defaults {
	base.SearchEngine = firstNonEmpty(overlay.SearchEngine, base.SearchEngine)
	base.SmartSearchEngine = firstNonEmpty(overlay.SmartSearchEngine, base.SmartSearchEngine)
	base.SpeechLanguage = firstNonEmpty(overlay.SpeechLanguage, base.SpeechLanguage)
	base.TTSLanguage = firstNonEmpty(overlay.TTSLanguage, base.TTSLanguage)
	base.TargetLanguage = firstNonEmpty(overlay.TargetLanguage, base.TargetLanguage)
	if overlay.MaxResults > 0 {
		base.MaxResults = overlay.MaxResults
	}
	if overlay.MaxChatImages > 0 {
		base.MaxChatImages = overlay.MaxChatImages
	}
	if overlay.VideoMaxWait > 0 {
		base.VideoMaxWait = overlay.VideoMaxWait
	}
	return base
}

func defaultCaptureDir() string {
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "agent-console", "captures")
	}
	return filepath.Join(os.TempDir(), "agent-console", "captures")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func firstNonNegativeInt(primary string, secondary string, fallback int) int {
	for _, key := range []string{primary, secondary} {
		if key == "" {
			continue
		}
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}
