package bootstrap

import (
	"io"
	"log/slog"
	"path/filepath"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/audio"
	"agentconsole/internal/config"
	"agentconsole/internal/domain"
	"agentconsole/internal/logging"
	"agentconsole/internal/ports"
	"agentconsole/internal/providers/deepgram"
	"agentconsole/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Config config.Config
	Logger *slog.Logger
	API    *apiclient.Client

	Math        *usecase.ChatController
	WebChat     *usecase.ChatController
	SmartChat   *usecase.SmartChatController
	Search      *usecase.SearchController
	Data        *usecase.DataController
	Vision      *usecase.VisionController
	Speech      *usecase.SpeechController
	ASR         *usecase.ASRController
	Images      *usecase.ImageController
	Video       *usecase.VideoController
	LLM         *usecase.LLMController
	Slides      *usecase.SlidesController
	Summary     *usecase.SummaryController
	Translation *usecase.TranslationController
	Latex       *usecase.LatexController
	Dictation   *usecase.DictationController

	speakers  []*usecase.Speaker
	logCloser io.Closer
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink, clipboard ports.Clipboard) (*Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return BuildWith(cfg, eventSink, clipboard), nil
}

// BuildWith wires the graph from an already resolved configuration.
func BuildWith(cfg config.Config, eventSink ports.EventSink, clipboard ports.Clipboard) *Services {
	logger, logCloser := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})

	api := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(logger.With("component", "api")),
	)

	audioCfg := ports.AudioConfig{
		SampleRate:  cfg.Audio.SampleRate,
		Channels:    cfg.Audio.Channels,
		InputFormat: cfg.Audio.InputFormat,
		InputDevice: cfg.Audio.InputDevice,
	}
	capture := audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand)
	player := audio.NewFFplayPlayer(cfg.Audio.PlayerCommand)
	mic := usecase.NewMicLock()

	newRecorder := func(name string, kind domain.SessionKind) *usecase.Recorder {
		return usecase.NewRecorder(capture, mic, eventSink, logger.With("recorder", name), usecase.RecorderConfig{
			Kind:       kind,
			Audio:      audioCfg,
			CaptureDir: filepath.Join(cfg.Audio.CaptureDir, name),
			ChunkSize:  cfg.Session.ChunkSize,
		})
	}

	transcriber := usecase.NewTranscriber(
		capture,
		deepgram.NewProvider(deepgram.Config{
			APIKey:        cfg.Deepgram.APIKey,
			APIBaseURL:    cfg.Deepgram.APIBaseURL,
			Model:         cfg.Deepgram.Model,
			Language:      cfg.Deepgram.Language,
			SmartFormat:   cfg.Deepgram.SmartFormat,
			EndpointingMS: cfg.Deepgram.EndpointingMS,
		}, logger.With("provider", "deepgram")),
		mic,
		eventSink,
		logger.With("component", "transcriber"),
		usecase.TranscriberConfig{
			Audio: audioCfg,
			Streaming: ports.StreamingConfig{
				SampleRate: cfg.Audio.SampleRate,
				Channels:   cfg.Audio.Channels,
				Encoding:   "linear16",
			},
			ChunkSize:       cfg.Session.ChunkSize,
			StreamingGrace:  cfg.Session.StreamingGrace,
			NoSpeechTimeout: cfg.Session.NoSpeechTimeout,
		},
	)

	speechDir := filepath.Join(cfg.Audio.CaptureDir, "speech")
	chatSpeaker := usecase.NewSpeaker(player, speechDir, logger)
	translationSpeaker := usecase.NewSpeaker(player, speechDir, logger)

	defaults := cfg.Defaults
	return &Services{
		Config: cfg,
		Logger: logger,
		API:    api,

		Math:    usecase.NewChatController(api, domain.FeatureMath, defaults.SearchEngine, eventSink, logger),
		WebChat: usecase.NewChatController(api, domain.FeatureSearch, defaults.SearchEngine, eventSink, logger),
		SmartChat: usecase.NewSmartChatController(api, chatSpeaker, eventSink, logger, usecase.SmartChatOptions{
			SearchEngine: defaults.SmartSearchEngine,
			MaxImages:    defaults.MaxChatImages,
			TTSLanguage:  defaults.TTSLanguage,
		}),
		Search:      usecase.NewSearchController(api, defaults.SearchEngine, defaults.MaxResults, eventSink, logger),
		Data:        usecase.NewDataController(api, eventSink, logger),
		Vision:      usecase.NewVisionController(api, eventSink, logger),
		Speech:      usecase.NewSpeechController(api, newRecorder("speech", domain.SessionKindSpeechRecording), defaults.SpeechLanguage, eventSink, logger),
		ASR:         usecase.NewASRController(api, newRecorder("asr", domain.SessionKindASRRecording), eventSink, logger),
		Images:      usecase.NewImageController(api, eventSink, logger),
		Video:       usecase.NewVideoController(api, defaults.VideoMaxWait, eventSink, logger),
		LLM:         usecase.NewLLMController(api, eventSink, logger),
		Slides:      usecase.NewSlidesController(api, eventSink, logger),
		Summary:     usecase.NewSummaryController(api, eventSink, logger),
		Translation: usecase.NewTranslationController(api, clipboard, translationSpeaker, defaults.TargetLanguage, eventSink, logger),
		Latex:       usecase.NewLatexController(api, clipboard, eventSink, logger),
		Dictation:   usecase.NewDictationController(transcriber, eventSink, logger),

		speakers:  []*usecase.Speaker{chatSpeaker, translationSpeaker},
		logCloser: logCloser,
	}
}

// Close releases the microphone, stops playback and flushes the log file.
func (s *Services) Close() error {
	s.Speech.Close()
	s.ASR.Close()
	s.Dictation.Close()
	for _, speaker := range s.speakers {
		_ = speaker.Stop()
	}
	return s.logCloser.Close()
}
