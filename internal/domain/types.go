package domain

// SessionKind names the microphone-backed capture session an event belongs to.
type SessionKind string

const (
	SessionKindRecording  SessionKind = "recording"
	SessionKindTranscript SessionKind = "transcript"

	// Per-panel recorders.
	SessionKindSpeechRecording SessionKind = "speech_recording"
	SessionKindASRRecording    SessionKind = "asr_recording"
)

// SessionState models a capture session lifecycle.
type SessionState string

const (
	SessionStateIdle      SessionState = "idle"
	SessionStateRecording SessionState = "recording"
	SessionStateListening SessionState = "listening"
	SessionStateStopping  SessionState = "stopping"
	SessionStateStopped   SessionState = "stopped"
	SessionStateError     SessionState = "error"
)

// SessionStateReason provides a structured reason for state transitions.
type SessionStateReason string

const (
	SessionReasonMicCold             SessionStateReason = "mic_cold"
	SessionReasonRecordingStarted    SessionStateReason = "recording_started"
	SessionReasonRecordingFinished   SessionStateReason = "recording_finished"
	SessionReasonRecordingDiscarded  SessionStateReason = "recording_discarded"
	SessionReasonListeningStarted    SessionStateReason = "listening_started"
	SessionReasonTranscriptReady     SessionStateReason = "transcript_ready"
	SessionReasonTranscriptCancelled SessionStateReason = "transcript_cancelled"
	SessionReasonNoSpeech            SessionStateReason = "no_speech"
	SessionReasonTranscriptionFailed SessionStateReason = "transcription_failed"
	SessionReasonMicrophoneDenied    SessionStateReason = "microphone_denied"
)

// ErrorCode identifies the category of an error surfaced to the UI.
type ErrorCode string

const (
	ErrorCodeStartup           ErrorCode = "startup"
	ErrorCodeMicrophone        ErrorCode = "microphone"
	ErrorCodeAudioStop         ErrorCode = "audio_stop"
	ErrorCodeAudioStream       ErrorCode = "audio_stream"
	ErrorCodeTranscription     ErrorCode = "transcription"
	ErrorCodeSpeechUnsupported ErrorCode = "speech_unsupported"
	ErrorCodeNoSpeech          ErrorCode = "no_speech"
	ErrorCodePlayback          ErrorCode = "playback"
	ErrorCodeEmptyAudio        ErrorCode = "empty_audio"
	ErrorCodeClipboard         ErrorCode = "clipboard"
	ErrorCodeValidation        ErrorCode = "validation"
	ErrorCodeAPI               ErrorCode = "api"
	ErrorCodeDomain            ErrorCode = "domain"
)

// TranscriptKind identifies whether a stream event is partial or final text.
type TranscriptKind string

const (
	TranscriptKindPartial TranscriptKind = "partial"
	TranscriptKindFinal   TranscriptKind = "final"
)

// TranscriptEvent represents incremental transcription output from a provider.
type TranscriptEvent struct {
	Kind          TranscriptKind `json:"kind"`
	Text          string         `json:"text"`
	IsSpeechFinal bool           `json:"isSpeechFinal"`
}

// TranscriptOutcomeKind is the terminal state of a one-shot transcript session.
type TranscriptOutcomeKind string

const (
	TranscriptOutcomeResult TranscriptOutcomeKind = "result"
	TranscriptOutcomeError  TranscriptOutcomeKind = "error"
	TranscriptOutcomeEnded  TranscriptOutcomeKind = "ended"
)

// TranscriptOutcome is delivered exactly once per transcript session.
type TranscriptOutcome struct {
	Kind    TranscriptOutcomeKind `json:"kind"`
	Text    string                `json:"text,omitempty"`
	Message string                `json:"message,omitempty"`
	Err     error                 `json:"-"`
}

// RecordedAudio is the finished file produced when a recording stops.
type RecordedAudio struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Seconds  int    `json:"seconds"`
	Size     int64  `json:"size"`
}

// Status summarizes the current state of a capture session.
type Status struct {
	State   SessionState `json:"state"`
	Active  bool         `json:"active"`
	Seconds int          `json:"seconds,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Feature names one controller of the console.
type Feature string

const (
	FeatureMath        Feature = "math"
	FeatureSearch      Feature = "search"
	FeatureSmartChat   Feature = "smart_chat"
	FeatureData        Feature = "data_analysis"
	FeatureVision      Feature = "vision"
	FeatureSpeech      Feature = "speech_to_text"
	FeatureASR         Feature = "asr"
	FeatureImage       Feature = "image_generation"
	FeatureVideo       Feature = "video_generation"
	FeatureLLM         Feature = "local_llm"
	FeatureSlides      Feature = "slide_generation"
	FeatureSummary     Feature = "summarization"
	FeatureTranslation Feature = "translation"
	FeatureLatex       Feature = "latex_ocr"
	FeatureDictation   Feature = "dictation"
	FeatureWebSearch   Feature = "web_search"
)

// FeatureSnapshot is the observable state of a controller after each change.
type FeatureSnapshot struct {
	Feature   Feature   `json:"feature"`
	Busy      bool      `json:"busy"`
	Error     string    `json:"error,omitempty"`
	ErrorCode ErrorCode `json:"errorCode,omitempty"`
	Notice    string    `json:"notice,omitempty"`
	Result    any       `json:"result,omitempty"`
}
