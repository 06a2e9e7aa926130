package usecase

import (
	"errors"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
)

var (
	ErrNoActiveSession   = errors.New("no active capture session")
	ErrAlreadyRecording  = errors.New("a recording is already in progress")
	ErrMicrophoneBusy    = errors.New("the microphone is in use by another session")
	ErrSpeechUnsupported = errors.New("speech recognition is not available on this device")
	ErrNoSpeech          = errors.New("no speech detected, please try again")
	ErrBusy              = errors.New("a request is already in progress")
	ErrEmptyAudio        = errors.New("text-to-speech returned no audio")
)

// describeError maps err to the code and message shown for it.
// API failures keep the message extracted from the response body.
func describeError(err error) (domain.ErrorCode, string) {
	var (
		validation *domain.ValidationError
		capture    *domain.CaptureError
		reported   *domain.DomainError
		api        *apiclient.Error
	)
	switch {
	case errors.As(err, &validation):
		return domain.ErrorCodeValidation, validation.Message
	case errors.As(err, &capture):
		return capture.Code, capture.Error()
	case errors.As(err, &reported):
		return domain.ErrorCodeDomain, reported.Message
	case errors.As(err, &api):
		return domain.ErrorCodeAPI, api.Message
	case errors.Is(err, ErrEmptyAudio):
		return domain.ErrorCodeEmptyAudio, err.Error()
	case errors.Is(err, ErrSpeechUnsupported):
		return domain.ErrorCodeSpeechUnsupported, err.Error()
	case errors.Is(err, ErrNoSpeech):
		return domain.ErrorCodeNoSpeech, err.Error()
	case errors.Is(err, ErrMicrophoneBusy), errors.Is(err, ErrAlreadyRecording):
		return domain.ErrorCodeMicrophone, err.Error()
	default:
		return domain.ErrorCodeAPI, err.Error()
	}
}
