package usecase

import (
	"context"
	"sync"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/audio"
	"agentconsole/internal/domain"
	"agentconsole/internal/media"
)

// AudioSource describes the audio a transcription controller will send.
type AudioSource struct {
	Name     string `json:"name"`
	Size     int    `json:"size"`
	Seconds  int    `json:"seconds,omitempty"`
	Recorded bool   `json:"recorded"`
}

// audioInput holds either a finished recording or a picked file, whichever
// came last.
type audioInput struct {
	recorder *Recorder

	mu     sync.Mutex
	file   *apiclient.File
	source *AudioSource
}

func (in *audioInput) startRecording(ctx context.Context) error {
	if in.recorder == nil {
		return &domain.CaptureError{Code: domain.ErrorCodeMicrophone, Message: "recording is not available"}
	}
	return in.recorder.Start(ctx)
}

// stopRecording keeps the finished recording as the current input. It does
// nothing when no recording is running.
func (in *audioInput) stopRecording(ctx context.Context) (*AudioSource, error) {
	if in.recorder == nil {
		return nil, nil
	}
	recorded, err := in.recorder.Stop(ctx)
	if err != nil || recorded == nil {
		return nil, err
	}

	file, err := apiclient.ReadFile(recorded.Path)
	if err != nil {
		return nil, err
	}
	file.Name = recorded.Name
	file.ContentType = audio.WAVMIMEType

	source := &AudioSource{Name: recorded.Name, Size: len(file.Data), Seconds: recorded.Seconds, Recorded: true}
	in.set(&file, source)
	return source, nil
}

func (in *audioInput) selectFile(file apiclient.File) (*AudioSource, error) {
	if err := media.CheckAudio("audio", file); err != nil {
		return nil, err
	}
	source := &AudioSource{Name: file.Name, Size: len(file.Data)}
	in.set(&file, source)
	return source, nil
}

func (in *audioInput) set(file *apiclient.File, source *AudioSource) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.file = file
	in.source = source
}

func (in *audioInput) current() (*apiclient.File, *AudioSource) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.file, in.source
}

// require returns the current audio or a validation error.
func (in *audioInput) require() (apiclient.File, error) {
	file, _ := in.current()
	if file == nil || len(file.Data) == 0 {
		return apiclient.File{}, domain.Invalid("audio", "please record or choose an audio file first")
	}
	return *file, nil
}

func (in *audioInput) close() {
	if in.recorder != nil {
		in.recorder.Close()
	}
}
