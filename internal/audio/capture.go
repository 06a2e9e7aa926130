package audio

import (
	"context"
	"io"
	"runtime"
	"strconv"
	"time"

	"agentconsole/internal/ports"
)

const captureStopGrace = 1200 * time.Millisecond

// FFMPEGCapture streams microphone PCM (s16le) from an ffmpeg child process.
type FFMPEGCapture struct {
	command string
}

func NewFFMPEGCapture(command string) *FFMPEGCapture {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGCapture{command: command}
}

func (c *FFMPEGCapture) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	proc, err := startChild(ctx, c.command, captureArgs(cfg), true)
	if err != nil {
		return nil, err
	}
	return &captureSession{proc: proc, stdout: proc.stdout}, nil
}

// captureArgs fills platform defaults for the input device.
func captureArgs(cfg ports.AudioConfig) []string {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	format, device := defaultInput(runtime.GOOS)
	if cfg.InputFormat == "" {
		cfg.InputFormat = format
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = device
	}

	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"-",
	}
}

func defaultInput(goos string) (format string, device string) {
	switch goos {
	case "darwin":
		return "avfoundation", ":0"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "pulse", "default"
	}
}

type captureSession struct {
	proc   *child
	stdout io.Reader
}

func (s *captureSession) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *captureSession) Close() error {
	return s.Stop()
}

func (s *captureSession) Stop() error {
	return s.proc.stop(captureStopGrace)
}
