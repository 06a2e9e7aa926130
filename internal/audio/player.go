package audio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agentconsole/internal/ports"
)

const playbackStopGrace = 300 * time.Millisecond

// FFplayPlayer plays audio files through a headless ffplay child.
type FFplayPlayer struct {
	command string
}

func NewFFplayPlayer(command string) *FFplayPlayer {
	if command == "" {
		command = "ffplay"
	}
	return &FFplayPlayer{command: command}
}

func (p *FFplayPlayer) Play(ctx context.Context, path string) (ports.Playback, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("no audio file to play")
	}
	args := []string{"-nodisp", "-autoexit", "-hide_banner", "-loglevel", "error", path}
	proc, err := startChild(ctx, p.command, args, false)
	if err != nil {
		return nil, err
	}
	return &playback{proc: proc}, nil
}

type playback struct {
	proc *child
}

func (p *playback) Stop() error {
	return p.proc.stop(playbackStopGrace)
}

func (p *playback) Done() <-chan struct{} {
	return p.proc.done
}
