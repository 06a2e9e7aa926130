package audio

import (
	"context"
	"testing"
	"time"
)

func TestFFplayPlayerStop(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "ffplay.sh", "#!/usr/bin/env bash\nexec sleep 5\n")
	player := NewFFplayPlayer(script)

	pb, err := player.Play(context.Background(), "/tmp/speech.mp3")
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if err := pb.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	select {
	case <-pb.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("playback did not finish after stop")
	}
}

func TestFFplayPlayerShortClipFinishes(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "ffplay.sh", "#!/usr/bin/env bash\nexit 0\n")
	pb, err := NewFFplayPlayer(script).Play(context.Background(), "/tmp/speech.mp3")
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}

	select {
	case <-pb.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("expected playback to be done")
	}
	if err := pb.Stop(); err != nil {
		t.Fatalf("stop after natural end failed: %v", err)
	}
}

func TestFFplayPlayerRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := NewFFplayPlayer("ffplay").Play(context.Background(), " "); err == nil {
		t.Fatalf("expected missing path error")
	}
}
