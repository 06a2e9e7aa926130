package events

import (
	"sync"
	"testing"

	"agentconsole/internal/domain"
)

type captured struct {
	mu     sync.Mutex
	names  []string
	values []any
}

func (c *captured) emit(name string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = append(c.names, name)
	c.values = append(c.values, payload)
}

func TestBusForwardsEveryTopic(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var got captured
	if err := bus.Forward(got.emit); err != nil {
		t.Fatalf("forward failed: %v", err)
	}

	bus.SessionStateChanged(domain.SessionKindRecording, domain.SessionStateRecording, domain.SessionReasonRecordingStarted)
	bus.RecordingTick(domain.SessionKindRecording, 3)
	bus.TranscriptReady("hello")
	bus.SessionError(domain.ErrorCodeMicrophone, "denied")
	bus.FeatureChanged(domain.FeatureSnapshot{Feature: domain.FeatureVision, Busy: true})

	want := []string{TopicSessionState, TopicRecordingTick, TopicTranscriptReady, TopicSessionError, "feature:vision"}
	if len(got.names) != len(want) {
		t.Fatalf("unexpected events: %v", got.names)
	}
	for i := range want {
		if got.names[i] != want[i] {
			t.Fatalf("event %d: got %q want %q", i, got.names[i], want[i])
		}
	}

	tick, ok := got.values[1].(RecordingTickPayload)
	if !ok || tick.Seconds != 3 {
		t.Fatalf("unexpected tick payload: %#v", got.values[1])
	}
	snapshot, ok := got.values[4].(domain.FeatureSnapshot)
	if !ok || !snapshot.Busy {
		t.Fatalf("unexpected feature payload: %#v", got.values[4])
	}
}

func TestBusWithoutSubscribersIsSilent(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	bus.TranscriptReady("nobody listening")
	bus.FeatureChanged(domain.FeatureSnapshot{Feature: domain.FeatureMath})
}
