// Package events fans controller and capture-session changes out to whoever
// renders them.
package events

import (
	evbus "github.com/asaskevich/EventBus"

	"agentconsole/internal/domain"
)

// Topics published on the bus.
const (
	TopicSessionState    = "session:state"
	TopicRecordingTick   = "recording:tick"
	TopicTranscriptReady = "transcript:ready"
	TopicSessionError    = "session:error"
	TopicFeature         = "feature:changed"
)

type SessionStatePayload struct {
	Kind   domain.SessionKind        `json:"kind"`
	State  domain.SessionState       `json:"state"`
	Reason domain.SessionStateReason `json:"reason"`
}

type RecordingTickPayload struct {
	Kind    domain.SessionKind `json:"kind"`
	Seconds int                `json:"seconds"`
}

type TranscriptPayload struct {
	Text string `json:"text"`
}

type SessionErrorPayload struct {
	Code   domain.ErrorCode `json:"code"`
	Detail string           `json:"detail"`
}

// Bus implements ports.EventSink over a synchronous event bus.
type Bus struct {
	bus evbus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: evbus.New()}
}

func (b *Bus) SessionStateChanged(kind domain.SessionKind, state domain.SessionState, reason domain.SessionStateReason) {
	b.bus.Publish(TopicSessionState, SessionStatePayload{Kind: kind, State: state, Reason: reason})
}

func (b *Bus) RecordingTick(kind domain.SessionKind, seconds int) {
	b.bus.Publish(TopicRecordingTick, RecordingTickPayload{Kind: kind, Seconds: seconds})
}

func (b *Bus) TranscriptReady(text string) {
	b.bus.Publish(TopicTranscriptReady, TranscriptPayload{Text: text})
}

func (b *Bus) FeatureChanged(snapshot domain.FeatureSnapshot) {
	b.bus.Publish(TopicFeature, snapshot)
}

func (b *Bus) SessionError(code domain.ErrorCode, detail string) {
	b.bus.Publish(TopicSessionError, SessionErrorPayload{Code: code, Detail: detail})
}

// EmitFunc delivers one named event to the UI.
type EmitFunc func(name string, payload any)

// Forward subscribes emit to every topic. Feature snapshots are renamed to
// "feature:<name>" so each view only listens to its own controller.
func (b *Bus) Forward(emit EmitFunc) error {
	for _, topic := range []string{TopicSessionState, TopicRecordingTick, TopicTranscriptReady, TopicSessionError} {
		if err := b.subscribe(topic, emit); err != nil {
			return err
		}
	}
	return b.bus.Subscribe(TopicFeature, func(snapshot domain.FeatureSnapshot) {
		emit("feature:"+string(snapshot.Feature), snapshot)
	})
}

func (b *Bus) subscribe(topic string, emit EmitFunc) error {
	switch topic {
	case TopicSessionState:
		return b.bus.Subscribe(topic, func(p SessionStatePayload) { emit(topic, p) })
	case TopicRecordingTick:
		return b.bus.Subscribe(topic, func(p RecordingTickPayload) { emit(topic, p) })
	case TopicTranscriptReady:
		return b.bus.Subscribe(topic, func(p TranscriptPayload) { emit(topic, p) })
	default:
		return b.bus.Subscribe(topic, func(p SessionErrorPayload) { emit(topic, p) })
	}
}
