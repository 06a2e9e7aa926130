package usecase

import (
	"context"
	"sync"

	"agentconsole/internal/domain"
	"agentconsole/internal/ports"
)

type activeSession struct {
	kind    domain.SessionKind
	cancel  context.CancelFunc
	audio   ports.AudioSession
	release func()

	stateMu sync.Mutex
	state   domain.SessionState

	audioDone chan struct{}
}

func (s *activeSession) setState(state domain.SessionState) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = state
}

func (s *activeSession) getState() domain.SessionState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// stopAudio stops the capture and waits for the pump to drain it.
func (s *activeSession) stopAudio() error {
	err := s.audio.Stop()
	<-s.audioDone
	return err
}

// teardown releases everything the session holds. Safe to call twice.
func (s *activeSession) teardown() {
	s.cancel()
	_ = s.audio.Stop()
	<-s.audioDone
	s.release()
}
