package usecase

import (
	"fmt"
	"sync"

	"agentconsole/internal/domain"
)

// MicLock hands the microphone to one capture session at a time.
type MicLock struct {
	mu    sync.Mutex
	owner *micClaim
}

type micClaim struct {
	kind domain.SessionKind
}

func NewMicLock() *MicLock {
	return &MicLock{}
}

// Acquire claims the microphone for kind. The returned release func is
// idempotent and only frees the claim it was issued for.
func (l *MicLock) Acquire(kind domain.SessionKind) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.owner != nil {
		return nil, fmt.Errorf("%w (%s)", ErrMicrophoneBusy, l.owner.kind)
	}

	claim := &micClaim{kind: kind}
	l.owner = claim

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.owner == claim {
				l.owner = nil
			}
		})
	}, nil
}

// Owner reports which session kind holds the microphone, or "".
func (l *MicLock) Owner() domain.SessionKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owner == nil {
		return ""
	}
	return l.owner.kind
}
