package usecase

import (
	"context"
	"log/slog"
	"sync"

	"agentconsole/internal/domain"
	"agentconsole/internal/ports"
)

// featureState is the busy/error/result cell every controller owns.
type featureState struct {
	feature domain.Feature
	events  ports.EventSink
	logger  *slog.Logger

	mu     sync.Mutex
	busy   bool
	err    string
	code   domain.ErrorCode
	notice string
	result any
}

func newFeatureState(feature domain.Feature, events ports.EventSink, logger *slog.Logger) *featureState {
	if logger == nil {
		logger = slog.Default()
	}
	return &featureState{
		feature: feature,
		events:  events,
		logger:  logger.With("feature", string(feature)),
	}
}

func (s *featureState) Snapshot() domain.FeatureSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *featureState) snapshotLocked() domain.FeatureSnapshot {
	return domain.FeatureSnapshot{
		Feature:   s.feature,
		Busy:      s.busy,
		Error:     s.err,
		ErrorCode: s.code,
		Notice:    s.notice,
		Result:    s.result,
	}
}

func (s *featureState) publish(snapshot domain.FeatureSnapshot) {
	if s.events != nil {
		s.events.FeatureChanged(snapshot)
	}
}

// update mutates state under the lock and publishes the result.
func (s *featureState) update(fn func(s *featureState)) {
	s.mu.Lock()
	fn(s)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snapshot)
}

func (s *featureState) isBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// begin claims the single in-flight slot and clears the previous error.
func (s *featureState) begin() error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	s.err, s.code, s.notice = "", "", ""
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snapshot)
	return nil
}

// end releases the slot. A nil err replaces the result; otherwise the
// previous result stays and the error is surfaced.
func (s *featureState) end(result any, err error) {
	s.update(func(s *featureState) {
		s.busy = false
		if err != nil {
			s.code, s.err = describeError(err)
			return
		}
		s.result = result
	})
	if err != nil {
		s.logger.Warn("request failed", "error", err)
	}
}

// release frees the slot without touching the result or error.
func (s *featureState) release() {
	s.update(func(s *featureState) {
		s.busy = false
	})
}

// report records a failure outside the busy guard, such as a validation
// error that never reached the network.
func (s *featureState) report(err error) error {
	s.update(func(s *featureState) {
		s.code, s.err = describeError(err)
	})
	return err
}

// failWith ends a request that still changed the result, like a chat
// error entry appended to the history.
func (s *featureState) failWith(result any, err error) {
	s.update(func(s *featureState) {
		s.busy = false
		s.result = result
		s.code, s.err = describeError(err)
	})
	s.logger.Warn("request failed", "error", err)
}

// setResult publishes a local change to the result.
func (s *featureState) setResult(result any) {
	s.update(func(s *featureState) {
		s.result = result
	})
}

func (s *featureState) setNotice(notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = notice
}

func (s *featureState) clearError() {
	s.update(func(s *featureState) {
		s.err, s.code = "", ""
	})
}

// submit runs one request under the busy guard. The value call returns
// becomes the published result on success.
func submit[T any](ctx context.Context, s *featureState, call func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := s.begin(); err != nil {
		return zero, err
	}

	var (
		out T
		err error
	)
	defer func() {
		s.end(out, err)
	}()

	out, err = call(ctx)
	if err != nil {
		return zero, err
	}
	return out, nil
}
