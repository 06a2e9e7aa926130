package deepgram

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"agentconsole/internal/domain"
)

var (
	closeStreamMessage = []byte(`{"type":"CloseStream"}`)

	errSendClosed    = errors.New("audio stream is already closed")
	errSessionClosed = errors.New("session closed")
)

// streamingSession runs one reader and one writer over the socket. The
// first error either of them returns becomes the session error; a clean
// close from the server is not an error.
type streamingSession struct {
	conn *websocket.Conn

	events   chan domain.TranscriptEvent
	audio    chan []byte
	received chan struct{}
	done     chan struct{}

	// err is written once before done is closed.
	err error

	sendMu     sync.RWMutex
	sendClosed bool
	finishSend sync.Once
	shutdown   sync.Once
}

func newStreamingSession(conn *websocket.Conn) *streamingSession {
	s := &streamingSession{
		conn:     conn,
		events:   make(chan domain.TranscriptEvent, 64),
		audio:    make(chan []byte, 32),
		received: make(chan struct{}),
		done:     make(chan struct{}),
	}

	var loops errgroup.Group
	loops.Go(s.receive)
	loops.Go(s.transmit)
	go func() {
		s.err = loops.Wait()
		close(s.events)
		_ = conn.Close()
		close(s.done)
	}()
	return s
}

func (s *streamingSession) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.sendClosed {
		return errSendClosed
	}

	select {
	case s.audio <- append([]byte(nil), chunk...):
		return nil
	case <-s.done:
		if s.err != nil {
			return s.err
		}
		return errSessionClosed
	}
}

// CloseSend stops accepting audio. The writer flushes what is queued and
// asks the server to finish with CloseStream.
func (s *streamingSession) CloseSend() error {
	s.finishSend.Do(func() {
		s.sendMu.Lock()
		s.sendClosed = true
		close(s.audio)
		s.sendMu.Unlock()
	})
	return nil
}

func (s *streamingSession) Events() <-chan domain.TranscriptEvent {
	return s.events
}

func (s *streamingSession) Wait() error {
	<-s.done
	return s.err
}

func (s *streamingSession) Close() error {
	s.shutdown.Do(func() {
		// The socket goes first so a SendAudio blocked under sendMu returns.
		_ = s.conn.Close()
		_ = s.CloseSend()
	})
	return s.Wait()
}

// transmit forwards queued audio until CloseSend, or until the server has
// stopped talking to us.
func (s *streamingSession) transmit() error {
	for {
		select {
		case <-s.received:
			return nil
		case chunk, ok := <-s.audio:
			if !ok {
				return s.write(websocket.TextMessage, closeStreamMessage, "finish stream")
			}
			if err := s.write(websocket.BinaryMessage, chunk, "send audio"); err != nil {
				return err
			}
		}
	}
}

func (s *streamingSession) write(kind int, payload []byte, action string) error {
	err := s.conn.WriteMessage(kind, payload)
	if err == nil || errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	select {
	case <-s.received:
		return nil
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}

func (s *streamingSession) receive() error {
	defer close(s.received)

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if isCleanClose(err) {
				return nil
			}
			return fmt.Errorf("read transcript: %w", err)
		}

		var response deepgramResponse
		if err := sonic.Unmarshal(payload, &response); err != nil {
			continue
		}
		if strings.EqualFold(response.Type, "Error") {
			return providerError(response)
		}
		if event, ok := toEvent(response); ok {
			s.publish(event)
		}
	}
}

// publish drops the event rather than block the reader when nobody drains.
func (s *streamingSession) publish(event domain.TranscriptEvent) {
	select {
	case s.events <- event:
	default:
	}
}

// isCleanClose reports whether err is the server ending the stream normally,
// including after CloseStream.
func isCleanClose(err error) bool {
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		return false
	}
	switch closeErr.Code {
	case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
		return true
	default:
		return false
	}
}

func providerError(response deepgramResponse) error {
	for _, text := range []string{response.Message, response.Description} {
		if text = strings.TrimSpace(text); text != "" {
			return errors.New(text)
		}
	}
	return errors.New("deepgram returned an unknown error")
}
