package reload

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SessionState tracks where a client is in its lifecycle.
type SessionState int

const (
	StateConnecting SessionState = iota
	StateConnected
	StateReloading
	StateDisconnected
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReloading:
		return "reloading"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Session is one connected runner client. A session is created on
// socket accept, becomes usable after the Hello handshake, and is
// destroyed on disconnect.
type Session struct {
	ID          string
	Platform    string
	Version     string
	ConnectedAt time.Time

	conn *websocket.Conn

	// writeMu serializes frames; gorilla conns allow one writer at a time.
	writeMu sync.Mutex

	mu        sync.Mutex
	state     SessionState
	lastAckID string
	pendingID string
	ackTimer  *time.Timer
}

// State returns the session's current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastAckID returns the id of the most recent reload the client
// acknowledged, or "" if it has not acknowledged any.
func (s *Session) LastAckID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAckID
}

// Strategy returns the reload strategy for this session's platform.
func (s *Session) Strategy() Strategy {
	return StrategyFor(s.Platform)
}

func (s *Session) setState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// send writes one JSON frame to the client.
func (s *Session) send(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// beginReload marks the session as waiting for an ack to id. onTimeout
// fires if no ack arrives within the window; the session is not dropped,
// only reported.
func (s *Session) beginReload(id string, window time.Duration, onTimeout func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateReloading
	s.pendingID = id
	if s.ackTimer != nil {
		s.ackTimer.Stop()
	}
	s.ackTimer = time.AfterFunc(window, func() {
		s.mu.Lock()
		expired := s.pendingID == id
		if expired {
			s.pendingID = ""
			s.state = StateConnected
		}
		s.mu.Unlock()
		if expired {
			onTimeout()
		}
	})
}

// ack records a client acknowledgement. It reports whether id matched
// the reload the session was waiting on.
func (s *Session) ack(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAckID = id
	if s.pendingID != id {
		return false
	}
	s.pendingID = ""
	s.state = StateConnected
	if s.ackTimer != nil {
		s.ackTimer.Stop()
		s.ackTimer = nil
	}
	return true
}

// close tears the session down. Safe to call more than once.
func (s *Session) close() {
	s.mu.Lock()
	s.state = StateDisconnected
	if s.ackTimer != nil {
		s.ackTimer.Stop()
		s.ackTimer = nil
	}
	s.mu.Unlock()
	s.conn.Close()
}
