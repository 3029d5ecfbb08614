package reload

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pohlang/plhub/internal/build"
	plherr "github.com/pohlang/plhub/internal/errors"
)

const (
	// DefaultHandshakeTimeout bounds how long a client may sit between
	// connecting and sending its Hello.
	DefaultHandshakeTimeout = 5 * time.Second
	// DefaultAckTimeout is the soft window for reload acknowledgements.
	DefaultAckTimeout = 10 * time.Second
)

// Config configures a hot-reload Server.
type Config struct {
	HandshakeTimeout time.Duration
	AckTimeout       time.Duration
	Logger           *slog.Logger
	Registry         prometheus.Registerer
}

// Server maintains runner client sessions over WebSocket and broadcasts
// reload instructions after successful builds. It decides nothing about
// builds itself; it only consumes their results.
type Server struct {
	handshakeTimeout time.Duration
	ackTimeout       time.Duration
	logger           *slog.Logger
	upgrader         websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionsGauge   prometheus.Gauge
	broadcastsTotal *prometheus.CounterVec
}

// NewServer creates a reload server. Zero-value timeouts take the
// package defaults.
func NewServer(cfg Config) *Server {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = DefaultAckTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(cfg.Registry)
	return &Server{
		handshakeTimeout: cfg.HandshakeTimeout,
		ackTimeout:       cfg.AckTimeout,
		logger:           cfg.Logger.With("component", "reload"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local dev tooling, any origin
			},
		},
		sessions: make(map[string]*Session),
		sessionsGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "plhub",
			Subsystem: "reload",
			Name:      "sessions",
			Help:      "Connected runner client sessions.",
		}),
		broadcastsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plhub",
			Subsystem: "reload",
			Name:      "broadcasts_total",
			Help:      "Reload broadcasts by outcome.",
		}, []string{"result"}),
	}
}

// HandleWebSocket upgrades the request and runs the session until the
// client disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err, "remote", req.RemoteAddr)
		return
	}

	session, err := s.handshake(conn)
	if err != nil {
		s.logger.Warn("client rejected", "err", err, "remote", req.RemoteAddr)
		conn.Close()
		return
	}

	s.register(session)
	s.logger.Info("client connected",
		"session", session.ID,
		"platform", session.Platform,
		"version", session.Version,
		"strategy", session.Strategy())

	s.readLoop(session)

	s.unregister(session.ID)
	session.close()
	s.logger.Info("client disconnected", "session", session.ID)
}

// handshake waits for the client's Hello within the handshake window.
func (s *Server) handshake(conn *websocket.Conn) (*Session, error) {
	conn.SetReadDeadline(time.Now().Add(s.handshakeTimeout))
	defer conn.SetReadDeadline(time.Time{})

	var hello Hello
	if err := conn.ReadJSON(&hello); err != nil {
		return nil, plherr.New("E201").WithDetail(err.Error())
	}
	if hello.Type != msgTypeHello {
		return nil, plherr.New("E203").WithDetail("expected hello, got " + hello.Type)
	}

	return &Session{
		ID:          uuid.NewString(),
		Platform:    hello.Platform,
		Version:     hello.Version,
		ConnectedAt: time.Now(),
		conn:        conn,
		state:       StateConnected,
	}, nil
}

// readLoop consumes client frames until the connection drops. Only acks
// are meaningful; anything else is logged and skipped.
func (s *Server) readLoop(session *Session) {
	for {
		_, data, err := session.conn.ReadMessage()
		if err != nil {
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.logger.Warn("dropping frame",
				"err", plherr.New("E203").WithDetail(err.Error()),
				"session", session.ID)
			continue
		}

		switch env.Type {
		case msgTypeAck:
			var ack Ack
			if err := json.Unmarshal(data, &ack); err != nil {
				s.logger.Warn("dropping frame",
					"err", plherr.New("E203").WithDetail(err.Error()),
					"session", session.ID)
				continue
			}
			s.handleAck(session, ack)
		default:
			s.logger.Debug("ignoring frame", "type", env.Type, "session", session.ID)
		}
	}
}

func (s *Server) handleAck(session *Session, ack Ack) {
	matched := session.ack(ack.ID)
	if !matched {
		s.logger.Debug("ack for unknown reload", "session", session.ID, "id", ack.ID)
		return
	}
	if ack.Status == AckFailed {
		s.logger.Warn("client failed to apply reload", "session", session.ID, "id", ack.ID)
		return
	}
	s.logger.Debug("reload applied", "session", session.ID, "id", ack.ID)
}

// Broadcast fans a reload instruction out to every connected session.
// A result with any failure suppresses the broadcast entirely: clients
// keep running the last good build.
func (s *Server) Broadcast(result build.Result) {
	if result.Empty() {
		return
	}
	if !result.OK() {
		s.broadcastsTotal.WithLabelValues("suppressed").Inc()
		s.logger.Info("reload suppressed, build had failures", "failed", len(result.Failed))
		return
	}

	id := uuid.NewString()
	now := time.Now().UnixMilli()

	s.mu.RLock()
	recipients := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		recipients = append(recipients, session)
	}
	s.mu.RUnlock()

	sent := 0
	for _, session := range recipients {
		if session.State() != StateConnected {
			// Still applying (or past) a reload; it catches up on its
			// next change once it is back to connected.
			s.logger.Debug("skipping client, not connected",
				"session", session.ID, "state", session.State())
			continue
		}
		msg := ReloadMessage{
			Type:         msgTypeReload,
			ID:           id,
			ChangedFiles: result.Succeeded,
			Strategy:     session.Strategy(),
			Timestamp:    now,
		}
		if err := session.send(msg); err != nil {
			// Best effort: drop this session, keep going.
			s.logger.Warn("dropping client, write failed", "session", session.ID, "err", err)
			s.unregister(session.ID)
			session.close()
			continue
		}
		sid := session.ID
		session.beginReload(id, s.ackTimeout, func() {
			s.logger.Warn("client degraded",
				"err", plherr.New("E202"),
				"session", sid,
				"id", id)
		})
		sent++
	}

	s.broadcastsTotal.WithLabelValues("sent").Inc()
	s.logger.Info("reload broadcast",
		"id", id,
		"files", len(result.Succeeded),
		"clients", sent)
}

// SessionCount returns the number of registered sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sessions returns a snapshot of the registered sessions.
func (s *Server) Sessions() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	return out
}

// Close notifies every client and tears all sessions down.
func (s *Server) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, session := range sessions {
		session.send(Goodbye{Type: msgTypeGoodbye})
		session.close()
	}
	s.sessionsGauge.Set(0)
}

func (s *Server) register(session *Session) {
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	s.sessionsGauge.Inc()
}

func (s *Server) unregister(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		s.sessionsGauge.Dec()
	}
}
