package reload

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pohlang/plhub/internal/build"
)

func TestStrategyFor(t *testing.T) {
	tests := []struct {
		platform string
		want     Strategy
	}{
		{"android", StrategyIncremental},
		{"ios", StrategyStatePreserve},
		{"macos", StrategyStatePreserve},
		{"windows", StrategyModuleReplace},
		{"web", StrategyModuleReplace},
		{"Android", StrategyIncremental},
		{"linux", StrategyFullRestart},
		{"", StrategyFullRestart},
		{"toaster", StrategyFullRestart},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StrategyFor(tt.platform), "platform %q", tt.platform)
	}
}

func newTestServer(t *testing.T, cfg Config) (*Server, string) {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := NewServer(cfg)
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWebSocket))
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func connect(t *testing.T, srv *Server, url, platform string) *websocket.Conn {
	t.Helper()
	before := srv.SessionCount()
	conn := dial(t, url)
	require.NoError(t, conn.WriteJSON(Hello{Type: "hello", Platform: platform, Version: "0.5.0"}))
	require.Eventually(t, func() bool {
		return srv.SessionCount() == before+1
	}, 2*time.Second, 10*time.Millisecond, "session was not registered")
	return conn
}

func TestBroadcastAfterSuccessfulBuild(t *testing.T) {
	srv, url := newTestServer(t, Config{})
	conn := connect(t, srv, url, "android")

	srv.Broadcast(build.Result{Succeeded: []string{"src/a.poh", "src/b.poh"}})

	var msg ReloadMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, "reload", msg.Type)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, []string{"src/a.poh", "src/b.poh"}, msg.ChangedFiles)
	assert.Equal(t, StrategyIncremental, msg.Strategy)
	assert.NotZero(t, msg.Timestamp)
}

func TestBroadcastSuppressedOnFailure(t *testing.T) {
	srv, url := newTestServer(t, Config{})
	conn := connect(t, srv, url, "web")

	srv.Broadcast(build.Result{
		Succeeded: []string{"src/a.poh"},
		Failed:    []build.Failure{{Path: "src/b.poh", Diagnostics: []string{"boom"}}},
	})

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var msg ReloadMessage
	err := conn.ReadJSON(&msg)
	require.Error(t, err, "no reload may be sent when the build had failures")
}

func TestBroadcastPerRecipientStrategy(t *testing.T) {
	srv, url := newTestServer(t, Config{})
	android := connect(t, srv, url, "android")
	web := connect(t, srv, url, "web")
	other := connect(t, srv, url, "playstation")

	srv.Broadcast(build.Result{Succeeded: []string{"src/a.poh"}})

	read := func(conn *websocket.Conn) ReloadMessage {
		var msg ReloadMessage
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	a, w, o := read(android), read(web), read(other)
	assert.Equal(t, StrategyIncremental, a.Strategy)
	assert.Equal(t, StrategyModuleReplace, w.Strategy)
	assert.Equal(t, StrategyFullRestart, o.Strategy)

	// One broadcast, one shared message id across recipients.
	assert.Equal(t, a.ID, w.ID)
	assert.Equal(t, a.ID, o.ID)
}

func TestBroadcastSkipsReloadingSession(t *testing.T) {
	srv, url := newTestServer(t, Config{})
	slowpoke := connect(t, srv, url, "android")
	peer := connect(t, srv, url, "web")

	srv.Broadcast(build.Result{Succeeded: []string{"src/a.poh"}})

	read := func(conn *websocket.Conn, window time.Duration) (ReloadMessage, error) {
		var msg ReloadMessage
		conn.SetReadDeadline(time.Now().Add(window))
		err := conn.ReadJSON(&msg)
		return msg, err
	}

	_, err := read(slowpoke, 2*time.Second)
	require.NoError(t, err)
	peerMsg, err := read(peer, 2*time.Second)
	require.NoError(t, err)

	// peer acks, slowpoke does not: the next broadcast reaches only
	// sessions back in the connected state.
	require.NoError(t, peer.WriteJSON(Ack{Type: "ack", ID: peerMsg.ID, Status: AckApplied}))
	require.Eventually(t, func() bool {
		for _, s := range srv.Sessions() {
			if s.Platform == "web" && s.State() == StateConnected {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	srv.Broadcast(build.Result{Succeeded: []string{"src/b.poh"}})

	second, err := read(peer, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/b.poh"}, second.ChangedFiles)

	_, err = read(slowpoke, 300*time.Millisecond)
	require.Error(t, err, "a session mid-reload must not receive the next reload")
}

func TestAckReturnsSessionToConnected(t *testing.T) {
	srv, url := newTestServer(t, Config{})
	conn := connect(t, srv, url, "ios")

	srv.Broadcast(build.Result{Succeeded: []string{"src/a.poh"}})

	var msg ReloadMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))

	sessions := srv.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, StateReloading, sessions[0].State())

	require.NoError(t, conn.WriteJSON(Ack{Type: "ack", ID: msg.ID, Status: AckApplied}))
	require.Eventually(t, func() bool {
		return sessions[0].State() == StateConnected
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, msg.ID, sessions[0].LastAckID())
}

func TestAckTimeoutIsSoft(t *testing.T) {
	srv, url := newTestServer(t, Config{AckTimeout: 100 * time.Millisecond})
	conn := connect(t, srv, url, "android")

	srv.Broadcast(build.Result{Succeeded: []string{"src/a.poh"}})

	var msg ReloadMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))

	// Never ack. The session degrades but stays registered.
	sessions := srv.Sessions()
	require.Len(t, sessions, 1)
	require.Eventually(t, func() bool {
		return sessions[0].State() == StateConnected
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, srv.SessionCount())
	assert.Empty(t, sessions[0].LastAckID())
}

func TestHandshakeTimeoutDropsClient(t *testing.T) {
	srv, url := newTestServer(t, Config{HandshakeTimeout: 100 * time.Millisecond})
	conn := dial(t, url)

	// Say nothing: the server must hang up on us.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.Equal(t, 0, srv.SessionCount())
}

func TestMalformedHelloRejected(t *testing.T) {
	srv, url := newTestServer(t, Config{})
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ack", "id": "nope"}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.Equal(t, 0, srv.SessionCount())
}

func TestDisconnectUnregisters(t *testing.T) {
	srv, url := newTestServer(t, Config{})
	conn := connect(t, srv, url, "web")

	conn.Close()
	require.Eventually(t, func() bool {
		return srv.SessionCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWriteFailureRemovesSessionAndContinues(t *testing.T) {
	srv, url := newTestServer(t, Config{})
	healthy := connect(t, srv, url, "android")

	// Kill the second client's TCP side, then race a broadcast against
	// the reader noticing. Either path must leave only the healthy
	// session registered and still served.
	dead := connect(t, srv, url, "web")
	dead.Close()

	srv.Broadcast(build.Result{Succeeded: []string{"src/a.poh"}})

	var msg ReloadMessage
	healthy.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, healthy.ReadJSON(&msg))
	assert.Equal(t, StrategyIncremental, msg.Strategy)

	require.Eventually(t, func() bool {
		return srv.SessionCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCloseSendsGoodbye(t *testing.T) {
	srv, url := newTestServer(t, Config{})
	conn := connect(t, srv, url, "macos")

	srv.Close()

	var msg Goodbye
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "goodbye", msg.Type)
	assert.Equal(t, 0, srv.SessionCount())
}

func TestBroadcastWithNoSessions(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	// Must not panic or block.
	srv.Broadcast(build.Result{Succeeded: []string{"src/a.poh"}})
	srv.Broadcast(build.Result{})
}
