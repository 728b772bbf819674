package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLiveServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s, _ := newTestServer(t, false)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dialLiveUpdate(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	return conn
}

func waitForReceivers(t *testing.T, s *Server, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.bus.ReceiverCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("receiver count never reached %d (now %d)", want, s.bus.ReceiverCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readOne(t *testing.T, conn *websocket.Conn, timeout time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, _, err := conn.Read(ctx)
	return err
}

func TestReloadReachesAllSessions(t *testing.T) {
	s, ts := startLiveServer(t)

	a := dialLiveUpdate(t, ts)
	defer a.Close(websocket.StatusNormalClosure, "")
	b := dialLiveUpdate(t, ts)
	defer b.Close(websocket.StatusNormalClosure, "")

	waitForReceivers(t, s, 2)

	require.NoError(t, s.bus.Publish())

	assert.NoError(t, readOne(t, a, 2*time.Second), "first session gets the reload")
	assert.NoError(t, readOne(t, b, 2*time.Second), "second session gets the reload")

	// Exactly one message each.
	assert.Error(t, readOne(t, a, 100*time.Millisecond))
}

func TestReloadBeforeConnectIsDiscarded(t *testing.T) {
	s, ts := startLiveServer(t)

	// Published with no session attached; a later session must not see it.
	require.NoError(t, s.bus.Publish())
	require.NoError(t, s.bus.Publish())

	conn := dialLiveUpdate(t, ts)
	defer conn.Close(websocket.StatusNormalClosure, "")
	waitForReceivers(t, s, 1)

	assert.Error(t, readOne(t, conn, 200*time.Millisecond), "no spurious reload on connect")

	// Only notifications published after attach are delivered.
	require.NoError(t, s.bus.Publish())
	assert.NoError(t, readOne(t, conn, 2*time.Second))
}

func TestClientCloseReleasesAttachment(t *testing.T) {
	s, ts := startLiveServer(t)

	a := dialLiveUpdate(t, ts)
	b := dialLiveUpdate(t, ts)
	defer b.Close(websocket.StatusNormalClosure, "")

	waitForReceivers(t, s, 2)

	require.NoError(t, a.Close(websocket.StatusNormalClosure, "done"))
	waitForReceivers(t, s, 1)

	// The surviving session is unaffected.
	require.NoError(t, s.bus.Publish())
	assert.NoError(t, readOne(t, b, 2*time.Second))
}

func TestPeerMessageEndsSession(t *testing.T) {
	s, ts := startLiveServer(t)

	conn := dialLiveUpdate(t, ts)
	defer conn.Close(websocket.StatusNormalClosure, "")
	waitForReceivers(t, s, 1)

	// Any inbound frame means "stop", regardless of content.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("whatever")))

	waitForReceivers(t, s, 0)
}

func TestBusCloseTerminatesSessions(t *testing.T) {
	s, ts := startLiveServer(t)

	conn := dialLiveUpdate(t, ts)
	defer conn.Close(websocket.StatusNormalClosure, "")
	waitForReceivers(t, s, 1)

	s.bus.Close()

	// The server side closes the socket; the client read fails.
	assert.Error(t, readOne(t, conn, 2*time.Second))
}

func TestCheckOrigin(t *testing.T) {
	s, _ := newTestServer(t, false)

	tests := []struct {
		name   string
		origin string
		host   string
		want   bool
	}{
		{name: "no origin header", origin: "", host: "example.com:4000", want: true},
		{name: "same host", origin: "http://example.com:4000", host: "example.com:4000", want: true},
		{name: "localhost", origin: "http://localhost:4000", host: "example.com:4000", want: true},
		{name: "loopback", origin: "http://127.0.0.1:9999", host: "example.com:4000", want: true},
		{name: "ipv6 loopback", origin: "http://[::1]:4000", host: "example.com:4000", want: true},
		{name: "foreign host", origin: "http://evil.test", host: "example.com:4000", want: false},
		{name: "javascript scheme", origin: "javascript:alert(1)", host: "example.com:4000", want: false},
		{name: "file scheme", origin: "file:///etc/passwd", host: "example.com:4000", want: false},
		{name: "malformed", origin: "http://[", host: "example.com:4000", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://"+tt.host+"/ws", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, s.checkOrigin(req))
		})
	}
}

func TestForeignOriginRejectedOnUpgrade(t *testing.T) {
	_, ts := startLiveServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/ws", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.test")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
