package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/conneroisu/liveserve/internal/logging"
)

// Time allowed to write a reload message to the peer.
const writeWait = 10 * time.Second

// handleLiveUpdate upgrades the connection and runs the session to
// completion. The handler goroutine is the session's unit of execution.
func (s *Server) handleLiveUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	logger := s.logger.With("remote", r.RemoteAddr)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origin was validated above; Accept's same-host check would
		// reject the empty-Origin case we permit for tooling.
		InsecureSkipVerify: true,
	})
	if err != nil {
		logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	logger.Debug(r.Context(), "live-update client connected")
	s.runSession(r.Context(), conn, logger)
	logger.Debug(r.Context(), "live-update client disconnected")
}

// runSession attaches to the reload bus, drains anything already pending so
// a reload triggered before this tab connected does not fire spuriously,
// then races bus notifications against peer activity until either side
// closes.
func (s *Server) runSession(ctx context.Context, conn *websocket.Conn, logger logging.Logger) {
	receiver := s.bus.Attach()
	defer receiver.Detach()

	for receiver.TryReceive() {
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Any inbound frame, including a close, means the peer is done.
	go func() {
		defer cancel()
		_, _, _ = conn.Read(ctx)
	}()

	for {
		if err := receiver.Receive(ctx); err != nil {
			// Peer close won the race or the bus was torn down; both are
			// clean session exits.
			return
		}

		writeCtx, writeCancel := context.WithTimeout(ctx, writeWait)
		err := conn.Write(writeCtx, websocket.MessageBinary, []byte{})
		writeCancel()
		if err != nil {
			logger.Debug(ctx, "reload push failed, closing session", "error", err)
			return
		}

		logger.Debug(ctx, "reload message sent")
	}
}

// checkOrigin accepts same-host and loopback origins. Requests without an
// Origin header (non-browser tooling) are allowed through.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	host := originURL.Host
	if host == "" {
		return false
	}

	if host == r.Host {
		return true
	}

	if host == "localhost" || strings.HasPrefix(host, "localhost:") {
		return true
	}
	if host == "127.0.0.1" || strings.HasPrefix(host, "127.0.0.1:") {
		return true
	}
	if host == "::1" || strings.HasPrefix(host, "[::1]:") {
		return true
	}

	return false
}
