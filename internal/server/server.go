// Package server implements the liveserve HTTP server: path-safe content
// serving with reload-script injection, and the live-update WebSocket
// endpoint fed by the shared reload bus.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/conneroisu/liveserve/internal/bus"
	"github.com/conneroisu/liveserve/internal/config"
	"github.com/conneroisu/liveserve/internal/logging"
)

// Server serves a directory with live reload capability.
type Server struct {
	config      *config.Config
	logger      logging.Logger
	bus         *bus.Bus
	httpServer  *http.Server
	serverMutex sync.RWMutex

	shutdownOnce sync.Once
}

// New creates a server for the given configuration. The bus may be shared
// with any number of publishers; in static-only mode it is never consulted.
func New(cfg *config.Config, b *bus.Bus, logger logging.Logger) *Server {
	return &Server{
		config: cfg,
		logger: logger.WithComponent("server"),
		bus:    b,
	}
}

// Start builds the routes and blocks serving until Shutdown is called or
// the listener fails. A bind failure is startup-fatal and returned.
func (s *Server) Start(ctx context.Context) error {
	handler := s.Handler()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	fmt.Printf("Listening at http://%s\n", addr)
	s.logger.Info(ctx, "server starting",
		"addr", addr,
		"root", s.config.Root,
		"static", s.config.Static)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown closes the reload bus, terminating all live-update sessions and
// the trigger listener, then drains the HTTP server. Idempotent.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.bus.Close()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			err = server.Shutdown(ctx)
		}
	})
	return err
}

// Handler builds the route tree for the configured mode without binding a
// listener.
//
// Live-mode dispatch is on the raw request path: ServeMux's path cleaning
// would answer a traversal request with a redirect, but those paths must
// get the same 404 as a missing file, straight from the content handler.
func (s *Server) Handler() http.Handler {
	if s.config.Static {
		// Degenerate mode: plain directory serving, no injection, no /ws.
		return s.withRequestLogging(http.FileServer(http.Dir(s.config.Root)))
	}

	routes := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			s.handleLiveUpdate(w, r)
			return
		}
		s.handleContent(w, r)
	})
	return s.withRequestLogging(routes)
}
