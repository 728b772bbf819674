package server

import (
	"net/http"
	"time"
)

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush passes through so streamed responses keep flushing incrementally.
func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// withRequestLogging logs method, path, status, and duration for every
// request. The /ws route is logged at connect time only; its duration is
// the session lifetime and not useful here.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		logger := s.logger.With("method", r.Method, "path", r.URL.Path)

		next.ServeHTTP(recorder, r)

		logger.Info(r.Context(), "request",
			"status", recorder.status,
			"duration", time.Since(start).String())
	})
}
