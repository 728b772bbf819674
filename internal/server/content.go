package server

import (
	_ "embed"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/conneroisu/liveserve/internal/validation"
)

// Browsers must refetch on every reload for live updates to be visible.
const cacheControl = "no-cache, no-store, must-revalidate"

//go:embed reload.js
var reloadScript string

var scriptTag = "<script>" + reloadScript + "</script>"

const notFoundBody = "404: Page not found."

func (s *Server) notFound(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", cacheControl)
	http.Error(w, notFoundBody, http.StatusNotFound)
}

// handleContent is the catch-all route: resolve the request path inside the
// served root and respond. Every failure mode collapses to the same 404 so
// clients cannot distinguish rejection from absence.
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	requestPath := strings.TrimPrefix(r.URL.Path, "/")

	fullPath, err := validation.Resolve(s.config.Root, requestPath)
	if err != nil {
		s.logger.Debug(r.Context(), "request path rejected", "path", r.URL.Path)
		s.notFound(w)
		return
	}

	mediaType := mediaTypeFor(fullPath)

	if isHTML(mediaType) {
		s.serveHTML(w, r, fullPath, mediaType)
		return
	}

	s.serveRaw(w, r, fullPath, mediaType)
}

// serveHTML reads the whole document and splices the reload client script
// in before the first closing body tag, appending it when the document has
// none. Every HTML response carries the script exactly once.
func (s *Server) serveHTML(w http.ResponseWriter, r *http.Request, path, mediaType string) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error(r.Context(), err, "reading html file", "path", path)
		s.notFound(w)
		return
	}

	doc := string(data)
	injected := strings.Replace(doc, "</body>", scriptTag+"</body>", 1)
	if len(injected) == len(doc) {
		injected += scriptTag
	}

	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("Content-Type", mediaType)

	if _, err := io.WriteString(w, injected); err != nil {
		s.logger.Debug(r.Context(), "writing html response", "path", path, "error", err)
	}
}

// serveRaw streams the file without buffering it whole.
func (s *Server) serveRaw(w http.ResponseWriter, r *http.Request, path, mediaType string) {
	file, err := os.Open(path)
	if err != nil {
		s.logger.Error(r.Context(), err, "opening file", "path", path)
		s.notFound(w)
		return
	}
	defer file.Close()

	w.Header().Set("Cache-Control", cacheControl)
	if mediaType != "" {
		w.Header().Set("Content-Type", mediaType)
	}

	if _, err := io.Copy(w, file); err != nil {
		// Headers are gone by now; just note it for the operator.
		s.logger.Debug(r.Context(), "streaming file", "path", path, "error", err)
	}
}

// mediaTypeFor infers the media type from the file name alone.
func mediaTypeFor(path string) string {
	return mime.TypeByExtension(filepath.Ext(path))
}

func isHTML(mediaType string) bool {
	essence, _, _ := strings.Cut(mediaType, ";")
	return strings.TrimSpace(essence) == "text/html"
}
