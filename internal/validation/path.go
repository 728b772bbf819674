// Package validation provides request path validation and resolution for
// preventing path traversal outside the served directory.
package validation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned for every rejected or unresolvable request path.
// Callers must not distinguish rejection reasons in responses: an escaping
// path and a genuinely missing file must look identical to the client.
var ErrNotFound = errors.New("path not found")

// DefaultDocument is appended when a request path resolves to a directory.
const DefaultDocument = "index.html"

// ValidatePath checks a slash-separated request path (already
// percent-decoded by the HTTP layer) against the traversal policy.
// Parent-directory segments, absolute anchors, and volume prefixes are
// rejected; current-directory segments are permitted and ignored later
// during resolution.
func ValidatePath(requestPath string) error {
	if strings.ContainsRune(requestPath, 0) {
		return ErrNotFound
	}
	if strings.HasPrefix(requestPath, "/") || strings.HasPrefix(requestPath, `\`) {
		return ErrNotFound
	}
	if filepath.VolumeName(requestPath) != "" {
		return ErrNotFound
	}

	for _, segment := range strings.Split(requestPath, "/") {
		if segment == ".." {
			return ErrNotFound
		}
	}

	return nil
}

// Resolve validates requestPath and resolves it against root. A path that
// denotes a directory resolves to its DefaultDocument. Any validation
// failure or missing file yields ErrNotFound.
func Resolve(root, requestPath string) (string, error) {
	if err := ValidatePath(requestPath); err != nil {
		return "", err
	}

	full := root
	for _, segment := range strings.Split(requestPath, "/") {
		if segment == "" || segment == "." {
			continue
		}
		full = filepath.Join(full, segment)
	}

	info, err := os.Stat(full)
	if err != nil {
		return "", ErrNotFound
	}
	if info.IsDir() {
		full = filepath.Join(full, DefaultDocument)
		if _, err := os.Stat(full); err != nil {
			return "", ErrNotFound
		}
	}

	return full, nil
}
