package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnhancedErrorUnwrap(t *testing.T) {
	cause := stderrors.New("listen tcp :80: bind: address already in use")
	err := NewEnhancedError("Failed to start server", cause, ServerStartError(cause, 80))

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "Failed to start server")
	assert.Contains(t, err.Error(), "Port already in use")
	assert.Contains(t, err.Error(), "lsof -i :80")
}

func TestEnhancedErrorWithoutSuggestions(t *testing.T) {
	cause := stderrors.New("boom")
	err := NewEnhancedError("Something failed", cause, nil)

	assert.Equal(t, "Something failed", err.Error())
}

func TestServerStartErrorPermission(t *testing.T) {
	cause := stderrors.New("listen tcp :80: bind: permission denied")
	suggestions := ServerStartError(cause, 80)

	var titles []string
	for _, s := range suggestions {
		titles = append(titles, s.Title)
	}
	assert.Contains(t, titles, "Privileged port")
}

func TestConfigurationErrorDetectsYAML(t *testing.T) {
	suggestions := ConfigurationError("yaml: line 3: found a tab character", ".liveserve.yml")

	var titles []string
	for _, s := range suggestions {
		titles = append(titles, s.Title)
	}
	assert.Contains(t, titles, "Fix YAML syntax")
}
