package errors

import (
	"fmt"
	"strings"
)

// ServerStartError generates suggestions for listen/bind failures
func ServerStartError(err error, port int) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{}

	errStr := err.Error()

	if strings.Contains(errStr, "address already in use") || strings.Contains(errStr, "bind") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Port already in use",
			Description: fmt.Sprintf("Port %d is already being used by another process", port),
			Command:     fmt.Sprintf("lsof -i :%d", port),
		})

		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Use a different port",
			Description: "Start the server on a different port",
			Command:     fmt.Sprintf("liveserve serve --port %d", port+1000),
		})
	}

	if strings.Contains(errStr, "permission denied") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Privileged port",
			Description: "Ports below 1024 need elevated privileges; pick a higher port",
			Command:     "liveserve serve --port 4000",
		})
	}

	return suggestions
}

// ConfigurationError generates suggestions for configuration load failures
func ConfigurationError(configError string, configPath string) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{
		{
			Title:       "Check configuration file",
			Description: "Verify your " + configPath + " file exists and has valid syntax",
			Command:     "cat " + configPath,
		},
	}

	if strings.Contains(configError, "yaml") || strings.Contains(configError, "unmarshal") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Fix YAML syntax",
			Description: "There's a syntax error in your YAML configuration",
			Example:     "Use proper indentation and avoid tabs",
		})
	}

	if strings.Contains(configError, "not a directory") || strings.Contains(configError, "no such file") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Check the served directory",
			Description: "The root must name an existing directory",
			Command:     "liveserve serve ./public",
		})
	}

	return suggestions
}
