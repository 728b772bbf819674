package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// validate checks the loaded configuration and normalizes the served root
// to an absolute path. The root is immutable for the process lifetime once
// the server starts.
func validate(config *Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d: must be between 1 and 65535", config.Server.Port)
	}

	if config.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}

	root, err := filepath.Abs(config.Root)
	if err != nil {
		return fmt.Errorf("resolving root directory %q: %w", config.Root, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root directory %q: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path %q is not a directory", root)
	}

	config.Root = root

	return nil
}
