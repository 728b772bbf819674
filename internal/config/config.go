// Package config provides configuration management for liveserve using
// Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// Configuration sources in precedence order: command-line flags, LIVESERVE_
// environment variables, and an optional .liveserve.yml file. The package
// manages the listen address, the served directory, and the static-only
// mode toggle, and validates the result before the server starts.
package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Root   string       `yaml:"root"`
	Static bool         `yaml:"static"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Load builds a Config from the current viper state and validates it.
// Defaults mirror the command-line defaults so a bare `liveserve serve`
// serves the current directory.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Workaround for viper scalar handling when values come from flags
	// rather than the config file.
	if viper.IsSet("server.host") {
		config.Server.Host = viper.GetString("server.host")
	}
	if viper.IsSet("server.port") {
		config.Server.Port = viper.GetInt("server.port")
	}
	if viper.IsSet("root") {
		config.Root = viper.GetString("root")
	}
	if viper.IsSet("static") {
		config.Static = viper.GetBool("static")
	}

	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 4000
	}
	if config.Root == "" {
		config.Root = "."
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
