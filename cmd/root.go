// Package cmd provides the command-line interface for liveserve with
// configuration management supporting multiple configuration sources.
//
// Configuration sources in precedence order:
//  1. Command-line flags (--port, --host, etc.)
//  2. Environment variables with the LIVESERVE_ prefix
//     (LIVESERVE_SERVER_PORT, LIVESERVE_SERVER_HOST, ...)
//  3. A .liveserve.yml configuration file
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "liveserve",
	Short: "A local development file server with signal-triggered live reload",
	Long: `Liveserve serves a directory over HTTP and tells connected browser tabs
to reload when the process receives SIGHUP.

HTML responses get a small WebSocket client injected so any open tab
refreshes the moment you signal the server, typically from a build
script:

  liveserve serve ./public &
  make site && kill -HUP $(pidof liveserve)

Quick Start:
  liveserve init                  Write a default .liveserve.yml
  liveserve serve                 Serve the current directory
  liveserve serve --static ./pub  Plain static serving, no reload`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .liveserve.yml)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig wires viper to the config file and LIVESERVE_ environment
// variables. A missing config file is not an error; flags and defaults
// carry the configuration on their own.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("LIVESERVE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".liveserve")
	}

	viper.SetEnvPrefix("LIVESERVE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
