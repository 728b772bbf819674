package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".liveserve.yml"

// initCmd scaffolds a config file so projects can check in their serve
// settings instead of repeating flags.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .liveserve.yml",
	Long: `Write a default .liveserve.yml in the current directory.

The file records the listen address, the served directory, and the
static-only toggle. Flags and LIVESERVE_ environment variables still
override it at run time.`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
}

type configScaffold struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Root   string `yaml:"root"`
	Static bool   `yaml:"static"`
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(defaultConfigFile); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", defaultConfigFile)
	}

	var scaffold configScaffold
	scaffold.Server.Host = "0.0.0.0"
	scaffold.Server.Port = 4000
	scaffold.Root = "."
	scaffold.Static = false

	data, err := yaml.Marshal(&scaffold)
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}

	header := []byte("# liveserve configuration\n# Overridden by LIVESERVE_* environment variables and command-line flags.\n")
	if err := os.WriteFile(defaultConfigFile, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", defaultConfigFile, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", defaultConfigFile)

	return nil
}
