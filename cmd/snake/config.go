package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-snake/internal/config"
)

var flagPrintDefault bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the configuration in use",
	Long: `Prints the configuration snake would run with, as YAML.
With --print-default it prints the built-in default file instead, a good
starting point for ~/.snake/config.yaml.

Examples:
  snake config
  snake config --print-default > ~/.snake/config.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeConfig(cmd.OutOrStdout(), flagPrintDefault)
	},
}

func init() {
	configCmd.Flags().BoolVar(&flagPrintDefault, "print-default", false, "Print the built-in default config")
}

// writeConfig writes the loaded config, or the embedded default, to w.
func writeConfig(w io.Writer, printDefault bool) error {
	if printDefault {
		_, err := w.Write(config.GetDefaultYAML())
		return err
	}

	cfg, err := config.LoadSnake(flagConfig)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if _, err := fmt.Fprintf(w, "# source: %s\n", cfg.Source); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
