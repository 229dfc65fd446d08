package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List all available levels",
	Long:  `Shows the built-in levels and any found in the config's levels_dir.`,
	Args:  cobra.NoArgs,
	RunE:  runLevels,
}

func runLevels(cmd *cobra.Command, args []string) error {
	_, levels, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	list := levels.List()
	if len(list) == 0 {
		fmt.Fprintln(out, "No levels available.")
		return nil
	}

	fmt.Fprintln(out, "Available levels:")
	fmt.Fprintln(out)

	// Calculate column widths
	maxIDLen, maxNameLen := 2, 4 // "ID", "Name" headers
	for _, l := range list {
		maxIDLen = max(maxIDLen, len(l.ID))
		maxNameLen = max(maxNameLen, len(l.Name))
	}

	fmt.Fprintf(out, "  %-*s  %-*s  %s\n", maxIDLen, "ID", maxNameLen, "Name", "Size")
	fmt.Fprintf(out, "  %-*s  %-*s  %s\n", maxIDLen, "--", maxNameLen, "----", "----")
	for _, l := range list {
		fmt.Fprintf(out, "  %-*s  %-*s  %dx%d\n", maxIDLen, l.ID, maxNameLen, l.Name, l.Width, l.Height)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'snake play --level <id>' to play a level.")
	return nil
}
