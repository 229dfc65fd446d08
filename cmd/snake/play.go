package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/platform/tui"
	"github.com/vovakirdan/tui-snake/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game",
	Long: `Start a game of Snake.

Controls:
  Arrows/WASD/HJKL - Steer
  P/Space          - Pause
  R                - Restart
  Tab              - Rounds played this session
  Q/Ctrl+C         - Quit

Examples:
  snake play
  snake play --level pillars
  snake play --seed 42 --interval 200ms
  snake play --config ./my-snake.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	addGameFlags(playCmd, core.DefaultTickInterval)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, levels, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return err
	}

	initial, err := newGame(cfg, levels)
	if err != nil {
		return fmt.Errorf("%w (run 'snake levels' to see available levels)", err)
	}
	theme, err := cfg.Theme.Theme()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs only go to --log-file
	logger, closeLog, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	rc := core.DefaultConfig()
	rc.TickInterval = cfg.TickInterval
	rc.Seed = initial.Seed
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		rc.ScreenW = w
		rc.ScreenH = h
	}

	// Round history lives only as long as this process
	rounds, err := storage.Open(storage.MemoryDSN)
	if err != nil {
		logger.Warn("could not open round history", "error", err)
		rounds = nil
	} else {
		defer rounds.Close()
	}

	logger.Info("starting game",
		"level", cfg.Level,
		"interval", rc.TickInterval,
		"config", cfg.Source,
	)

	runErr := tui.Run(tui.Config{
		Initial:  initial,
		Interval: rc.TickInterval,
		Theme:    theme,
		Width:    rc.ScreenW,
		Height:   rc.ScreenH,
		Rounds:   rounds,
		Logger:   logger,
		Tracer:   tracer(),
	})
	if runErr != nil {
		return fmt.Errorf("running game: %w", runErr)
	}
	return nil
}
