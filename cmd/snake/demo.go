package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/session"
	"github.com/vovakirdan/tui-snake/internal/snake"
	"github.com/vovakirdan/tui-snake/internal/storage"
)

// demoInterval is the demo's tick interval unless --interval is given.
const demoInterval = 100 * time.Millisecond

var flagTicks int

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Watch the autopilot play",
	Long: `Runs a game steered by the autopilot and prints every frame as plain text.
Stops when the game ends or after --ticks ticks.

Examples:
  snake demo
  snake demo --level tunnel --ticks 500 --interval 20ms`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	addGameFlags(demoCmd, demoInterval)
	demoCmd.Flags().IntVar(&flagTicks, "ticks", 200, "Maximum number of ticks")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, levels, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.TickInterval = demoInterval
	if err := applyFlags(cmd, &cfg); err != nil {
		return err
	}

	initial, err := newGame(cfg, levels)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	rounds, err := storage.Open(storage.MemoryDSN)
	if err != nil {
		return err
	}
	defer rounds.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, h := snake.MinScreenSize(initial)
	screen := core.NewScreen(w, h)

	var sess *session.Session
	sess = session.New(initial,
		session.WithStrategy(snake.Autopilot{}),
		session.WithRecorder(rounds),
		session.WithLogger(logger),
		session.WithTracer(tracer()),
		session.WithRender(func(s snake.GameState) {
			snake.Render(s, screen, snake.DefaultTheme())
			fmt.Printf("%s\n\n", screen.String())
			if s.GameOver && sess != nil {
				sess.Close()
			}
		}),
	)

	ticks := make(chan time.Time)
	go func() {
		ticker := time.NewTicker(cfg.TickInterval)
		defer ticker.Stop()
		for i := 0; i < flagTicks; i++ {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				select {
				case ticks <- t:
				case <-ctx.Done():
					return
				}
			}
		}
		cancel()
	}()

	runErr := sess.Run(ctx, nil, ticks)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	final := sess.State()
	fmt.Printf("Level: %s  Score: %d  Length: %d  Ticks: %d  Status: %s\n",
		final.Level.ID, final.Score, len(final.Snake), final.Ticks, final.Status())

	if best, err := rounds.Best(context.Background(), final.Level.ID); err == nil && best > 0 {
		fmt.Printf("Best this run: %d\n", best)
	}
	return nil
}
