// snake is Snake for the terminal.
//
// Usage:
//
//	snake play               - Play a game
//	snake levels             - List available levels
//	snake demo               - Watch the autopilot play
//	snake config             - Show the configuration in use
//
// Global flags:
//
//	--config <path>     - Config file (default: search ~/.snake, ./configs)
//	--log-level <level> - debug, info, warn or error (default: info)
//	--log-file <path>   - Log destination for play (default: discarded)
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/vovakirdan/tui-snake/internal/config"
	"github.com/vovakirdan/tui-snake/internal/snake"
	"github.com/vovakirdan/tui-snake/internal/telemetry"
)

var (
	// Global flags
	flagConfig   string
	flagLogLevel string
	flagLogFile  string

	// Set up by the root command before any subcommand runs
	shutdownTelemetry = func(context.Context) error { return nil }
)

func main() {
	err := rootCmd.Execute()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if shutdownErr := shutdownTelemetry(ctx); shutdownErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: telemetry shutdown: %v\n", shutdownErr)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snake",
	Short: "Snake in your terminal",
	Long: `Snake steers a growing snake around a walled field in your terminal.

Available commands:
  play     - Play a game
  levels   - Show all available levels
  demo     - Watch the autopilot play
  config   - Show the configuration in use

Examples:
  snake play
  snake play --level tunnel --interval 150ms
  snake levels
  snake demo --ticks 300`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads .env and starts telemetry for every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	// .env is optional; real environment variables work as well
	_ = godotenv.Load()

	shutdown, err := telemetry.Setup(cmd.Context())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: telemetry setup failed: %v\n", err)
		return nil
	}
	shutdownTelemetry = shutdown
	return nil
}

// newLogger builds the command logger writing to w, or to --log-file when set.
// The returned close func releases the log file.
func newLogger(w io.Writer) (*log.Logger, func(), error) {
	closeFn := func() {}
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	}

	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "snake",
		Level:           level,
	})
	return logger, closeFn, nil
}

// tracer returns the session tracer, a no-op one when export is off.
func tracer() trace.Tracer {
	if telemetry.Enabled() {
		return telemetry.Tracer("session")
	}
	return telemetry.NoopTracer()
}

// loadConfig loads the config file and the levels it refers to.
func loadConfig() (config.SnakeConfig, *snake.LevelSet, error) {
	cfg, err := config.LoadSnake(flagConfig)
	if err != nil {
		return cfg, nil, err
	}

	levels := snake.BuiltinLevels()
	if cfg.LevelsDir != "" {
		if err := levels.LoadDir(cfg.LevelsDir); err != nil {
			return cfg, nil, fmt.Errorf("levels_dir %s: %w", cfg.LevelsDir, err)
		}
	}
	return cfg, levels, nil
}

// applyFlags copies the game flags that were set on cmd over cfg.
func applyFlags(cmd *cobra.Command, cfg *config.SnakeConfig) error {
	flags := cmd.Flags()
	if flags.Changed("level") {
		cfg.Level = flagLevel
	}
	if flags.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if flags.Changed("interval") {
		cfg.TickInterval = flagInterval
	}
	if flags.Changed("length") {
		cfg.SnakeLength = flagLength
	}
	return cfg.Validate()
}

// addGameFlags registers the flags shared by play and demo.
func addGameFlags(cmd *cobra.Command, defaultInterval time.Duration) {
	cmd.Flags().StringVar(&flagLevel, "level", snake.DefaultLevelID, "Level ID (see 'snake levels')")
	cmd.Flags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	cmd.Flags().DurationVar(&flagInterval, "interval", defaultInterval, "Time between ticks")
	cmd.Flags().IntVar(&flagLength, "length", 0, "Starting snake length (0 = level default)")
}

var (
	flagLevel    string
	flagSeed     int64
	flagInterval time.Duration
	flagLength   int
)

// newGame builds the initial state for cfg.
func newGame(cfg config.SnakeConfig, levels *snake.LevelSet) (snake.GameState, error) {
	level, err := levels.Get(cfg.Level)
	if err != nil {
		return snake.GameState{}, err
	}
	return snake.DefaultGameState(snake.Options{
		Level:  level,
		Length: cfg.SnakeLength,
		Seed:   cfg.EffectiveSeed(time.Now()),
	}), nil
}
