package config

import (
	_ "embed"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/snake"
)

//go:embed defaults/snake.yaml
var defaultSnakeYAML []byte

// DefaultSnakeConfig returns the built-in configuration.
func DefaultSnakeConfig() SnakeConfig {
	return SnakeConfig{
		TickInterval: core.DefaultTickInterval,
		Level:        snake.DefaultLevelID,
		SnakeLength:  0,
		Theme: ThemeConfig{
			Head: "bright_green",
			Body: "green",
			Food: "bright_red",
			Wall: "gray",
			HUD:  "bright_white",
		},
		Source: "builtin",
	}
}

// GetDefaultYAML returns the embedded default config file.
func GetDefaultYAML() []byte {
	return defaultSnakeYAML
}
