// Package config provides YAML-based configuration loading for the game.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/snake"
)

// MinTickInterval is the fastest tick the game accepts.
const MinTickInterval = 20 * time.Millisecond

// SnakeConfig contains all configuration for the game.
type SnakeConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Level        string        `yaml:"level"`
	SnakeLength  int           `yaml:"snake_length"`
	Seed         int64         `yaml:"seed"` // 0 picks a time based seed
	LevelsDir    string        `yaml:"levels_dir"`
	Theme        ThemeConfig   `yaml:"theme"`

	Source string `yaml:"-"` // Where the config was loaded from
}

// ThemeConfig names the colors used on screen.
type ThemeConfig struct {
	Head string `yaml:"head"`
	Body string `yaml:"body"`
	Food string `yaml:"food"`
	Wall string `yaml:"wall"`
	HUD  string `yaml:"hud"`
}

// Validate checks the config for values the game cannot run with.
func (c SnakeConfig) Validate() error {
	var errs []error
	if c.TickInterval < MinTickInterval {
		errs = append(errs, fmt.Errorf("tick_interval %s is below %s", c.TickInterval, MinTickInterval))
	}
	if c.SnakeLength < 0 {
		errs = append(errs, fmt.Errorf("snake_length %d is negative", c.SnakeLength))
	}
	if c.Level == "" {
		errs = append(errs, errors.New("level is empty"))
	}
	if _, err := c.Theme.Theme(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Theme resolves the color names. Empty names keep the default color.
func (t ThemeConfig) Theme() (snake.Theme, error) {
	theme := snake.DefaultTheme()
	fields := []struct {
		key  string
		name string
		dst  *core.Color
	}{
		{"head", t.Head, &theme.Head},
		{"body", t.Body, &theme.Body},
		{"food", t.Food, &theme.Food},
		{"wall", t.Wall, &theme.Wall},
		{"hud", t.HUD, &theme.HUD},
	}
	for _, f := range fields {
		if f.name == "" {
			continue
		}
		c, ok := core.ParseColor(f.name)
		if !ok {
			return theme, fmt.Errorf("theme.%s: unknown color %q", f.key, f.name)
		}
		*f.dst = c
	}
	return theme, nil
}

// EffectiveSeed returns Seed, or a seed derived from now when Seed is 0.
func (c SnakeConfig) EffectiveSeed(now time.Time) int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return now.UnixNano()
}
