package snake

import (
	"math/rand"

	"github.com/vovakirdan/tui-snake/internal/core"
)

// Options selects how a new game is built.
type Options struct {
	Level  *Level // nil means DefaultLevel()
	Length int    // Starting snake length, 0 means the level's default
	Seed   int64  // Seed for food placement
}

// DefaultGameState builds the initial state: the level's walls, the snake at
// its start position heading in the level's direction, and one food item.
func DefaultGameState(opts Options) GameState {
	level := opts.Level
	if level == nil {
		level = DefaultLevel()
	}

	length := opts.Length
	if length <= 0 {
		length = level.Length
	}
	// No snake can be longer than the field has room for
	length = min(length, max(level.freeCells(), 1))

	// Keep the segments that fit; a long override must not start inside a wall
	snake := level.body(length)
	for i, p := range snake {
		if level.Layout.At(p) != TileEmpty || occupied(snake, i, p) {
			snake = snake[:i]
			break
		}
	}
	if len(snake) == 0 {
		snake = []core.Point{level.Start}
	}

	food, seed, ok := placeFood(level, snake, opts.Seed)

	s := GameState{
		Level:       level,
		Snake:       snake,
		Direction:   level.Direction,
		Heading:     level.Direction,
		Food:        food,
		StartLength: length,
		Seed:        seed,
	}
	if !ok {
		// Nowhere to put food: the level is already full
		s.GameOver = true
		s.Won = true
	}
	s.Game = Game{Map: Map{
		Width:  level.Width,
		Height: level.Height,
		Grid:   paint(level, snake, food),
	}}
	return s
}

// Restart builds a fresh game on the same level and starting length.
func Restart(s GameState) GameState {
	return DefaultGameState(Options{
		Level:  s.Level,
		Length: s.StartLength,
		Seed:   rand.New(rand.NewSource(s.Seed)).Int63(),
	})
}

// placeFood picks a random empty cell using seed. It returns the cell, the
// seed for the next placement, and false when no empty cell is left.
func placeFood(level *Level, snake []core.Point, seed int64) (core.Point, int64, bool) {
	var emptyCells []core.Point
	for y, row := range level.Layout {
		for x, t := range row {
			p := core.Point{X: x, Y: y}
			if t == TileEmpty && !occupied(snake, len(snake), p) {
				emptyCells = append(emptyCells, p)
			}
		}
	}

	if len(emptyCells) == 0 {
		return noFood, seed, false
	}

	rng := rand.New(rand.NewSource(seed))
	food := emptyCells[rng.Intn(len(emptyCells))]
	return food, rng.Int63(), true
}

// DirectionReducer buffers the heading requested by a directional action.
//
// Turning back onto the neck (the opposite of the last move) is rejected and
// the state is returned unchanged, as are non-directional actions and paused
// or finished games.
func DirectionReducer(s GameState, action core.Action) GameState {
	dir, ok := action.Direction()
	if !ok || s.GameOver || s.Paused {
		return s
	}
	if dir == s.Heading {
		return s
	}
	if len(s.Snake) > 1 && dir.IsOpposite(s.Direction) {
		return s
	}

	s.Heading = dir
	return s
}

// PauseReducer toggles pause on a running game.
func PauseReducer(s GameState) GameState {
	if s.GameOver {
		return s
	}
	s.Paused = !s.Paused
	return s
}

// TickReducer advances the game by one step.
//
// The buffered heading becomes the direction, the head moves one cell, and
// the tail follows unless the head lands on food. Hitting a wall, the edge of
// the field or the body sets GameOver and changes nothing else.
func TickReducer(s GameState) GameState {
	if s.GameOver || s.Paused || len(s.Snake) == 0 {
		return s
	}

	newHead := s.Snake[0].Add(s.Heading)
	growing := s.HasFood() && newHead == s.Food

	if s.blocked(newHead, growing) {
		s.GameOver = true
		return s
	}

	keep := len(s.Snake)
	if !growing {
		keep--
	}
	snake := make([]core.Point, 0, keep+1)
	snake = append(snake, newHead)
	snake = append(snake, s.Snake[:keep]...)

	s.Snake = snake
	s.Direction = s.Heading
	s.Ticks++

	if growing {
		s.Score++
		food, seed, ok := placeFood(s.Level, snake, s.Seed)
		s.Food, s.Seed = food, seed
		if !ok {
			s.GameOver = true
			s.Won = true
		}
	}

	s.Game = Game{Map: Map{
		Width:  s.Game.Map.Width,
		Height: s.Game.Map.Height,
		Grid:   paint(s.Level, s.Snake, s.Food),
	}}
	return s
}
