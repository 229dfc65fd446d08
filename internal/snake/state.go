// Package snake implements the Snake rules as pure reducers over an
// immutable GameState. Nothing in this package touches a terminal or a
// clock; the platform feeds key actions and ticks in and renders the result.
package snake

import (
	"slices"

	"github.com/vovakirdan/tui-snake/internal/core"
)

// Tile is the kind of a single grid cell.
type Tile uint8

const (
	TileEmpty Tile = iota
	TileWall
	TileSnake // body segment
	TileHead
	TileFood
)

func (t Tile) String() string {
	switch t {
	case TileEmpty:
		return "empty"
	case TileWall:
		return "wall"
	case TileSnake:
		return "snake"
	case TileHead:
		return "head"
	case TileFood:
		return "food"
	default:
		return "unknown"
	}
}

// Grid is a row-major 2D sequence of tiles: Grid[y][x].
type Grid [][]Tile

// At returns the tile at p, or TileWall outside the grid.
func (g Grid) At(p core.Point) Tile {
	if p.Y < 0 || p.Y >= len(g) || p.X < 0 || p.X >= len(g[p.Y]) {
		return TileWall
	}
	return g[p.Y][p.X]
}

// clone returns a deep copy of the grid.
func (g Grid) clone() Grid {
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = slices.Clone(row)
	}
	return out
}

// Map is the playing field.
type Map struct {
	Width  int
	Height int
	Grid   Grid // walls, snake and food painted together
}

// Game groups the field data of a state.
type Game struct {
	Map Map
}

// noFood marks a state without food on the field.
var noFood = core.Point{X: -1, Y: -1}

// GameState is one immutable snapshot of a running game.
//
// Reducers never modify a GameState or the slices it references; they
// return a new value, or the same value when nothing changed.
type GameState struct {
	Game        Game
	Level       *Level
	Snake       []core.Point   // Head at index 0
	Direction   core.Direction // Heading of the last move
	Heading     core.Direction // Buffered heading applied on the next tick
	Food        core.Point
	Score       int
	Ticks       uint64
	StartLength int
	Seed        int64 // RNG state for the next food placement
	GameOver    bool
	Won         bool
	Paused      bool
}

// Head returns the head cell of the snake.
func (s GameState) Head() core.Point {
	if len(s.Snake) == 0 {
		return noFood
	}
	return s.Snake[0]
}

// HasFood reports whether food is on the field.
func (s GameState) HasFood() bool {
	return s.Food != noFood
}

// Equal reports whether two states describe the same game.
// Grid is derived from the other fields and is not compared.
func (s GameState) Equal(other GameState) bool {
	return sameLevel(s.Level, other.Level) &&
		s.Direction == other.Direction &&
		s.Heading == other.Heading &&
		s.Food == other.Food &&
		s.Score == other.Score &&
		s.Ticks == other.Ticks &&
		s.StartLength == other.StartLength &&
		s.Seed == other.Seed &&
		s.GameOver == other.GameOver &&
		s.Won == other.Won &&
		s.Paused == other.Paused &&
		slices.Equal(s.Snake, other.Snake)
}

// sameLevel compares levels by ID; level IDs are unique within a LevelSet.
func sameLevel(a, b *Level) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a == b || a.ID == b.ID
}

// Equal is GameState.Equal as a function, for store construction.
func Equal(a, b GameState) bool {
	return a.Equal(b)
}

// occupied reports whether p is covered by the first n snake segments.
func occupied(snake []core.Point, n int, p core.Point) bool {
	return slices.Contains(snake[:n], p)
}

// blocked reports whether moving the head onto p ends the game.
// When the snake is not growing its tail moves away, so that cell is free.
func (s GameState) blocked(p core.Point, growing bool) bool {
	if s.Level.Layout.At(p) == TileWall {
		return true
	}
	n := len(s.Snake)
	if !growing && n > 0 {
		n-- // Tail will be removed
	}
	return occupied(s.Snake, n, p)
}

// paint builds the grid for a level, snake and food.
func paint(level *Level, snake []core.Point, food core.Point) Grid {
	g := level.Layout.clone()
	set := func(p core.Point, t Tile) {
		if p.Y >= 0 && p.Y < len(g) && p.X >= 0 && p.X < len(g[p.Y]) {
			g[p.Y][p.X] = t
		}
	}
	if food != noFood {
		set(food, TileFood)
	}
	for i := len(snake) - 1; i >= 0; i-- {
		if i == 0 {
			set(snake[i], TileHead)
		} else {
			set(snake[i], TileSnake)
		}
	}
	return g
}
