package snake

import (
	"fmt"
	"strings"
)

// Status is the coarse phase of a game.
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusPaused   Status = "paused"
	StatusGameOver Status = "game_over"
	StatusWon      Status = "won"
)

// Status returns the phase the state is in.
func (s GameState) Status() Status {
	switch {
	case s.Won:
		return StatusWon
	case s.GameOver:
		return StatusGameOver
	case s.Paused:
		return StatusPaused
	default:
		return StatusPlaying
	}
}

// Snapshot is a flat summary of a state for determinism checks and logs.
type Snapshot struct {
	Level    string
	Tick     uint64
	Score    int
	SnakeLen int
	HeadX    int
	HeadY    int
	Dir      string
	FoodX    int
	FoodY    int
	Status   Status
}

// Snapshot returns the state summary.
func (s GameState) Snapshot() Snapshot {
	level := ""
	if s.Level != nil {
		level = s.Level.ID
	}
	head := s.Head()
	return Snapshot{
		Level:    level,
		Tick:     s.Ticks,
		Score:    s.Score,
		SnakeLen: len(s.Snake),
		HeadX:    head.X,
		HeadY:    head.Y,
		Dir:      s.Direction.String(),
		FoodX:    s.Food.X,
		FoodY:    s.Food.Y,
		Status:   s.Status(),
	}
}

// DebugState returns a multi-line description of the state.
func (s GameState) DebugState() string {
	snap := s.Snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "Tick: %d, Score: %d, Level: %s\n", snap.Tick, snap.Score, snap.Level)
	fmt.Fprintf(&b, "Snake len: %d, Direction: %s\n", snap.SnakeLen, snap.Dir)
	fmt.Fprintf(&b, "Head: (%d, %d), Food: (%d, %d)\n", snap.HeadX, snap.HeadY, snap.FoodX, snap.FoodY)
	fmt.Fprintf(&b, "Status: %s\n", snap.Status)
	return b.String()
}
