package snake

import (
	"slices"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-snake/internal/core"
)

// testLevel builds a level from layout rows, failing the test on error.
func testLevel(t *testing.T, start core.Point, dir string, length int, rows ...string) *Level {
	t.Helper()
	data, err := yaml.Marshal(yamlLevel{
		ID:        "test",
		Name:      "Test",
		Layout:    rows,
		Start:     &yamlPoint{X: start.X, Y: start.Y},
		Direction: dir,
		Length:    length,
	})
	if err != nil {
		t.Fatalf("marshal level: %v", err)
	}
	level, err := ParseLevel(data)
	if err != nil {
		t.Fatalf("ParseLevel() failed: %v", err)
	}
	return level
}

// withFood returns s with food moved to p and the grid repainted.
func withFood(s GameState, p core.Point) GameState {
	s.Food = p
	s.Game.Map.Grid = paint(s.Level, s.Snake, s.Food)
	return s
}

func TestDefaultGameStateHeadsRight(t *testing.T) {
	s := DefaultGameState(Options{Seed: 1})

	if s.Direction != core.DirRight || s.Heading != core.DirRight {
		t.Fatalf("Expected initial heading right, got %v/%v", s.Direction, s.Heading)
	}
	if len(s.Snake) != 3 {
		t.Errorf("Expected snake of length 3, got %d", len(s.Snake))
	}
	if s.GameOver || s.Paused || s.Won {
		t.Error("New game should be running")
	}
	if !s.HasFood() {
		t.Error("New game should have food")
	}
	if s.Game.Map.Grid.At(s.Head()) != TileHead {
		t.Errorf("Grid should show the head at %+v", s.Head())
	}
	if s.Game.Map.Grid.At(s.Food) != TileFood {
		t.Errorf("Grid should show food at %+v", s.Food)
	}
}

func TestTickMovesHeadRight(t *testing.T) {
	s := DefaultGameState(Options{Seed: 7})
	s = withFood(s, core.Point{X: 1, Y: 1}) // Out of the way

	oldHead := s.Head()
	oldTail := s.Snake[len(s.Snake)-1]

	next := TickReducer(s)

	if next.Head() != (core.Point{X: oldHead.X + 1, Y: oldHead.Y}) {
		t.Errorf("Head should move one cell right: %+v -> %+v", oldHead, next.Head())
	}
	if len(next.Snake) != len(s.Snake) {
		t.Errorf("Length should not change without food: %d -> %d", len(s.Snake), len(next.Snake))
	}
	if slices.Contains(next.Snake, oldTail) {
		t.Errorf("Old tail %+v should be dropped", oldTail)
	}
	if next.Game.Map.Grid.At(oldTail) != TileEmpty {
		t.Error("Grid should clear the old tail cell")
	}
	if next.Ticks != s.Ticks+1 {
		t.Errorf("Ticks = %d, expected %d", next.Ticks, s.Ticks+1)
	}
}

func TestTickGrowsOnFood(t *testing.T) {
	s := DefaultGameState(Options{Seed: 3})
	ahead := s.Head().Add(core.DirRight)
	s = withFood(s, ahead)
	oldTail := s.Snake[len(s.Snake)-1]

	next := TickReducer(s)

	if len(next.Snake) != len(s.Snake)+1 {
		t.Errorf("Snake should grow by 1 after eating food, got %d vs %d", len(next.Snake), len(s.Snake)+1)
	}
	if next.Score != 1 {
		t.Errorf("Score should be 1 after eating food, got %d", next.Score)
	}
	if next.Snake[len(next.Snake)-1] != oldTail {
		t.Error("Tail should stay in place while growing")
	}
	if next.Food == ahead || slices.Contains(next.Snake, next.Food) {
		t.Errorf("New food %+v should be placed off the snake", next.Food)
	}
	if next.Seed == s.Seed {
		t.Error("Seed should advance after placing food")
	}
}

func TestWallCollision(t *testing.T) {
	level := testLevel(t, core.Point{X: 3, Y: 1}, "right", 2,
		"#####",
		"#...#",
		"#####",
	)
	s := DefaultGameState(Options{Level: level})

	next := TickReducer(s)

	if !next.GameOver {
		t.Fatal("Game should be over after hitting wall")
	}
	if next.Won {
		t.Error("Hitting a wall is not a win")
	}
	if !slices.Equal(next.Snake, s.Snake) {
		t.Errorf("Snake should not move on collision: %v -> %v", s.Snake, next.Snake)
	}
	if next.Food != s.Food || next.Score != s.Score || next.Ticks != s.Ticks {
		t.Error("Only the game over flag should change on collision")
	}

	s.GameOver = true
	if !next.Equal(s) {
		t.Error("Collision state should equal the input with GameOver set")
	}
}

func TestBoundaryCollision(t *testing.T) {
	level := testLevel(t, core.Point{X: 1, Y: 0}, "up", 1,
		"...",
		"...",
	)
	s := DefaultGameState(Options{Level: level})

	next := TickReducer(s)
	if !next.GameOver {
		t.Error("Leaving the field should end the game")
	}
}

func TestSelfCollision(t *testing.T) {
	level := testLevel(t, core.Point{X: 1, Y: 1}, "right", 1,
		"........",
		"........",
		"........",
		"........",
	)
	s := DefaultGameState(Options{Level: level})
	// Head at (2,1) moving down into its own body at (2,2)
	s.Snake = []core.Point{{X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 2}}
	s.Direction = core.DirRight
	s.Heading = core.DirDown
	s = withFood(s, core.Point{X: 7, Y: 3})

	next := TickReducer(s)
	if !next.GameOver {
		t.Error("Game should be over after self collision")
	}
}

func TestTailCellIsFree(t *testing.T) {
	level := testLevel(t, core.Point{X: 0, Y: 0}, "right", 1,
		"....",
		"....",
		"....",
	)
	s := DefaultGameState(Options{Level: level})
	// 2x2 loop: moving up puts the head where the tail is now
	s.Snake = []core.Point{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 0}, {X: 1, Y: 0}}
	s.Direction = core.DirLeft
	s.Heading = core.DirUp
	s = withFood(s, core.Point{X: 3, Y: 2})

	next := TickReducer(s)
	if next.GameOver {
		t.Fatal("Moving into the cell the tail leaves should be allowed")
	}
	if next.Head() != (core.Point{X: 1, Y: 0}) {
		t.Errorf("Head = %+v, expected (1, 0)", next.Head())
	}
}

func TestNoImmediateReversal(t *testing.T) {
	s := DefaultGameState(Options{Seed: 42})

	if got := DirectionReducer(s, core.ActionLeft); !got.Equal(s) {
		t.Error("Should not allow immediate reversal from Right to Left")
	}

	up := DirectionReducer(s, core.ActionUp)
	if up.Heading != core.DirUp {
		t.Fatalf("Expected heading Up, got %v", up.Heading)
	}
	if up.Direction != core.DirRight {
		t.Error("Direction only changes when the snake moves")
	}

	// Still moving right, so left is still a reversal
	if got := DirectionReducer(up, core.ActionLeft); got.Heading != core.DirUp {
		t.Errorf("Reversal relative to the last move should be rejected, heading %v", got.Heading)
	}

	// Same heading is a no-op
	if got := DirectionReducer(up, core.ActionUp); !got.Equal(up) {
		t.Error("Repeating the heading should not change the state")
	}
}

func TestSingleSegmentMayReverse(t *testing.T) {
	level := testLevel(t, core.Point{X: 2, Y: 0}, "right", 1, ".....")
	s := DefaultGameState(Options{Level: level})

	if got := DirectionReducer(s, core.ActionLeft); got.Heading != core.DirLeft {
		t.Error("A snake without a body can turn around")
	}
}

func TestDirectionIgnoredWhenInactive(t *testing.T) {
	s := DefaultGameState(Options{Seed: 1})

	paused := PauseReducer(s)
	if got := DirectionReducer(paused, core.ActionUp); !got.Equal(paused) {
		t.Error("Direction changes should be ignored while paused")
	}

	over := s
	over.GameOver = true
	if got := DirectionReducer(over, core.ActionUp); !got.Equal(over) {
		t.Error("Direction changes should be ignored after game over")
	}

	if got := DirectionReducer(s, core.ActionRestart); !got.Equal(s) {
		t.Error("Non-directional actions should not change the state")
	}
}

func TestPauseStopsTicks(t *testing.T) {
	s := DefaultGameState(Options{Seed: 1})

	paused := PauseReducer(s)
	if !paused.Paused {
		t.Fatal("PauseReducer should pause a running game")
	}
	if got := TickReducer(paused); !got.Equal(paused) {
		t.Error("Ticks should not advance a paused game")
	}
	if PauseReducer(paused).Paused {
		t.Error("PauseReducer should toggle back")
	}

	over := s
	over.GameOver = true
	if PauseReducer(over).Paused {
		t.Error("A finished game cannot be paused")
	}
}

func TestReducersDoNotMutateInput(t *testing.T) {
	s := DefaultGameState(Options{Seed: 5})
	s = withFood(s, s.Head().Add(core.DirRight))

	snakeBefore := slices.Clone(s.Snake)
	gridBefore := s.Game.Map.Grid.clone()
	levelBefore := s.Level.Layout.clone()

	_ = TickReducer(s)
	_ = TickReducer(DirectionReducer(s, core.ActionDown))

	if !slices.Equal(s.Snake, snakeBefore) {
		t.Error("TickReducer modified the input snake")
	}
	for y := range gridBefore {
		if !slices.Equal(s.Game.Map.Grid[y], gridBefore[y]) {
			t.Fatalf("TickReducer modified the input grid at row %d", y)
		}
		if !slices.Equal(s.Level.Layout[y], levelBefore[y]) {
			t.Fatalf("TickReducer modified the level layout at row %d", y)
		}
	}
}

func TestDeterminism(t *testing.T) {
	run := func() Snapshot {
		s := DefaultGameState(Options{Seed: 12345})
		pilot := Autopilot{}
		for i := 0; i < 200 && !s.GameOver; i++ {
			if dir, ok := pilot.NextDirection(s); ok {
				s = DirectionReducer(s, core.ActionFor(dir))
			}
			s = TickReducer(s)
		}
		return s.Snapshot()
	}

	snap1, snap2 := run(), run()
	if snap1 != snap2 {
		t.Errorf("Same seed and inputs should give the same game:\n%+v\n%+v", snap1, snap2)
	}
	if snap1.Score == 0 {
		t.Error("Autopilot should eat at least once in 200 ticks")
	}
}

func TestFoodSpawnValidity(t *testing.T) {
	pillars, err := BuiltinLevels().Get("pillars")
	if err != nil {
		t.Fatal(err)
	}

	for seed := int64(0); seed < 100; seed++ {
		s := DefaultGameState(Options{Level: pillars, Seed: seed})

		if pillars.Layout.At(s.Food) == TileWall {
			t.Errorf("Food spawned on wall at (%d, %d)", s.Food.X, s.Food.Y)
		}
		if slices.Contains(s.Snake, s.Food) {
			t.Errorf("Food spawned on snake at (%d, %d)", s.Food.X, s.Food.Y)
		}
		if s.Food.X < 0 || s.Food.X >= pillars.Width || s.Food.Y < 0 || s.Food.Y >= pillars.Height {
			t.Errorf("Food spawned out of bounds at (%d, %d)", s.Food.X, s.Food.Y)
		}
	}
}

func TestWinWhenFieldIsFull(t *testing.T) {
	level := testLevel(t, core.Point{X: 1, Y: 0}, "right", 2, "...")
	s := DefaultGameState(Options{Level: level})

	if s.Food != (core.Point{X: 2, Y: 0}) {
		t.Fatalf("Only one cell is free, food at %+v", s.Food)
	}

	next := TickReducer(s)
	if !next.GameOver || !next.Won {
		t.Errorf("Filling the field should win, got GameOver=%v Won=%v", next.GameOver, next.Won)
	}
	if next.HasFood() {
		t.Error("A full field has no food")
	}
	if next.Status() != StatusWon {
		t.Errorf("Status() = %s, expected %s", next.Status(), StatusWon)
	}
}

func TestLengthOverrideIsTruncated(t *testing.T) {
	level := testLevel(t, core.Point{X: 3, Y: 1}, "right", 2,
		"######",
		"#....#",
		"######",
	)
	s := DefaultGameState(Options{Level: level, Length: 10})

	if len(s.Snake) != 3 {
		t.Errorf("Snake should stop at the wall, got length %d", len(s.Snake))
	}
	if s.StartLength != 4 {
		t.Errorf("StartLength should be clamped to the 4 free cells, got %d", s.StartLength)
	}
}

func TestHugeLengthIsClamped(t *testing.T) {
	s := DefaultGameState(Options{Length: 1 << 50})

	free := s.Level.freeCells()
	if s.StartLength != free {
		t.Errorf("StartLength = %d, expected the %d free cells", s.StartLength, free)
	}
	if len(s.Snake) == 0 || len(s.Snake) > free {
		t.Errorf("Snake length %d out of range", len(s.Snake))
	}
}

func TestDefaultStatesAreEqual(t *testing.T) {
	a := DefaultGameState(Options{Seed: 1})
	b := DefaultGameState(Options{Seed: 1})

	if a.Level != b.Level {
		t.Error("Builtin levels should be parsed once and shared")
	}
	if !a.Equal(b) {
		t.Errorf("Identical default states should be equal:\n%s\n%s", a.DebugState(), b.DebugState())
	}

	// A level parsed again from the same file is the same level
	reparsed, err := ParseLevel(mustReadBuiltin(t, "levels/classic.yaml"))
	if err != nil {
		t.Fatalf("ParseLevel() failed: %v", err)
	}
	c := DefaultGameState(Options{Level: reparsed, Seed: 1})
	if !a.Equal(c) {
		t.Error("States on equal levels should compare by level ID")
	}

	other := DefaultGameState(Options{Level: testLevel(t, core.Point{X: 2, Y: 0}, "right", 2, "....."), Seed: 1})
	if a.Equal(other) {
		t.Error("States on different levels should not be equal")
	}
}

func mustReadBuiltin(t *testing.T, path string) []byte {
	t.Helper()
	data, err := builtinFS.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestRestart(t *testing.T) {
	s := DefaultGameState(Options{Seed: 9, Length: 5})
	for !s.GameOver {
		s = TickReducer(s)
	}

	fresh := Restart(s)
	if fresh.GameOver || fresh.Score != 0 || fresh.Ticks != 0 {
		t.Error("Restart should start a new game")
	}
	if fresh.Level != s.Level {
		t.Error("Restart should keep the level")
	}
	if len(fresh.Snake) != 5 {
		t.Errorf("Restart should keep the starting length, got %d", len(fresh.Snake))
	}
	if Restart(s).Snapshot() != fresh.Snapshot() {
		t.Error("Restart should be deterministic")
	}
}

func TestAutopilotMovesAreSafe(t *testing.T) {
	for _, level := range BuiltinLevels().List() {
		t.Run(level.ID, func(t *testing.T) {
			s := DefaultGameState(Options{Level: level, Seed: 77})
			pilot := Autopilot{}
			for i := 0; i < 300 && !s.GameOver; i++ {
				dir, ok := pilot.NextDirection(s)
				if !ok {
					return // Trapped; nothing left to check
				}
				s = DirectionReducer(s, core.ActionFor(dir))
				s = TickReducer(s)
				if s.GameOver && !s.Won {
					t.Fatalf("Autopilot chose a losing move %v at tick %d", dir, i)
				}
			}
		})
	}
}

func TestAutopilotPrefersFood(t *testing.T) {
	s := DefaultGameState(Options{Seed: 1})
	s = withFood(s, core.Point{X: s.Head().X, Y: s.Head().Y - 3})

	dir, ok := Autopilot{}.NextDirection(s)
	if !ok || dir != core.DirUp {
		t.Errorf("Expected Up toward the food, got %v, %v", dir, ok)
	}
}
