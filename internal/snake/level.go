package snake

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-snake/internal/core"
)

//go:embed levels/*.yaml
var builtinFS embed.FS

// DefaultLevelID is the level used when none is selected.
const DefaultLevelID = "classic"

// defaultLength is the starting snake length when a level file omits it.
const defaultLength = 3

// Level is a parsed, validated level. Levels are shared between states and
// must not be modified after parsing.
type Level struct {
	ID        string
	Name      string
	Width     int
	Height    int
	Layout    Grid // TileWall and TileEmpty only
	Start     core.Point
	Direction core.Direction
	Length    int
	Source    string // File the level came from
}

// yamlLevel is the on-disk level format.
type yamlLevel struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Layout    []string   `yaml:"layout"`
	Start     *yamlPoint `yaml:"start,omitempty"`
	Direction string     `yaml:"direction,omitempty"`
	Length    int        `yaml:"length,omitempty"`
}

type yamlPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// ParseLevel parses and validates a YAML level definition.
func ParseLevel(data []byte) (*Level, error) {
	var yl yamlLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return nil, fmt.Errorf("level: yaml unmarshal: %w", err)
	}

	if yl.ID == "" {
		return nil, errors.New("level: missing id")
	}
	if len(yl.Layout) == 0 {
		return nil, fmt.Errorf("level %s: empty layout", yl.ID)
	}

	level := &Level{
		ID:        yl.ID,
		Name:      yl.Name,
		Height:    len(yl.Layout),
		Direction: core.DirRight,
		Length:    yl.Length,
	}
	if level.Name == "" {
		level.Name = yl.ID
	}
	if level.Length <= 0 {
		level.Length = defaultLength
	}
	if yl.Direction != "" {
		dir, ok := core.ParseDirection(yl.Direction)
		if !ok {
			return nil, fmt.Errorf("level %s: unknown direction %q", yl.ID, yl.Direction)
		}
		level.Direction = dir
	}

	// Rows shorter than the widest one are padded with empty cells
	for _, row := range yl.Layout {
		level.Width = max(level.Width, len([]rune(row)))
	}
	level.Layout = make(Grid, level.Height)
	for y, row := range yl.Layout {
		level.Layout[y] = make([]Tile, level.Width)
		for x, ch := range []rune(row) {
			switch ch {
			case '#':
				level.Layout[y][x] = TileWall
			case '.', ' ':
				level.Layout[y][x] = TileEmpty
			default:
				return nil, fmt.Errorf("level %s: unexpected %q at (%d, %d)", yl.ID, ch, x, y)
			}
		}
	}

	if free := level.freeCells(); level.Length > free {
		return nil, fmt.Errorf("level %s: length %d exceeds the %d free cells", yl.ID, level.Length, free)
	}

	if yl.Start != nil {
		level.Start = core.Point{X: yl.Start.X, Y: yl.Start.Y}
	} else {
		// Head sits a quarter in from the left, body trailing behind it
		level.Start = core.Point{X: level.Width/4 + level.Length - 1, Y: level.Height / 2}
	}

	for i, p := range level.body(level.Length) {
		if level.Layout.At(p) != TileEmpty {
			return nil, fmt.Errorf("level %s: snake segment %d at (%d, %d) is not an empty cell", yl.ID, i, p.X, p.Y)
		}
	}

	return level, nil
}

// freeCells counts the cells that are not walls.
func (l *Level) freeCells() int {
	n := 0
	for _, row := range l.Layout {
		for _, t := range row {
			if t == TileEmpty {
				n++
			}
		}
	}
	return n
}

// body returns the starting snake of the given length, head first.
func (l *Level) body(length int) []core.Point {
	dx, dy := l.Direction.Delta()
	snake := make([]core.Point, 0, length)
	for i := range length {
		snake = append(snake, core.Point{X: l.Start.X - i*dx, Y: l.Start.Y - i*dy})
	}
	return snake
}

// LevelSet is an ordered collection of levels keyed by ID.
type LevelSet struct {
	levels map[string]*Level
}

// NewLevelSet creates an empty level set.
func NewLevelSet() *LevelSet {
	return &LevelSet{levels: make(map[string]*Level)}
}

// Add registers a level. Returns an error if the ID is already taken.
func (ls *LevelSet) Add(level *Level) error {
	if _, exists := ls.levels[level.ID]; exists {
		return fmt.Errorf("level: %q already registered", level.ID)
	}
	ls.levels[level.ID] = level
	return nil
}

// Get returns the level with the given ID.
func (ls *LevelSet) Get(id string) (*Level, error) {
	level, ok := ls.levels[id]
	if !ok {
		return nil, fmt.Errorf("level: unknown level %q", id)
	}
	return level, nil
}

// List returns all levels sorted by ID.
func (ls *LevelSet) List() []*Level {
	result := make([]*Level, 0, len(ls.levels))
	for _, level := range ls.levels {
		result = append(result, level)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Len returns the number of levels.
func (ls *LevelSet) Len() int {
	return len(ls.levels)
}

// loadFS adds every .yaml/.yml file under root in fsys.
func (ls *LevelSet) loadFS(fsys fs.FS, root string) error {
	return fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isLevelFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("level: read %s: %w", path, err)
		}
		level, err := ParseLevel(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		level.Source = path
		return ls.Add(level)
	})
}

// LoadDir adds all level files found under dir.
func (ls *LevelSet) LoadDir(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	return ls.loadFS(os.DirFS(dir), ".")
}

func isLevelFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// builtinLevels parses the embedded levels once. Every state built from a
// builtin level shares the same *Level.
var builtinLevels = sync.OnceValue(func() *LevelSet {
	ls := NewLevelSet()
	if err := ls.loadFS(builtinFS, "levels"); err != nil {
		panic(fmt.Sprintf("snake: invalid builtin level: %v", err))
	}
	return ls
})

// BuiltinLevels returns a new set holding the levels embedded in the binary.
// Adding to the returned set does not affect later calls.
func BuiltinLevels() *LevelSet {
	ls := NewLevelSet()
	for id, level := range builtinLevels().levels {
		ls.levels[id] = level
	}
	return ls
}

// DefaultLevel returns the builtin classic level.
func DefaultLevel() *Level {
	level, err := builtinLevels().Get(DefaultLevelID)
	if err != nil {
		panic(err)
	}
	return level
}
