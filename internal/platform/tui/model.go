package tui

import (
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/session"
	"github.com/vovakirdan/tui-snake/internal/snake"
	"github.com/vovakirdan/tui-snake/internal/storage"
	"github.com/vovakirdan/tui-snake/internal/telemetry"
)

// helpHeight is the number of rows below the game for the help line.
const helpHeight = 1

// Config describes a game to run in the terminal.
type Config struct {
	Initial  snake.GameState
	Interval time.Duration
	Theme    snake.Theme
	Width    int
	Height   int
	Rounds   *storage.Store // Optional round history
	Logger   *log.Logger
	Tracer   trace.Tracer
}

// frame is the latest rendered state. The session's render subscription
// writes it; View reads it.
type frame struct {
	screen  *core.Screen
	theme   snake.Theme
	state   snake.GameState
	content string
	renders int
}

func (f *frame) render(s snake.GameState) {
	f.state = s
	snake.Render(s, f.screen, f.theme)
	f.content = RenderScreen(f.screen)
	f.renders++
}

// Model is the Bubble Tea model for a game of Snake.
type Model struct {
	session  *session.Session
	frame    *frame
	history  historyView
	keys     KeyMap
	help     help.Model
	interval time.Duration
	logger   *log.Logger

	showHistory bool
	autoPaused  bool // the history view paused the game and resumes it on close
	quitting    bool
}

// NewModel creates the session for cfg and renders its first frame.
func NewModel(cfg Config) Model {
	if cfg.Interval <= 0 {
		cfg.Interval = core.DefaultTickInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Tracer == nil {
		cfg.Tracer = telemetry.NoopTracer()
	}

	f := &frame{
		screen: core.NewScreen(cfg.Width, cfg.Height-helpHeight),
		theme:  cfg.Theme,
	}

	opts := []session.Option{
		session.WithRender(f.render),
		session.WithLogger(cfg.Logger),
		session.WithTracer(cfg.Tracer),
	}
	var source RoundSource
	if cfg.Rounds != nil {
		opts = append(opts, session.WithRecorder(cfg.Rounds))
		source = cfg.Rounds
	}

	h := help.New()
	h.ShowAll = false
	h.Width = cfg.Width

	return Model{
		session:  session.New(cfg.Initial, opts...),
		frame:    f,
		history:  newHistoryView(source, cfg.Width, cfg.Height),
		keys:     DefaultKeyMap(),
		help:     h,
		interval: cfg.Interval,
		logger:   cfg.Logger,
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		if m.session.Closed() {
			return m, nil
		}
		m.session.Tick()
		return m, tickCmd(m.interval)
	}

	if m.showHistory {
		var cmd tea.Cmd
		m.history, cmd = m.history.update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keys.Action(msg)

	switch action {
	case core.ActionQuit:
		m.quitting = true
		m.session.Close()
		return m, tea.Quit

	case core.ActionHistory:
		m.showHistory = !m.showHistory
		if m.showHistory {
			// The game must not run on behind the table
			if st := m.session.State(); !st.Paused && !st.GameOver {
				m.session.HandleAction(core.ActionPause)
				m.autoPaused = true
			}
			m.history.reload()
			return m, nil
		}
		if m.autoPaused {
			m.autoPaused = false
			if st := m.session.State(); st.Paused && !st.GameOver {
				m.session.HandleAction(core.ActionPause)
			}
		}
		return m, nil

	case core.ActionNone:
		if m.showHistory {
			var cmd tea.Cmd
			m.history, cmd = m.history.update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.showHistory {
		// Up and down scroll the table while it is shown
		var cmd tea.Cmd
		m.history, cmd = m.history.update(msg)
		return m, cmd
	}

	m.session.HandleAction(action)
	return m, nil
}

// handleResize resizes the screen and repaints the current state.
// The game itself keeps its field size.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.frame.screen.Resize(msg.Width, msg.Height-helpHeight)
	m.frame.render(m.session.State())
	m.help.Width = msg.Width
	m.history.resize(msg.Width, msg.Height)
	return m, nil
}

// View shows the last rendered frame and the help line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHistory {
		return m.history.view() + "\n" + m.helpView()
	}
	return m.frame.content + "\n" + m.helpView()
}

func (m Model) helpView() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	return helpStyle.Render(m.help.View(m.keys))
}

// Session returns the session the model drives.
func (m Model) Session() *session.Session {
	return m.session
}

// Run starts the Bubble Tea program and blocks until the player quits.
func Run(cfg Config) error {
	model := NewModel(cfg)
	defer model.session.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
