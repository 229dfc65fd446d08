package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-snake/internal/storage"
)

// maxRounds is how many rounds the history view loads.
const maxRounds = 50

// RoundSource lists recorded rounds, most recent first.
type RoundSource interface {
	Rounds(ctx context.Context, limit int) ([]storage.Round, error)
}

// historyView shows the rounds played in this process as a table.
type historyView struct {
	source RoundSource
	rounds []storage.Round
	err    error
	table  table.Model
	width  int
	height int
}

func newHistoryView(source RoundSource, width, height int) historyView {
	h := historyView{source: source, width: width, height: height}
	h.table = h.createTable()
	return h
}

// createTable creates the rounds table sized for the view.
func (h *historyView) createTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Level", Width: 12},
		{Title: "Score", Width: 7},
		{Title: "Length", Width: 7},
		{Title: "Ticks", Width: 7},
		{Title: "Result", Width: 9},
		{Title: "Time", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(h.height-8, 3)), // Room for title, border and help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// reload fetches the rounds from the source.
func (h *historyView) reload() {
	h.rounds, h.err = nil, nil
	if h.source != nil {
		h.rounds, h.err = h.source.Rounds(context.Background(), maxRounds)
	}

	rows := make([]table.Row, len(h.rounds))
	for i, r := range h.rounds {
		result := "lost"
		if r.Won {
			result = "won"
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", len(h.rounds)-i),
			r.Level,
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("%d", r.Length),
			fmt.Sprintf("%d", r.Ticks),
			result,
			r.CreatedAt.Format("15:04:05"),
		}
	}
	h.table.SetRows(rows)
	h.table.GotoTop()
}

func (h *historyView) resize(width, height int) {
	h.width, h.height = width, height
	h.table = h.createTable()
	h.reload()
}

func (h historyView) update(msg tea.Msg) (historyView, tea.Cmd) {
	var cmd tea.Cmd
	h.table, cmd = h.table.Update(msg)
	return h, cmd
}

func (h historyView) view() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	b.WriteString(titleStyle.Render("ROUNDS THIS SESSION"))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	switch {
	case h.err != nil:
		b.WriteString(boxStyle.Render("Cannot load rounds: " + h.err.Error()))
	case len(h.rounds) == 0:
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(1, 2)
		b.WriteString(boxStyle.Render(emptyStyle.Render("No rounds finished yet.")))
	default:
		b.WriteString(boxStyle.Render(h.table.View()))
	}

	return lipgloss.Place(h.width, max(h.height-1, 0), lipgloss.Center, lipgloss.Center, b.String())
}
