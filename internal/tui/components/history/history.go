// Package history renders the per-day drink log in a scrollable viewport.
package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/sipstreak/internal/intake"
)

var (
	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			MarginRight(1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type Model struct {
	viewport viewport.Model
	days     []intake.DayHistory
	width    int
}

func New(days []intake.DayHistory, width, height int) Model {
	m := Model{viewport: viewport.New(width, height), width: width}
	m.SetHistory(days)
	return m
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(m.render())
}

func (m *Model) SetHistory(days []intake.DayHistory) {
	m.days = days
	m.viewport.SetContent(m.render())
	m.viewport.GotoTop()
}

func (m Model) Days() []intake.DayHistory {
	return m.days
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m Model) render() string {
	if len(m.days) == 0 {
		return emptyStyle.Render("No drinks logged yet.")
	}
	var b strings.Builder
	for i, day := range m.days {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(dayStyle.Render(fmt.Sprintf("%s  %dml", day.Day, day.TotalMl)))
		b.WriteString("\n")
		chips := make([]string, 0, len(day.Entries))
		for _, e := range day.Entries {
			chips = append(chips, chipStyle.Render(fmt.Sprintf("%s +%d", e.Clock, e.VolumeMl)))
		}
		b.WriteString(wrap(chips, m.width))
		b.WriteString("\n")
	}
	return b.String()
}

// wrap lays chips out in rows no wider than width
func wrap(chips []string, width int) string {
	if width <= 0 {
		return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
	}
	var rows []string
	var row []string
	used := 0
	for _, c := range chips {
		w := lipgloss.Width(c)
		if len(row) > 0 && used+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, used = nil, 0
		}
		row = append(row, c)
		used += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(rows, "\n")
}
