// Package chart draws the 24 hourly totals of one day as horizontal bars.
package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/sipstreak/internal/constants"
	"github.com/julianstephens/sipstreak/internal/intake"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	axisStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

const defaultBarWidth = 40

type Model struct {
	days    []string
	index   int
	hours   [constants.HoursPerDay]int
	floorMl int
	width   int
}

// New selects the first of days, which is today
func New(days []string, floorMl int) Model {
	return Model{days: days, floorMl: floorMl, width: defaultBarWidth}
}

func (m *Model) SetSize(width int) {
	// room for the hour label and the value
	if w := width - 16; w > 0 {
		m.width = w
	}
}

// SetDays replaces the selectable days. A selected past day stays selected
// while it is still in the window; otherwise the chart follows today.
func (m *Model) SetDays(days []string) {
	current := m.Day()
	followToday := m.index == 0
	m.days = days
	m.index = 0
	if followToday {
		return
	}
	for i, d := range days {
		if d == current {
			m.index = i
			break
		}
	}
}

func (m *Model) SetFloor(floorMl int) {
	m.floorMl = floorMl
}

// Day returns the selected day key
func (m Model) Day() string {
	if len(m.days) == 0 {
		return ""
	}
	return m.days[m.index]
}

// Older moves to the previous calendar day and reports whether it moved
func (m *Model) Older() bool {
	if m.index+1 >= len(m.days) {
		return false
	}
	m.index++
	return true
}

// Newer moves toward today and reports whether it moved
func (m *Model) Newer() bool {
	if m.index == 0 {
		return false
	}
	m.index--
	return true
}

func (m *Model) SetHours(hours [constants.HoursPerDay]int) {
	m.hours = hours
}

// Hours returns the hourly totals of the selected day
func (m Model) Hours() [constants.HoursPerDay]int {
	return m.hours
}

func (m Model) View() string {
	if len(m.days) == 0 {
		return axisStyle.Render("No days to chart.")
	}
	scale := intake.ChartMax(m.hours, m.floorMl)
	total := 0
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("◀ %s ▶", m.Day())))
	b.WriteString(axisStyle.Render(fmt.Sprintf("  (%d of %d)", m.index+1, len(m.days))))
	b.WriteString("\n\n")
	for h, ml := range m.hours {
		total += ml
		n := 0
		if scale > 0 {
			n = ml * m.width / scale
		}
		if ml > 0 && n == 0 {
			n = 1
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%02d │", h)))
		b.WriteString(barStyle.Render(strings.Repeat("█", n)))
		if ml > 0 {
			fmt.Fprintf(&b, " %dml", ml)
		}
		b.WriteString("\n")
	}
	b.WriteString(axisStyle.Render(fmt.Sprintf("total %dml", total)))
	return b.String()
}
