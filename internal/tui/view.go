package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/sipstreak/internal/constants"
)

var tabTitles = []string{"Today", "History", "Chart", "Reminder", "Profile"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case constants.StateToday:
		content = m.viewToday()
	case constants.StateHistory:
		content = docStyle.Render(m.historyModel.View())
	case constants.StateChart:
		content = docStyle.Render(m.chartModel.View())
	case constants.StateReminder:
		content = m.viewReminder()
	case constants.StateProfile:
		content = m.viewProfile()
	case constants.StateEditGoal, constants.StateEditReminder, constants.StateEditProfile:
		content = m.viewForm()
	case constants.StateConfirmReset:
		content = m.viewConfirmReset()
	}

	var toast string
	if m.toast != "" {
		toast = toastStyle.Render(m.toast)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		toast,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	active := m.state
	if active > constants.StateProfile {
		active = m.previousState
	}
	for i, title := range tabTitles {
		if active == constants.SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewToday() string {
	s := m.snapshot
	bar := m.bar
	bar.FullColor = s.Color.Hex()

	lines := []string{
		titleStyle.Render(fmt.Sprintf("💧 %d / %d ml", s.TotalMl, s.GoalMl)),
		bar.ViewAs(s.Ratio),
		lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color.Hex())).Render(s.Hint.Message),
		"",
		fmt.Sprintf("Sips today: %d   Remaining: %dml   Cup: %dml", s.Count, s.RemainingMl, s.CupMl),
		m.viewStreak(),
	}
	return docStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewStreak() string {
	unit := "days"
	if m.snapshot.Streak == 1 {
		unit = "day"
	}
	line := fmt.Sprintf("🔥 Streak: %d %s", m.snapshot.Streak, unit)
	if m.snapshot.AwardedToday {
		line += mutedStyle.Render("  (goal met today)")
	}
	return line
}

func (m Model) viewReminder() string {
	lines := []string{
		titleStyle.Render("Reminder"),
		m.reminderStatus(),
	}
	if !m.lastReminder.IsZero() {
		lines = append(lines, mutedStyle.Render("Last reminder at "+m.lastReminder.Format("15:04")))
	}
	if m.scheduler != nil {
		if next := m.scheduler.NextMidnight(); !next.IsZero() {
			lines = append(lines, mutedStyle.Render("Day resets "+next.Format(time.RFC1123)))
		}
	}
	return docStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewProfile() string {
	p := m.profile
	gender := p.Gender
	if gender == "" {
		gender = "-"
	}
	age := "-"
	if p.Age > 0 {
		age = fmt.Sprintf("%d", p.Age)
	}
	lines := []string{
		titleStyle.Render("Profile"),
		fmt.Sprintf("Cup size: %s", p.CupMl),
		fmt.Sprintf("Gender:   %s", gender),
		fmt.Sprintf("Age:      %s", age),
		fmt.Sprintf("Outfit:   %s", p.OutfitSummary()),
	}
	return docStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	content := m.form.View()
	if m.formError != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, errorStyle.Render(m.formError))
	}
	return docStyle.Render(content)
}

func (m Model) viewConfirmReset() string {
	return lipgloss.Place(m.width, max(m.height-4, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Clear every drink and the streak? Goal and profile are kept."),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
