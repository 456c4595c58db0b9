package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/sipstreak/internal/constants"
	"github.com/julianstephens/sipstreak/internal/logger"
	"github.com/julianstephens/sipstreak/internal/notifier"
)

const tabCount = int(constants.StateProfile) + 1

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bar.Width = min(msg.Width-8, 60)
		m.historyModel.SetSize(msg.Width-4, max(msg.Height-8, 1))
		m.chartModel.SetSize(msg.Width - 4)

	case midnightMsg:
		award := m.tracker.Refresh()
		m.reload()
		return m, tea.Batch(listen(m.events), m.showAward(award))

	case reminderMsg:
		m.lastReminder = msg.tick.At
		if msg.err != nil {
			// no tray and no terminal fallback; surface it in the UI instead
			logger.Debug("Reminder shown in TUI", "seq", msg.tick.Seq, "error", msg.err)
			return m, tea.Batch(listen(m.events), m.showToast(notifier.ReminderText()))
		}
		return m, listen(m.events)

	case toastExpiredMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil
	}

	switch m.state {
	case constants.StateEditGoal, constants.StateEditReminder, constants.StateEditProfile:
		return m.updateForm(msg)
	case constants.StateConfirmReset:
		return m.updateConfirmReset(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(keyMsg, m.keys.Tab):
		m.switchTab(int(m.state) + 1)
		return m, nil
	case key.Matches(keyMsg, m.keys.ShiftTab):
		m.switchTab(int(m.state) - 1 + tabCount)
		return m, nil
	}

	switch m.state {
	case constants.StateToday:
		return m.updateToday(keyMsg)
	case constants.StateHistory:
		var cmd tea.Cmd
		m.historyModel, cmd = m.historyModel.Update(keyMsg)
		return m, cmd
	case constants.StateChart:
		switch {
		case key.Matches(keyMsg, m.keys.Left):
			if m.chartModel.Newer() {
				m.loadChart()
			}
		case key.Matches(keyMsg, m.keys.Right):
			if m.chartModel.Older() {
				m.loadChart()
			}
		}
	case constants.StateReminder:
		switch {
		case key.Matches(keyMsg, m.keys.Start):
			m.reminderForm = &ReminderFormModel{Minutes: strconv.Itoa(m.reminderMinutes)}
			return m.openForm(constants.StateEditReminder, NewReminderForm(m.reminderForm))
		case key.Matches(keyMsg, m.keys.Stop):
			if m.scheduler != nil && m.scheduler.StopReminder() {
				return m, m.showToast("Reminder stopped")
			}
		}
	case constants.StateProfile:
		if key.Matches(keyMsg, m.keys.Edit) {
			m.profileForm = m.profileFormModel()
			return m.openForm(constants.StateEditProfile, NewProfileForm(m.profileForm))
		}
	}
	return m, nil
}

func (m *Model) switchTab(i int) {
	m.state = constants.SessionState(i % tabCount)
	// the day may have rolled over while another tab was showing
	m.reload()
}

func (m Model) updateToday(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Drink):
		res, err := m.tracker.Drink()
		if err != nil {
			return m, m.showToast("Could not log drink: " + err.Error())
		}
		m.reload()
		if res.Award != nil {
			return m, m.showAward(res.Award)
		}
		return m, nil
	case key.Matches(msg, m.keys.Undo):
		res, ok := m.tracker.Undo()
		if !ok {
			return m, m.showToast("Nothing to undo")
		}
		m.reload()
		return m, m.showToast("Removed " + strconv.Itoa(res.Event.VolumeMl) + "ml")
	case key.Matches(msg, m.keys.Goal):
		m.goalForm = &GoalFormModel{GoalMl: strconv.Itoa(m.snapshot.GoalMl)}
		return m.openForm(constants.StateEditGoal, NewGoalForm(m.goalForm))
	case key.Matches(msg, m.keys.Reset):
		m.previousState = m.state
		m.state = constants.StateConfirmReset
	}
	return m, nil
}

func (m Model) openForm(state constants.SessionState, form *huh.Form) (tea.Model, tea.Cmd) {
	m.previousState = m.state
	m.state = state
	m.form = form
	m.formError = ""
	return m, m.form.Init()
}

func (m Model) closeForm() Model {
	m.state = m.previousState
	m.form = nil
	return m
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.formError = ""
		return m.closeForm(), nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		toast, err := m.applyForm()
		if err != nil {
			// stay in the form so the value can be corrected
			m.formError = err.Error()
			m.form.State = huh.StateNormal
			return m, tea.Batch(cmds...)
		}
		m.formError = ""
		m = m.closeForm()
		m.reload()
		if toast != "" {
			cmds = append(cmds, m.showToast(toast))
		}
	case huh.StateAborted:
		m.formError = ""
		m = m.closeForm()
	}
	return m, tea.Batch(cmds...)
}

// applyForm saves the completed form and returns the toast to show
func (m *Model) applyForm() (string, error) {
	switch m.state {
	case constants.StateEditGoal:
		goal, err := strconv.Atoi(strings.TrimSpace(m.goalForm.GoalMl))
		if err != nil {
			return "", err
		}
		res, err := m.tracker.SetGoal(goal)
		if err != nil {
			return "", err
		}
		if res.Award != nil {
			return res.Award.Message(), nil
		}
		return "Goal set to " + strconv.Itoa(goal) + "ml", nil
	case constants.StateEditReminder:
		minutes, err := strconv.Atoi(strings.TrimSpace(m.reminderForm.Minutes))
		if err != nil {
			return "", err
		}
		if err := m.startReminder(minutes); err != nil {
			return "", err
		}
		return m.reminderStatus(), nil
	case constants.StateEditProfile:
		p, err := m.profileForm.Profile()
		if err != nil {
			return "", err
		}
		if err := m.tracker.SetProfile(p); err != nil {
			return "", err
		}
		return "Profile saved", nil
	}
	return "", nil
}

func (m Model) updateConfirmReset(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "y", "Y":
		m.state = m.previousState
		if err := m.tracker.Reset(); err != nil {
			return m, m.showToast("Reset failed: " + err.Error())
		}
		m.reload()
		return m, m.showToast("Drinks and streak cleared")
	case "n", "N", "esc", "q":
		m.state = m.previousState
	}
	return m, nil
}
