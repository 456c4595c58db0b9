package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	progressbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/sipstreak/internal/constants"
	"github.com/julianstephens/sipstreak/internal/logger"
	"github.com/julianstephens/sipstreak/internal/models"
	"github.com/julianstephens/sipstreak/internal/notifier"
	"github.com/julianstephens/sipstreak/internal/scheduler"
	"github.com/julianstephens/sipstreak/internal/tracker"
	"github.com/julianstephens/sipstreak/internal/tui/components/chart"
	"github.com/julianstephens/sipstreak/internal/tui/components/history"
)

type GoalFormModel struct {
	GoalMl string
}

type ReminderFormModel struct {
	Minutes string
}

type ProfileFormModel struct {
	CupMl     models.CupSize
	Gender    string
	Age       string
	Hat       string
	Top       string
	Accessory string
}

// midnightMsg is sent by the scheduler after each local midnight
type midnightMsg time.Time

// reminderMsg is sent after each reminder delivery attempt
type reminderMsg struct {
	tick scheduler.Tick
	err  error
}

type toastExpiredMsg struct {
	id int
}

type Model struct {
	tracker   *tracker.Tracker
	scheduler *scheduler.Scheduler
	notifier  *notifier.Notifier
	events    chan tea.Msg

	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	bar           progressbar.Model
	historyModel  history.Model
	chartModel    chart.Model

	snapshot        tracker.Snapshot
	profile         models.Profile
	reminderMinutes int
	lastReminder    time.Time

	form         *huh.Form
	goalForm     *GoalFormModel
	reminderForm *ReminderFormModel
	profileForm  *ProfileFormModel
	formError    string

	toast    string
	toastID  int
	quitting bool
	width    int
	height   int
}

// NewModel builds the TUI over t. Midnight refreshes and reminder ticks from
// sched reach the program as messages; n may be nil to skip delivery.
func NewModel(t *tracker.Tracker, sched *scheduler.Scheduler, n *notifier.Notifier, reminderMinutes int) Model {
	if reminderMinutes < constants.MinReminderMinutes {
		reminderMinutes = constants.DefaultReminderMinutes
	}
	snap, award := t.Status()
	m := Model{
		tracker:         t,
		scheduler:       sched,
		notifier:        n,
		events:          make(chan tea.Msg, 8),
		state:           constants.StateToday,
		keys:            DefaultKeyMap(),
		help:            help.New(),
		bar:             progressbar.New(progressbar.WithSolidFill(snap.Color.Hex()), progressbar.WithoutPercentage()),
		historyModel:    history.New(t.History(), 0, 0),
		chartModel:      chart.New(t.DayKeys(), snap.CupMl),
		snapshot:        snap,
		profile:         t.Profile(),
		reminderMinutes: reminderMinutes,
	}
	m.loadChart()
	if award != nil {
		m.toast = award.Message()
	}

	if sched != nil {
		events := m.events
		sched.OnMidnight(func(now time.Time) {
			push(events, midnightMsg(now))
		})
	}
	return m
}

// push hands msg to the program without blocking the scheduler
func push(events chan<- tea.Msg, msg tea.Msg) {
	select {
	case events <- msg:
	default:
		logger.Debug("TUI event dropped", "msg", msg)
	}
}

func listen(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func expireToast(id int) tea.Cmd {
	return tea.Tick(constants.ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{listen(m.events)}
	if m.toast != "" {
		cmds = append(cmds, expireToast(m.toastID))
	}
	return tea.Batch(cmds...)
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateToday:
		keys = append(keys, m.keys.Drink, m.keys.Undo, m.keys.Goal)
	case constants.StateChart:
		keys = append(keys, m.keys.Left, m.keys.Right)
	case constants.StateReminder:
		keys = append(keys, m.keys.Start, m.keys.Stop)
	case constants.StateProfile:
		keys = append(keys, m.keys.Edit)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}

	var actions []key.Binding
	switch m.state {
	case constants.StateToday:
		actions = []key.Binding{m.keys.Drink, m.keys.Undo, m.keys.Goal, m.keys.Reset}
	case constants.StateHistory:
		actions = []key.Binding{m.keys.Up, m.keys.Down}
	case constants.StateChart:
		actions = []key.Binding{m.keys.Left, m.keys.Right}
	case constants.StateReminder:
		actions = []key.Binding{m.keys.Start, m.keys.Stop}
	case constants.StateProfile:
		actions = []key.Binding{m.keys.Edit}
	}
	return [][]key.Binding{global, actions}
}

// reload re-reads every view from the tracker after a mutation or refresh
func (m *Model) reload() {
	m.snapshot = m.tracker.Snapshot()
	m.profile = m.tracker.Profile()
	m.historyModel.SetHistory(m.tracker.History())
	m.chartModel.SetDays(m.tracker.DayKeys())
	m.chartModel.SetFloor(m.snapshot.CupMl)
	m.loadChart()
}

func (m *Model) loadChart() {
	day := m.chartModel.Day()
	if day == "" {
		return
	}
	hours, err := m.tracker.Hourly(day)
	if err != nil {
		logger.Warn("Failed to load hourly totals", "day", day, "error", err)
		return
	}
	m.chartModel.SetHours(hours)
}

// showToast replaces the current toast and schedules its removal
func (m *Model) showToast(text string) tea.Cmd {
	m.toastID++
	m.toast = text
	return expireToast(m.toastID)
}

func (m *Model) showAward(award *tracker.Award) tea.Cmd {
	if award == nil {
		return nil
	}
	return m.showToast(award.Message())
}

func (m *Model) startReminder(minutes int) error {
	if m.scheduler == nil {
		return nil
	}
	n, events := m.notifier, m.events
	err := m.scheduler.StartReminder(minutes, func(tick scheduler.Tick) {
		var err error
		if n != nil {
			err = n.Remind()
		}
		push(events, reminderMsg{tick: tick, err: err})
	})
	if err != nil {
		return err
	}
	m.reminderMinutes = minutes
	return nil
}

func (m Model) reminderStatus() string {
	if m.scheduler == nil {
		return scheduler.FormatStatus(0, false)
	}
	return m.scheduler.ReminderStatus()
}

func (m Model) profileFormModel() *ProfileFormModel {
	fm := &ProfileFormModel{
		CupMl:     m.profile.CupMl,
		Gender:    m.profile.Gender,
		Hat:       m.profile.Outfit[models.OutfitHat],
		Top:       m.profile.Outfit[models.OutfitTop],
		Accessory: m.profile.Outfit[models.OutfitAccessory],
	}
	if m.profile.Age > 0 {
		fm.Age = strconv.Itoa(m.profile.Age)
	}
	return fm
}
