// Package tui is the interactive planner: a day-by-day board over the
// planning window and a task list, both backed by the actions service.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/cadence/internal/actions"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/tui/components/plan"
	"github.com/julianstephens/cadence/internal/tui/components/tasklist"
	"github.com/julianstephens/cadence/internal/validation"
)

type SessionState int

const (
	StatePlan SessionState = iota
	StateTasks
	StateComplete
	StateReschedule
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab.
const tabCount = 2

type CompleteFormModel struct {
	Minutes string
	Note    string
}

type RescheduleFormModel struct {
	Date string
}

type Model struct {
	actions        *actions.Service
	state          SessionState
	keys           KeyMap
	help           help.Model
	planModel      plan.Model
	taskList       tasklist.Model
	form           *huh.Form
	completeForm   *CompleteFormModel
	rescheduleForm *RescheduleFormModel
	selection      plan.Selection
	taskToDelete   tasklist.DeleteTaskMsg
	start          time.Time
	status         string
	// validationWarning summarizes conflicts in the current window.
	validationWarning string
	quitting          bool
	width             int
	height            int
}

func NewModel(svc *actions.Service) Model {
	m := Model{
		actions:   svc,
		state:     StatePlan,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		planModel: plan.New(0, 0),
		taskList:  tasklist.New(nil, 0, 0),
	}

	today, err := svc.Today()
	if err != nil {
		logger.Warn("Failed to resolve today, using local time", "error", err)
		now := time.Now()
		today = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
	m.start = today
	m.reload()

	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StatePlan {
		keys = append(keys, m.keys.Complete, m.keys.Skip, m.keys.Reschedule)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}

	var bindings []key.Binding
	switch m.state {
	case StatePlan:
		pk := plan.DefaultKeyMap()
		bindings = []key.Binding{pk.Up, pk.Down, pk.PrevDay, pk.NextDay, m.keys.Complete, m.keys.Skip, m.keys.Reschedule, m.keys.Today}
	case StateTasks:
		tk := tasklist.DefaultKeyMap()
		bindings = []key.Binding{tk.Delete, tk.Restore}
	}

	return [][]key.Binding{global, bindings}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// reload rebuilds the window plan and the task list from the store.
func (m *Model) reload() {
	settings, err := m.actions.Store.GetSettings()
	if err != nil {
		m.setError(err)
		return
	}

	window, err := m.actions.Plan(m.start, settings.WindowDays)
	if err != nil {
		m.setError(err)
		return
	}
	m.planModel.SetPlan(window)

	tasks, err := m.actions.ListTasks(true)
	if err != nil {
		m.setError(err)
		return
	}
	m.taskList.SetTasks(tasks)

	active, err := m.actions.ListTasks(false)
	if err != nil {
		m.validationWarning = "⚠ Validation unavailable"
		return
	}
	validator := validation.New()
	conflicts := len(validator.ValidateTasks(active).Conflicts) +
		len(validator.ValidatePlan(window, active, settings.DailyTargetMin).Conflicts)
	if conflicts > 0 {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s), run 'cadence validate'", conflicts)
	} else {
		m.validationWarning = ""
	}
}

func (m *Model) setError(err error) {
	logger.Error("TUI action failed", "error", err)
	m.status = "Error: " + err.Error()
}
