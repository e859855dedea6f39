package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/cadence/internal/actions"
	"github.com/julianstephens/cadence/internal/recurrence"
	"github.com/julianstephens/cadence/internal/tui/components/tasklist"
	"github.com/julianstephens/cadence/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// tabs, status line, help and margins
		h, v := docStyle.GetFrameSize()
		m.planModel.SetSize(msg.Width-h, msg.Height-v-4)
		m.taskList.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case tasklist.DeleteTaskMsg:
		m.taskToDelete = msg
		m.state = StateConfirmDelete
		return m, nil

	case tasklist.RestoreTaskMsg:
		if err := m.actions.RestoreTask(msg.ID); err != nil {
			m.setError(err)
		} else {
			m.status = "Task restored"
		}
		m.reload()
		return m, nil
	}

	switch m.state {
	case StateComplete, StateReschedule:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		filtering := m.state == StateTasks && m.taskList.Filtering()
		switch {
		case filtering:
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status = ""
			m.reload()
			return m, nil
		}

		if m.state == StatePlan {
			if next, cmd, ok := m.updatePlanKeys(msg); ok {
				return next, cmd
			}
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StatePlan:
		m.planModel, cmd = m.planModel.Update(msg)
	case StateTasks:
		m.taskList, cmd = m.taskList.Update(msg)
	}
	return m, cmd
}

// updatePlanKeys handles the occurrence actions of the plan tab.
func (m Model) updatePlanKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Today):
		if today, err := m.actions.Today(); err == nil {
			m.start = today
		}
		m.reload()
		return m, nil, true
	case key.Matches(msg, m.keys.Complete):
		sel, ok := m.planModel.Selected()
		if !ok {
			return m, nil, true
		}
		m.selection = sel
		m.completeForm = &CompleteFormModel{Minutes: strconv.Itoa(sel.Occurrence.Duration)}
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Minutes worked").
					Value(&m.completeForm.Minutes).
					Validate(validateMinutes),
				huh.NewInput().
					Title("Note").
					Placeholder("optional").
					Value(&m.completeForm.Note),
			),
		)
		m.state = StateComplete
		return m, m.form.Init(), true
	case key.Matches(msg, m.keys.Skip):
		sel, ok := m.planModel.Selected()
		if !ok {
			return m, nil, true
		}
		m.selection = sel
		return m.applySkip(), nil, true
	case key.Matches(msg, m.keys.Reschedule):
		sel, ok := m.planModel.Selected()
		if !ok {
			return m, nil, true
		}
		m.selection = sel
		m.rescheduleForm = &RescheduleFormModel{Date: utils.AddDays(m.start, 1)}
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Move "+sel.Occurrence.Title+" to").
					Description("YYYY-MM-DD").
					Value(&m.rescheduleForm.Date).
					Validate(validateDate),
			),
		)
		m.state = StateReschedule
		return m, m.form.Init(), true
	}
	return m, nil, false
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.state = StatePlan
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.state == StateComplete {
			m = m.applyComplete()
		} else {
			m = m.applyReschedule()
		}
		m.state = StatePlan
		m.form = nil
		return m, nil
	case huh.StateAborted:
		m.state = StatePlan
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		if err := m.actions.DeleteTask(m.taskToDelete.ID); err != nil {
			m.setError(err)
		} else {
			m.status = fmt.Sprintf("Deleted %s", m.taskToDelete.Title)
		}
		m.reload()
		m.state = StateTasks
		m.taskToDelete = tasklist.DeleteTaskMsg{}
	case key.Matches(keyMsg, m.keys.Cancel):
		m.state = StateTasks
		m.taskToDelete = tasklist.DeleteTaskMsg{}
	}
	return m, nil
}

func (m Model) applyComplete() Model {
	occ := m.selection.Occurrence
	minutes, _ := strconv.Atoi(strings.TrimSpace(m.completeForm.Minutes))

	task, err := m.actions.Complete(actions.CompleteRequest{
		TaskID:  occ.TaskID,
		Ref:     recurrence.RefFor(occ),
		Date:    m.selection.Day.Date,
		Minutes: minutes,
		Note:    strings.TrimSpace(m.completeForm.Note),
	})
	switch {
	case errors.Is(err, actions.ErrHistoryNotRecorded):
		m.status = fmt.Sprintf("Completed %s (history not recorded)", task.Title)
	case err != nil:
		m.setError(err)
	default:
		m.status = fmt.Sprintf("Completed %s", task.Title)
	}
	m.completeForm = nil
	m.reload()
	return m
}

func (m Model) applySkip() Model {
	occ := m.selection.Occurrence
	task, err := m.actions.Skip(occ.TaskID, recurrence.RefFor(occ), m.selection.Day.Date)
	switch {
	case errors.Is(err, actions.ErrHistoryNotRecorded):
		m.status = fmt.Sprintf("Skipped %s (history not recorded)", task.Title)
	case err != nil:
		m.setError(err)
	default:
		m.status = fmt.Sprintf("Skipped %s", task.Title)
	}
	m.reload()
	return m
}

func (m Model) applyReschedule() Model {
	occ := m.selection.Occurrence
	date := strings.TrimSpace(m.rescheduleForm.Date)
	task, err := m.actions.Reschedule(occ.TaskID, recurrence.RefFor(occ), date)
	if err != nil {
		m.setError(err)
	} else {
		m.status = fmt.Sprintf("Moved %s to %s", task.Title, date)
	}
	m.rescheduleForm = nil
	m.reload()
	return m
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return errors.New("enter a whole number of minutes")
	}
	return nil
}

func validateDate(s string) error {
	if !utils.ValidateDateFormat(strings.TrimSpace(s)) {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}
