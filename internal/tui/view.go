package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StatePlan:
		content = docStyle.Render(m.planModel.View())
	case StateTasks:
		content = docStyle.Render(m.taskList.View())
	case StateComplete, StateReschedule:
		content = docStyle.Render(m.viewForm())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewStatus(),
		content,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Plan", "Tasks"} {
		active := m.state == SessionState(i) ||
			(i == int(StatePlan) && (m.state == StateComplete || m.state == StateReschedule)) ||
			(i == int(StateTasks) && m.state == StateConfirmDelete)
		if active {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	var parts []string
	if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}
	if m.validationWarning != "" {
		parts = append(parts, warningStyle.Render(m.validationWarning))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, joinWithGap(parts)...)
}

func joinWithGap(parts []string) []string {
	var out []string
	for i, p := range parts {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, p)
	}
	return out
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	title := "Complete " + m.selection.Occurrence.Title
	if m.state == StateReschedule {
		title = "Reschedule " + m.selection.Occurrence.Title
	}
	return lipgloss.JoinVertical(lipgloss.Left, activeTabStyle.Render(title), "", m.form.View())
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, max(1, m.height-4),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete \""+m.taskToDelete.Title+"\"?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
