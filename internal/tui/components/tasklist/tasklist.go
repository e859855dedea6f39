package tasklist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/models"
)

type DeleteTaskMsg struct {
	ID    string
	Title string
}

type RestoreTaskMsg struct {
	ID string
}

type Item struct {
	Task models.TaskTemplate
}

func (i Item) Title() string {
	if i.Task.DeletedAt != nil {
		return "👻 " + i.Task.Title + " (deleted)"
	}
	return i.Task.Title
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s | %s | %s", cli.FormatMinutes(i.Task.Duration), cli.FormatRecurrence(i.Task.Recurrence), i.Task.Priority)
	switch {
	case i.Task.DeletedAt != nil:
		desc += " | can restore with 'r'"
	case i.Task.IsFloating():
		desc += " | " + cli.FormatMinutes(i.Task.Remaining()) + " left"
	case i.Task.NextDueDate != "":
		desc += " | due " + i.Task.NextDueDate
	}
	return desc
}

func (i Item) FilterValue() string { return i.Task.Title }

type KeyMap struct {
	Delete  key.Binding
	Restore key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(tasks []models.TaskTemplate, width, height int) Model {
	l := list.New(items(tasks), list.NewDefaultDelegate(), width, height)
	l.Title = "Tasks"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the parent model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Delete, keys.Restore}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Delete, keys.Restore}
	}

	return Model{list: l, keys: keys}
}

func items(tasks []models.TaskTemplate) []list.Item {
	out := make([]list.Item, len(tasks))
	for i, t := range tasks {
		out[i] = Item{Task: t}
	}
	return out
}

func (m *Model) SetTasks(tasks []models.TaskTemplate) {
	m.list.SetItems(items(tasks))
}

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Task.DeletedAt == nil {
				return m, func() tea.Msg { return DeleteTaskMsg{ID: i.Task.ID, Title: i.Task.Title} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Restore):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Task.DeletedAt != nil {
				return m, func() tea.Msg { return RestoreTaskMsg{ID: i.Task.ID} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No tasks yet.\n  Add one with 'cadence task add'."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
