// Package plan renders a window plan one day at a time with a cursor over
// the day's occurrences.
package plan

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Selection is the occurrence under the cursor and the day showing it.
type Selection struct {
	Day        models.DayPlan
	Occurrence models.Occurrence
}

type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	PrevDay key.Binding
	NextDay key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PrevDay: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
	}
}

type Model struct {
	viewport viewport.Model
	keys     KeyMap
	plan     models.WindowPlan
	day      int
	cursor   int
}

func New(width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		keys:     DefaultKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// SetPlan replaces the plan, keeping the same day selected when the window
// still contains it.
func (m *Model) SetPlan(plan models.WindowPlan) {
	current := ""
	if d, ok := m.currentDay(); ok {
		current = d.Date
	}
	m.plan = plan
	m.day = 0
	for i, d := range plan.Days {
		if d.Date == current {
			m.day = i
			break
		}
	}
	m.clampCursor()
	m.render()
}

func (m Model) Plan() models.WindowPlan {
	return m.plan
}

// Selected returns the occurrence under the cursor.
func (m Model) Selected() (Selection, bool) {
	day, ok := m.currentDay()
	if !ok || m.cursor >= len(day.Occurrences) {
		return Selection{}, false
	}
	return Selection{Day: day, Occurrence: day.Occurrences[m.cursor]}, true
}

func (m Model) currentDay() (models.DayPlan, bool) {
	if m.day < 0 || m.day >= len(m.plan.Days) {
		return models.DayPlan{}, false
	}
	return m.plan.Days[m.day], true
}

func (m *Model) clampCursor() {
	day, _ := m.currentDay()
	m.cursor = max(0, min(m.cursor, len(day.Occurrences)-1))
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		handled := true
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if day, ok := m.currentDay(); ok && m.cursor < len(day.Occurrences)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.PrevDay):
			if m.day > 0 {
				m.day--
				m.cursor = 0
			}
		case key.Matches(msg, m.keys.NextDay):
			if m.day < len(m.plan.Days)-1 {
				m.day++
				m.cursor = 0
			}
		default:
			handled = false
		}
		if handled {
			m.render()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	day, ok := m.currentDay()
	if !ok {
		return emptyStyle.Render("No plan loaded.")
	}
	header := headerStyle.Render(fmt.Sprintf("◀ %s ▶", day.Label)) +
		fmt.Sprintf("  %s planned  [%d/%d]", cli.FormatMinutes(day.TotalMinutes), m.day+1, len(m.plan.Days))
	return lipgloss.JoinVertical(lipgloss.Left, header, "", m.viewport.View())
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	// header and spacer line
	m.viewport.Height = max(1, height-2)
	m.render()
}

func (m *Model) render() {
	day, ok := m.currentDay()
	if !ok {
		m.viewport.SetContent("")
		return
	}
	if len(day.Occurrences) == 0 {
		m.viewport.SetContent(emptyStyle.Render("  Nothing planned"))
		m.viewport.GotoTop()
		return
	}

	var b strings.Builder
	for i, o := range day.Occurrences {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(cli.RenderOccurrence(o))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())

	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	} else if m.viewport.Height > 0 && m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}
