package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/cadence/internal/models"
)

var (
	dayHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(7)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	highStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// FormatMinutes renders minutes as 45m, 2h or 1h30m.
func FormatMinutes(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, m)
	}
}

// FormatRecurrence formats a recurrence rule into a human-readable string
func FormatRecurrence(rec models.Recurrence) string {
	switch r := rec.(type) {
	case nil:
		return "every day"
	case models.GapRecurrence:
		if r.GapDays <= 1 {
			return "every day"
		}
		return fmt.Sprintf("every %d days", r.GapDays)
	case models.WeeklyRecurrence:
		if len(r.Days) == 0 {
			return "weekly"
		}
		days := make([]string, len(r.Days))
		for i, wd := range r.Days {
			days[i] = wd.String()[:3]
		}
		return "weekly on " + strings.Join(days, ",")
	case models.SingleRecurrence:
		if r.Date == "" {
			return "once"
		}
		return "once on " + r.Date
	case models.FloatingRecurrence:
		return "floating"
	default:
		return "unknown"
	}
}

// ShortID is the id prefix shown in listings.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RenderOccurrence renders one plan card on a single line.
func RenderOccurrence(o models.Occurrence) string {
	clock := o.ScheduledTime
	if clock == "" {
		clock = "--:--"
	}

	title := o.Title
	if o.Part != "" {
		title += " (" + o.Part + ")"
	}

	var b strings.Builder
	b.WriteString(timeStyle.Render(clock))
	b.WriteString(titleStyle.Render(title))
	b.WriteString("  " + FormatMinutes(o.Duration))
	if o.Status == models.StatusOverdue {
		b.WriteString("  " + overdueStyle.Render("overdue since "+o.DueDate))
	}
	label := o.PriorityLabel
	if o.Priority == models.PriorityHigh {
		label = highStyle.Render(label)
	}
	b.WriteString("  " + label)
	b.WriteString("  " + metaStyle.Render(ShortID(o.TaskID)))
	return b.String()
}

// RenderDay renders a day header followed by its cards.
func RenderDay(day models.DayPlan) string {
	var b strings.Builder
	header := fmt.Sprintf("%s  (%s planned)", day.Label, FormatMinutes(day.TotalMinutes))
	b.WriteString(dayHeaderStyle.Render(header))
	b.WriteString("\n")

	if len(day.Occurrences) == 0 {
		b.WriteString(metaStyle.Render("  Nothing planned"))
		b.WriteString("\n")
		return b.String()
	}
	for _, o := range day.Occurrences {
		b.WriteString("  ")
		b.WriteString(RenderOccurrence(o))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderPlan renders every day of a window plan.
func RenderPlan(plan models.WindowPlan) string {
	days := make([]string, len(plan.Days))
	for i, day := range plan.Days {
		days[i] = RenderDay(day)
	}
	return strings.Join(days, "\n")
}

// RenderTask renders one template for task listings.
func RenderTask(t models.TaskTemplate) string {
	var b strings.Builder
	status := "active"
	if t.DeletedAt != nil {
		status = "deleted"
	}
	fmt.Fprintf(&b, "  [%s] %s  %s - %s (%s, %s)",
		status, metaStyle.Render(ShortID(t.ID)), titleStyle.Render(t.Title),
		FormatMinutes(t.Duration), FormatRecurrence(t.Recurrence), t.Priority)

	var details []string
	if t.NextDueDate != "" {
		details = append(details, "due "+t.NextDueDate)
	}
	if t.IsFloating() {
		details = append(details, FormatMinutes(t.Remaining())+" remaining")
	}
	if t.DeferUntil != "" {
		details = append(details, "deferred until "+t.DeferUntil)
	}
	if n := len(t.ScheduledSlots); n > 0 {
		details = append(details, fmt.Sprintf("%d slot(s)", n))
	}
	if len(details) > 0 {
		b.WriteString("\n      " + metaStyle.Render(strings.Join(details, ", ")))
	}
	return b.String()
}
