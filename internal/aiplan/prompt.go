package aiplan

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/julianstephens/cadence/internal/models"
)

// TaskPreview is the view of a template the model sees.
type TaskPreview struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	DurationMinutes  int             `json:"duration_minutes"`
	Priority         models.Priority `json:"priority"`
	Mode             string          `json:"recurrence_mode"`
	Window           models.Window   `json:"window"`
	NextDueDate      string          `json:"next_due_date,omitempty"`
	RemainingMinutes *int            `json:"remaining_minutes,omitempty"`
	DeferUntil       string          `json:"defer_until,omitempty"`
	ScheduledSlots   []time.Time     `json:"scheduled_slots,omitempty"`
	LastCompletedAt  *time.Time      `json:"last_completed_at,omitempty"`
}

// PreviewTasks selects the templates relevant to the week ending on weekEnd:
// floating templates with work left and dated templates due by weekEnd.
func PreviewTasks(templates []models.TaskTemplate, weekEnd string) []TaskPreview {
	previews := []TaskPreview{}
	for _, t := range templates {
		if t.DeletedAt != nil {
			continue
		}
		switch {
		case t.IsFloating():
			if t.Remaining() <= 0 {
				continue
			}
		case t.NextDueDate == "" || t.NextDueDate > weekEnd:
			continue
		}

		window := t.Window
		if window == "" {
			window = models.WindowAny
		}
		p := TaskPreview{
			ID:              t.ID,
			Title:           t.Title,
			Description:     t.Description,
			DurationMinutes: t.Duration,
			Priority:        t.Priority,
			Mode:            string(t.Mode()),
			Window:          window,
			NextDueDate:     t.NextDueDate,
			DeferUntil:      t.DeferUntil,
			ScheduledSlots:  t.ScheduledSlots,
			LastCompletedAt: t.LastCompletedAt,
		}
		if t.IsFloating() {
			remaining := t.Remaining()
			p.RemainingMinutes = &remaining
		}
		previews = append(previews, p)
	}
	return previews
}

// BuildPrompt appends the task preview as indented JSON to the stored prompt.
func BuildPrompt(prompt string, tasks []TaskPreview) (string, error) {
	if tasks == nil {
		tasks = []TaskPreview{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(prompt))
	b.WriteString("\n\nTasks JSON for upcoming week:\n")
	b.Write(data)
	return b.String(), nil
}
