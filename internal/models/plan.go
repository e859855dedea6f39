package models

import "time"

type OccurrenceStatus string

const (
	StatusOverdue   OccurrenceStatus = "overdue"
	StatusScheduled OccurrenceStatus = "scheduled"
	StatusFloating  OccurrenceStatus = "floating"
	StatusDue       OccurrenceStatus = "due"
)

// Rank orders statuses overdue=1, scheduled=2, floating=3, due=4.
func (s OccurrenceStatus) Rank() int {
	switch s {
	case StatusOverdue:
		return 1
	case StatusScheduled:
		return 2
	case StatusFloating:
		return 3
	default:
		return 4
	}
}

// Occurrence is one appearance of a template on a specific day. It is
// derived on every planning call and never persisted.
type Occurrence struct {
	ID            string           `json:"id"`
	TaskID        string           `json:"task_id"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	Duration      int              `json:"duration"`
	Priority      Priority         `json:"priority"`
	PriorityLabel string           `json:"priority_label"`
	Status        OccurrenceStatus `json:"status"`
	DueDate       string           `json:"due_date"` // YYYY-MM-DD
	ScheduledSlot *time.Time       `json:"scheduled_slot,omitempty"`
	ScheduledTime string           `json:"scheduled_time,omitempty"` // HH:MM
	Part          string           `json:"part,omitempty"`
	Window        Window           `json:"window"`
}

type DayPlan struct {
	Date         string       `json:"date"` // YYYY-MM-DD
	Label        string       `json:"label"`
	ShortLabel   string       `json:"short_label"`
	Occurrences  []Occurrence `json:"occurrences"`
	TotalMinutes int          `json:"total_minutes"`
}

type WindowPlan struct {
	Start string    `json:"start"`
	End   string    `json:"end"`
	Days  []DayPlan `json:"days"`
}

// Day returns the plan for date, if it falls inside the window.
func (w WindowPlan) Day(date string) (DayPlan, bool) {
	for _, d := range w.Days {
		if d.Date == date {
			return d, true
		}
	}
	return DayPlan{}, false
}
