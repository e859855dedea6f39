package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities high=0, medium=1, low=2; anything else sorts last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Label is the human-readable priority used on plan cards.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High priority"
	case PriorityMedium:
		return "Medium priority"
	case PriorityLow:
		return "Low priority"
	default:
		return "Task"
	}
}

// Window is an advisory time-of-day preference. The planner does not enforce it.
type Window string

const (
	WindowMorning   Window = "morning"
	WindowAfternoon Window = "afternoon"
	WindowEvening   Window = "evening"
	WindowWork      Window = "work"
	WindowAny       Window = "any"
)

type NoteEntry struct {
	ID         string    `json:"id"`
	Body       string    `json:"body"`
	RecordedAt time.Time `json:"recordedAt"`
}

// TaskTemplate is the persistent definition of a recurring or one-off task.
// Dates are YYYY-MM-DD strings; an empty string means no date.
type TaskTemplate struct {
	ID                string
	Title             string
	Description       string
	Duration          int // minutes
	Priority          Priority
	Window            Window
	Recurrence        Recurrence
	NextDueDate       string
	ScheduledSlots    []time.Time // sorted ascending
	RemainingDuration *int        // floating only
	DeferUntil        string
	AutoSplit         bool
	MaxChunkMinutes   int
	NotesLog          []NoteEntry // newest first
	LastCompletedAt   *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time // soft delete marker
}

// Mode returns the recurrence mode, treating a missing recurrence as gap.
func (t TaskTemplate) Mode() RecurrenceMode {
	if t.Recurrence == nil {
		return RecurrenceGap
	}
	return t.Recurrence.Mode()
}

// IsFloating reports whether the template is allocated by the floating allocator.
func (t TaskTemplate) IsFloating() bool {
	return t.Mode() == RecurrenceFloating
}

// Remaining returns the outstanding floating work, falling back to Duration.
func (t TaskTemplate) Remaining() int {
	if t.RemainingDuration != nil {
		return *t.RemainingDuration
	}
	return t.Duration
}

// Clone returns a deep copy so policy functions never alias their input.
func (t TaskTemplate) Clone() TaskTemplate {
	c := t
	c.Recurrence = cloneRecurrence(t.Recurrence)
	c.ScheduledSlots = slices.Clone(t.ScheduledSlots)
	c.NotesLog = slices.Clone(t.NotesLog)
	if t.RemainingDuration != nil {
		v := *t.RemainingDuration
		c.RemainingDuration = &v
	}
	if t.LastCompletedAt != nil {
		v := *t.LastCompletedAt
		c.LastCompletedAt = &v
	}
	if t.DeletedAt != nil {
		v := *t.DeletedAt
		c.DeletedAt = &v
	}
	return c
}

// taskJSON is the flat JSON form used by the file store and the task service.
type taskJSON struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description,omitempty"`
	Duration          int                `json:"duration"`
	Priority          Priority           `json:"priority"`
	Window            Window             `json:"window,omitempty"`
	Recurrence        RecurrenceEnvelope `json:"recurrence"`
	NextDueDate       string             `json:"nextDueDate,omitempty"`
	ScheduledSlots    []time.Time        `json:"scheduledSlots,omitempty"`
	RemainingDuration *int               `json:"remainingDuration,omitempty"`
	DeferUntil        string             `json:"deferUntil,omitempty"`
	AutoSplit         bool               `json:"autoSplit"`
	MaxChunkMinutes   int                `json:"maxChunkMinutes,omitempty"`
	NotesLog          []NoteEntry        `json:"notesLog,omitempty"`
	LastCompletedAt   *time.Time         `json:"lastCompletedAt,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
	DeletedAt         *time.Time         `json:"deletedAt,omitempty"`
}

func (t TaskTemplate) MarshalJSON() ([]byte, error) {
	env, err := EncodeRecurrence(t.Recurrence)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taskJSON{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Duration:          t.Duration,
		Priority:          t.Priority,
		Window:            t.Window,
		Recurrence:        env,
		NextDueDate:       t.NextDueDate,
		ScheduledSlots:    t.ScheduledSlots,
		RemainingDuration: t.RemainingDuration,
		DeferUntil:        t.DeferUntil,
		AutoSplit:         t.AutoSplit,
		MaxChunkMinutes:   t.MaxChunkMinutes,
		NotesLog:          t.NotesLog,
		LastCompletedAt:   t.LastCompletedAt,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		DeletedAt:         t.DeletedAt,
	})
}

func (t *TaskTemplate) UnmarshalJSON(data []byte) error {
	var raw taskJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rec, err := DecodeRecurrence(raw.Recurrence)
	if err != nil {
		return fmt.Errorf("task %s: %w", raw.ID, err)
	}
	*t = TaskTemplate{
		ID:                raw.ID,
		Title:             raw.Title,
		Description:       raw.Description,
		Duration:          raw.Duration,
		Priority:          raw.Priority,
		Window:            raw.Window,
		Recurrence:        rec,
		NextDueDate:       raw.NextDueDate,
		ScheduledSlots:    raw.ScheduledSlots,
		RemainingDuration: raw.RemainingDuration,
		DeferUntil:        raw.DeferUntil,
		AutoSplit:         raw.AutoSplit,
		MaxChunkMinutes:   raw.MaxChunkMinutes,
		NotesLog:          raw.NotesLog,
		LastCompletedAt:   raw.LastCompletedAt,
		CreatedAt:         raw.CreatedAt,
		UpdatedAt:         raw.UpdatedAt,
		DeletedAt:         raw.DeletedAt,
	}
	return nil
}
