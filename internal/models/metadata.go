package models

import "time"

// TaskMetadata is the free-form block that carries a template's planner
// state next to its core columns. The SQL stores keep it as a JSON column and
// the task service exchanges it as metadata_json.
type TaskMetadata struct {
	NextDueDate       string      `json:"nextDueDate,omitempty"`
	Window            Window      `json:"window,omitempty"`
	ScheduledSlots    []time.Time `json:"scheduledSlots,omitempty"`
	RemainingDuration *int        `json:"remainingDuration,omitempty"`
	DeferUntil        string      `json:"deferUntil,omitempty"`
	NotesLog          []NoteEntry `json:"notesLog,omitempty"`
	LastCompletedAt   *time.Time  `json:"lastCompletedAt,omitempty"`
	AutoSplit         bool        `json:"autoSplit"`
	MaxChunkMinutes   int         `json:"maxChunkMinutes,omitempty"`
}

// Metadata extracts the metadata block of t.
func (t TaskTemplate) Metadata() TaskMetadata {
	c := t.Clone()
	return TaskMetadata{
		NextDueDate:       c.NextDueDate,
		Window:            c.Window,
		ScheduledSlots:    c.ScheduledSlots,
		RemainingDuration: c.RemainingDuration,
		DeferUntil:        c.DeferUntil,
		NotesLog:          c.NotesLog,
		LastCompletedAt:   c.LastCompletedAt,
		AutoSplit:         c.AutoSplit,
		MaxChunkMinutes:   c.MaxChunkMinutes,
	}
}

// ApplyMetadata copies every metadata field onto t.
func (t *TaskTemplate) ApplyMetadata(m TaskMetadata) {
	t.NextDueDate = m.NextDueDate
	t.Window = m.Window
	t.ScheduledSlots = m.ScheduledSlots
	t.RemainingDuration = m.RemainingDuration
	t.DeferUntil = m.DeferUntil
	t.NotesLog = m.NotesLog
	t.LastCompletedAt = m.LastCompletedAt
	t.AutoSplit = m.AutoSplit
	t.MaxChunkMinutes = m.MaxChunkMinutes
}
