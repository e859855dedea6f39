package models

import "time"

// HistoryRecord is an append-only log entry for a completed or skipped occurrence.
type HistoryRecord struct {
	ID              string    `json:"id"`
	TaskID          string    `json:"task_id"`
	Title           string    `json:"title"`
	DurationMinutes int       `json:"duration_minutes"`
	CompletedAt     time.Time `json:"completed_at"`
	Note            string    `json:"note,omitempty"`
	Status          string    `json:"status"`
}
