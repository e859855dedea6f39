package remote

import (
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

// defaultDurationMin is assumed when the service returns a task without one.
const defaultDurationMin = 30

type taskPayload struct {
	ID              string                    `json:"id,omitempty"`
	Title           string                    `json:"title"`
	Description     string                    `json:"description"`
	DurationMinutes *int                      `json:"duration_minutes"`
	Priority        models.Priority           `json:"priority"`
	Recurrence      models.RecurrenceEnvelope `json:"recurrence"`
	Metadata        models.TaskMetadata       `json:"metadata_json"`
	CreatedAt       *time.Time                `json:"created_at,omitempty"`
	UpdatedAt       *time.Time                `json:"updated_at,omitempty"`
}

type historyPayload struct {
	ID              string    `json:"id,omitempty"`
	TaskID          string    `json:"task_id,omitempty"`
	TaskTitle       string    `json:"task_title,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	CompletedAt     time.Time `json:"completed_at"`
	Note            string    `json:"note"`
	Status          string    `json:"status"`
}

func toPayload(task models.TaskTemplate) (taskPayload, error) {
	env, err := models.EncodeRecurrence(task.Recurrence)
	if err != nil {
		return taskPayload{}, err
	}
	meta := task.Metadata()
	if meta.Window == "" {
		meta.Window = models.WindowAny
	}
	duration := task.Duration

	return taskPayload{
		ID:              task.ID,
		Title:           task.Title,
		Description:     task.Description,
		DurationMinutes: &duration,
		Priority:        task.Priority,
		Recurrence:      env,
		Metadata:        meta,
	}, nil
}

func fromPayload(p taskPayload) (models.TaskTemplate, error) {
	rec, err := models.DecodeRecurrence(p.Recurrence)
	if err != nil {
		return models.TaskTemplate{}, err
	}

	task := models.TaskTemplate{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Duration:    defaultDurationMin,
		Priority:    p.Priority,
		Recurrence:  rec,
	}
	if p.DurationMinutes != nil {
		task.Duration = *p.DurationMinutes
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if p.CreatedAt != nil {
		task.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		task.UpdatedAt = *p.UpdatedAt
	}
	task.ApplyMetadata(p.Metadata)
	if task.Window == "" {
		task.Window = models.WindowAny
	}
	return task, nil
}

func toHistoryPayload(r models.HistoryRecord) historyPayload {
	status := r.Status
	if status == "" {
		status = constants.HistoryStatusCompleted
	}
	return historyPayload{
		CompletedAt:     r.CompletedAt,
		DurationMinutes: r.DurationMinutes,
		Note:            r.Note,
		Status:          status,
	}
}

func fromHistoryPayload(p historyPayload, fallbackTitle string) models.HistoryRecord {
	title := p.TaskTitle
	if title == "" {
		title = fallbackTitle
	}
	status := p.Status
	if status == "" {
		status = constants.HistoryStatusCompleted
	}
	return models.HistoryRecord{
		ID:              p.ID,
		TaskID:          p.TaskID,
		Title:           title,
		DurationMinutes: p.DurationMinutes,
		CompletedAt:     p.CompletedAt,
		Note:            p.Note,
		Status:          status,
	}
}
