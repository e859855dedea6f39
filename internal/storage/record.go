package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/models"
)

// TaskRecord is the column layout of a template in the SQL stores. Core
// fields get their own columns; planner state travels in Metadata.
type TaskRecord struct {
	ID               string
	Title            string
	Description      string
	DurationMin      int
	Priority         string
	RecurrenceMode   string
	RecurrenceConfig string
	Metadata         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

// EncodeTask flattens a template into its column form.
func EncodeTask(task models.TaskTemplate) (TaskRecord, error) {
	env, err := models.EncodeRecurrence(task.Recurrence)
	if err != nil {
		return TaskRecord{}, fmt.Errorf("task %s: %w", task.ID, err)
	}
	meta, err := json.Marshal(task.Metadata())
	if err != nil {
		return TaskRecord{}, fmt.Errorf("task %s: failed to marshal metadata: %w", task.ID, err)
	}

	config := string(env.Config)
	if config == "" {
		config = "{}"
	}

	return TaskRecord{
		ID:               task.ID,
		Title:            task.Title,
		Description:      task.Description,
		DurationMin:      task.Duration,
		Priority:         string(task.Priority),
		RecurrenceMode:   string(env.Mode),
		RecurrenceConfig: config,
		Metadata:         string(meta),
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
		DeletedAt:        task.DeletedAt,
	}, nil
}

// Decode rebuilds the template a record was encoded from.
func (r TaskRecord) Decode() (models.TaskTemplate, error) {
	rec, err := models.DecodeRecurrence(models.RecurrenceEnvelope{
		Mode:   models.RecurrenceMode(r.RecurrenceMode),
		Config: json.RawMessage(r.RecurrenceConfig),
	})
	if err != nil {
		return models.TaskTemplate{}, fmt.Errorf("task %s: %w", r.ID, err)
	}

	var meta models.TaskMetadata
	if r.Metadata != "" {
		if err := json.Unmarshal([]byte(r.Metadata), &meta); err != nil {
			return models.TaskTemplate{}, fmt.Errorf("task %s: invalid metadata: %w", r.ID, err)
		}
	}

	task := models.TaskTemplate{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Duration:    r.DurationMin,
		Priority:    models.Priority(r.Priority),
		Recurrence:  rec,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		DeletedAt:   r.DeletedAt,
	}
	task.ApplyMetadata(meta)
	return task, nil
}
