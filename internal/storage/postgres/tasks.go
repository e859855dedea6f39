package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
)

const taskColumns = `id, title, description, duration_min, priority, recurrence_mode,
	recurrence_config, metadata, created_at, updated_at, deleted_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (models.TaskTemplate, error) {
	var rec storage.TaskRecord
	var deletedAt sql.NullTime

	err := row.Scan(
		&rec.ID, &rec.Title, &rec.Description, &rec.DurationMin, &rec.Priority, &rec.RecurrenceMode,
		&rec.RecurrenceConfig, &rec.Metadata, &rec.CreatedAt, &rec.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return models.TaskTemplate{}, err
	}

	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		rec.DeletedAt = &t
	}
	return rec.Decode()
}

func (s *Store) AddTask(task models.TaskTemplate) error {
	if err := s.ready(); err != nil {
		return err
	}

	rec, err := storage.EncodeTask(task)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
INSERT INTO tasks (`+taskColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9, $10, $11)`,
		rec.ID, rec.Title, rec.Description, rec.DurationMin, rec.Priority, rec.RecurrenceMode,
		rec.RecurrenceConfig, rec.Metadata, rec.CreatedAt, rec.UpdatedAt, rec.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add task %s: %w", task.ID, err)
	}
	return nil
}

func (s *Store) GetTask(id string) (models.TaskTemplate, error) {
	if err := s.ready(); err != nil {
		return models.TaskTemplate{}, err
	}

	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND deleted_at IS NULL`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TaskTemplate{}, fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.TaskTemplate{}, fmt.Errorf("failed to get task %s: %w", id, err)
	}
	return task, nil
}

func (s *Store) GetAllTasks() ([]models.TaskTemplate, error) {
	return s.queryTasks(`SELECT ` + taskColumns + ` FROM tasks WHERE deleted_at IS NULL ORDER BY title, id`)
}

func (s *Store) GetAllTasksIncludingDeleted() ([]models.TaskTemplate, error) {
	return s.queryTasks(`SELECT ` + taskColumns + ` FROM tasks ORDER BY title, id`)
}

func (s *Store) queryTasks(query string) ([]models.TaskTemplate, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.TaskTemplate{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTask(task models.TaskTemplate) error {
	return s.UpdateTasks([]models.TaskTemplate{task})
}

func (s *Store) UpdateTasks(tasks []models.TaskTemplate) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, task := range tasks {
		rec, err := storage.EncodeTask(task)
		if err != nil {
			return err
		}

		res, err := tx.Exec(`
UPDATE tasks SET title = $1, description = $2, duration_min = $3, priority = $4,
	recurrence_mode = $5, recurrence_config = $6::jsonb, metadata = $7::jsonb, created_at = $8, updated_at = $9
WHERE id = $10 AND deleted_at IS NULL`,
			rec.Title, rec.Description, rec.DurationMin, rec.Priority,
			rec.RecurrenceMode, rec.RecurrenceConfig, rec.Metadata, rec.CreatedAt, rec.UpdatedAt,
			rec.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update task %s: %w", task.ID, err)
		}
		if err := expectOne(res, task.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) DeleteTask(id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	res, err := s.db.Exec(`UPDATE tasks SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	return expectOne(res, id)
}

func (s *Store) RestoreTask(id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	var deletedAt sql.NullTime
	err := s.db.QueryRow(`SELECT deleted_at FROM tasks WHERE id = $1`, id).Scan(&deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to restore task %s: %w", id, err)
	}
	if !deletedAt.Valid {
		return fmt.Errorf("cannot restore a task that is not deleted: %s", id)
	}

	if _, err := s.db.Exec(`UPDATE tasks SET deleted_at = NULL WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to restore task %s: %w", id, err)
	}
	return nil
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
