package actions

import (
	"errors"
	"fmt"

	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
	"github.com/julianstephens/cadence/internal/utils"
	"github.com/julianstephens/cadence/internal/validation"
)

// ErrModeChange is returned when an edit tries to switch recurrence mode.
var ErrModeChange = errors.New("recurrence mode cannot be changed")

// TaskPatch lists the fields an edit changes. Nil fields are left alone.
type TaskPatch struct {
	Title           *string
	Description     *string
	Duration        *int
	Priority        *models.Priority
	Window          *models.Window
	Recurrence      models.Recurrence
	NextDueDate     *string
	DeferUntil      *string
	AutoSplit       *bool
	MaxChunkMinutes *int
	// Remaining resets the outstanding work of a floating template.
	Remaining *int
}

// CreateTask validates task, assigns it an id and stores it.
func (s *Service) CreateTask(task models.TaskTemplate) (models.TaskTemplate, error) {
	task.ID = s.newID()
	if task.Recurrence == nil {
		task.Recurrence = models.GapRecurrence{GapDays: 1}
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Window == "" {
		task.Window = models.WindowAny
	}
	if task.IsFloating() && task.RemainingDuration == nil {
		remaining := task.Duration
		task.RemainingDuration = &remaining
	}
	if task.NextDueDate == "" {
		due, err := s.firstDue(task.Recurrence)
		if err != nil {
			return models.TaskTemplate{}, err
		}
		task.NextDueDate = due
	}

	if err := validation.ValidateTemplate(task); err != nil {
		return models.TaskTemplate{}, err
	}

	now := s.now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if err := s.Store.AddTask(task); err != nil {
		return models.TaskTemplate{}, fmt.Errorf("failed to add task: %w", err)
	}

	logger.Info("task created", "task", task.ID, "title", task.Title, "mode", task.Mode())
	return task, nil
}

// firstDue is the initial due date of a new template: today for gap, the
// first matching weekday from today for weekly and the date of a single task.
func (s *Service) firstDue(rec models.Recurrence) (string, error) {
	switch r := rec.(type) {
	case models.SingleRecurrence:
		return r.Date, nil
	case models.GapRecurrence, models.WeeklyRecurrence:
		today, err := s.Today()
		if err != nil {
			return "", err
		}
		if weekly, ok := r.(models.WeeklyRecurrence); ok {
			return recurrence.NextWeekly(weekly.Days, today.AddDate(0, 0, -1)), nil
		}
		return utils.FormatDate(today), nil
	}
	return "", nil
}

// EditTask applies patch to the stored template with the given id.
func (s *Service) EditTask(id string, patch TaskPatch) (models.TaskTemplate, error) {
	task, err := s.Store.GetTask(id)
	if err != nil {
		return models.TaskTemplate{}, err
	}

	next := task.Clone()
	if patch.Recurrence != nil {
		if patch.Recurrence.Mode() != task.Mode() {
			return models.TaskTemplate{}, fmt.Errorf("%w: %s to %s", ErrModeChange, task.Mode(), patch.Recurrence.Mode())
		}
		next.Recurrence = patch.Recurrence
	}
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Duration != nil {
		next.Duration = *patch.Duration
	}
	if patch.Priority != nil {
		next.Priority = *patch.Priority
	}
	if patch.Window != nil {
		next.Window = *patch.Window
	}
	if patch.NextDueDate != nil {
		next.NextDueDate = *patch.NextDueDate
	}
	if patch.DeferUntil != nil {
		next.DeferUntil = *patch.DeferUntil
	}
	if patch.AutoSplit != nil {
		next.AutoSplit = *patch.AutoSplit
	}
	if patch.MaxChunkMinutes != nil {
		next.MaxChunkMinutes = *patch.MaxChunkMinutes
	}
	if patch.Remaining != nil {
		remaining := *patch.Remaining
		next.RemainingDuration = &remaining
	}

	if err := validation.ValidateTemplate(next); err != nil {
		return models.TaskTemplate{}, err
	}
	if err := s.save(next); err != nil {
		return models.TaskTemplate{}, err
	}

	logger.Info("task edited", "task", id)
	return next, nil
}

func (s *Service) DeleteTask(id string) error {
	if err := s.Store.DeleteTask(id); err != nil {
		return err
	}
	logger.Info("task deleted", "task", id)
	return nil
}

func (s *Service) RestoreTask(id string) error {
	if err := s.Store.RestoreTask(id); err != nil {
		return err
	}
	logger.Info("task restored", "task", id)
	return nil
}

// ListTasks returns the stored templates, optionally with deleted ones.
func (s *Service) ListTasks(includeDeleted bool) ([]models.TaskTemplate, error) {
	if includeDeleted {
		return s.Store.GetAllTasksIncludingDeleted()
	}
	return s.Store.GetAllTasks()
}

// History returns up to limit history records, newest first.
func (s *Service) History(limit int) ([]models.HistoryRecord, error) {
	return s.Store.GetHistory(limit)
}
