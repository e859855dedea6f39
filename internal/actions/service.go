// Package actions applies user actions to stored templates: it loads the
// template, derives the new version with the recurrence policy, persists it
// and records history. Nothing is written unless the derivation succeeds.
package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/aiplan"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
	"github.com/julianstephens/cadence/internal/scheduler"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/utils"
)

// Generator produces a model answer for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	Store storage.Provider
	Now   func() time.Time
	NewID func() string
	// Location overrides the timezone from the stored settings.
	Location *time.Location
	// Scheduler overrides the one derived from the stored settings.
	Scheduler *scheduler.Scheduler
}

func New(store storage.Provider) *Service {
	return &Service{
		Store: store,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}

// location returns the planning timezone.
func (s *Service) location() (*time.Location, error) {
	if s.Location != nil {
		return s.Location, nil
	}
	settings, err := s.Store.GetSettings()
	if err != nil {
		return nil, err
	}
	return utils.LoadLocation(settings.Timezone)
}

// Today returns the current date in the planning timezone.
func (s *Service) Today() (time.Time, error) {
	loc, err := s.location()
	if err != nil {
		return time.Time{}, err
	}
	return utils.StartOfDay(s.now().In(loc)), nil
}

// Plan builds the window plan for days days starting at start.
func (s *Service) Plan(start time.Time, days int) (models.WindowPlan, error) {
	tasks, err := s.Store.GetAllTasks()
	if err != nil {
		return models.WindowPlan{}, fmt.Errorf("failed to load tasks: %w", err)
	}

	sched := s.Scheduler
	if sched == nil {
		settings, err := s.Store.GetSettings()
		if err != nil {
			return models.WindowPlan{}, fmt.Errorf("failed to load settings: %w", err)
		}
		sched = scheduler.NewWithConfig(scheduler.ConfigFromSettings(settings))
	}

	return sched.BuildPlanner(tasks, start, days), nil
}

// CompleteRequest identifies the occurrence being completed.
type CompleteRequest struct {
	TaskID string
	Ref    recurrence.OccurrenceRef
	// Date is the day the work was done (YYYY-MM-DD); empty means today.
	Date string
	// Minutes is the length of the completed occurrence; zero means the template duration.
	Minutes int
	Note    string
}

// Complete marks an occurrence done and logs it to history.
func (s *Service) Complete(req CompleteRequest) (models.TaskTemplate, error) {
	task, err := s.Store.GetTask(req.TaskID)
	if err != nil {
		return models.TaskTemplate{}, err
	}

	completedAt, err := s.at(req.Date)
	if err != nil {
		return models.TaskTemplate{}, err
	}

	slot, err := s.resolveSlot(task, req.Ref)
	if err != nil {
		return models.TaskTemplate{}, err
	}

	minutes := req.Minutes
	if minutes <= 0 {
		minutes = task.Duration
	}

	next := recurrence.CompleteTask(task, completedAt, recurrence.CompleteOptions{
		Note:         req.Note,
		ConsumedSlot: slot,
		ChunkMinutes: minutes,
		NewID:        s.newID,
	})
	if err := s.save(next); err != nil {
		return models.TaskTemplate{}, err
	}

	logger.Info("task completed", "task", task.ID, "minutes", minutes, "next_due", next.NextDueDate)
	return next, s.record(task, minutes, completedAt, req.Note, constants.HistoryStatusCompleted)
}

// Skip passes over an occurrence without doing it. date is the day the
// occurrence was shown on; empty means today.
func (s *Service) Skip(taskID string, ref recurrence.OccurrenceRef, date string) (models.TaskTemplate, error) {
	task, err := s.Store.GetTask(taskID)
	if err != nil {
		return models.TaskTemplate{}, err
	}

	reference, err := s.at(date)
	if err != nil {
		return models.TaskTemplate{}, err
	}

	slot, err := s.resolveSlot(task, ref)
	if err != nil {
		return models.TaskTemplate{}, err
	}

	next := recurrence.SkipTaskOccurrence(task, reference, slot)
	if err := s.save(next); err != nil {
		return models.TaskTemplate{}, err
	}

	logger.Info("task skipped", "task", task.ID, "next_due", next.NextDueDate, "defer_until", next.DeferUntil)
	return next, s.record(task, 0, s.now(), "", constants.HistoryStatusSkipped)
}

// Reschedule moves an occurrence to newDate.
func (s *Service) Reschedule(taskID string, ref recurrence.OccurrenceRef, newDate string) (models.TaskTemplate, error) {
	task, err := s.Store.GetTask(taskID)
	if err != nil {
		return models.TaskTemplate{}, err
	}

	loc, err := s.location()
	if err != nil {
		return models.TaskTemplate{}, err
	}

	next, err := recurrence.RescheduleOccurrence(task, ref, newDate, loc)
	if err != nil {
		return models.TaskTemplate{}, err
	}
	if err := s.save(next); err != nil {
		return models.TaskTemplate{}, err
	}

	logger.Info("task rescheduled", "task", task.ID, "date", newDate)
	return next, nil
}

// AIPlanResult describes a committed (or previewed) AI week plan.
type AIPlanResult struct {
	Prompt   string
	Response string
	Updated  []models.TaskTemplate
	Rejected []aiplan.Rejection
	// Unknown lists task ids in the answer that match no template.
	Unknown []string
}

// PlanWeek asks gen for a plan of the week starting at start and commits it
// unless dryRun is set.
func (s *Service) PlanWeek(ctx context.Context, gen Generator, prompt string, start time.Time, dryRun bool) (AIPlanResult, error) {
	tasks, err := s.Store.GetAllTasks()
	if err != nil {
		return AIPlanResult{}, fmt.Errorf("failed to load tasks: %w", err)
	}

	weekEnd := utils.AddDays(start, 6)
	full, err := aiplan.BuildPrompt(prompt, aiplan.PreviewTasks(tasks, weekEnd))
	if err != nil {
		return AIPlanResult{}, err
	}

	logger.Debug("AI plan prompt", "prompt", full)
	response, err := gen.Generate(ctx, full)
	if err != nil {
		return AIPlanResult{Prompt: full}, err
	}
	logger.Debug("AI plan response", "response", response)

	entries, err := aiplan.ParseResponse(response)
	if err != nil {
		return AIPlanResult{Prompt: full, Response: response}, err
	}

	result, err := s.commitEntries(entries, dryRun)
	result.Prompt = full
	result.Response = response
	return result, err
}

// CommitAIPlan applies normalized entries: every affected template has its
// slots replaced, and all of them are written in one UpdateTasks call.
func (s *Service) CommitAIPlan(entries []aiplan.Entry) (AIPlanResult, error) {
	return s.commitEntries(entries, false)
}

func (s *Service) commitEntries(entries []aiplan.Entry, dryRun bool) (AIPlanResult, error) {
	if len(entries) == 0 {
		return AIPlanResult{}, aiplan.ErrEmptyPlan
	}

	loc, err := s.location()
	if err != nil {
		return AIPlanResult{}, err
	}

	tasks, err := s.Store.GetAllTasks()
	if err != nil {
		return AIPlanResult{}, fmt.Errorf("failed to load tasks: %w", err)
	}
	byID := make(map[string]models.TaskTemplate, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	assignments, rejected := aiplan.GroupSlots(entries, loc)
	result := AIPlanResult{Rejected: rejected}

	now := s.now()
	for _, a := range assignments {
		task, ok := byID[a.TaskID]
		if !ok {
			result.Unknown = append(result.Unknown, a.TaskID)
			continue
		}
		next := recurrence.ApplySlots(task, a.Slots, loc)
		if a.LastCompletedAt != nil {
			next.LastCompletedAt = a.LastCompletedAt
		}
		next.UpdatedAt = now
		result.Updated = append(result.Updated, next)
	}

	if len(result.Updated) == 0 {
		return result, aiplan.ErrEmptyPlan
	}
	if dryRun {
		return result, nil
	}

	if err := s.Store.UpdateTasks(result.Updated); err != nil {
		return AIPlanResult{}, fmt.Errorf("failed to commit AI plan: %w", err)
	}
	logger.Info("AI plan committed", "tasks", len(result.Updated), "rejected", len(rejected), "unknown", len(result.Unknown))
	return result, nil
}

// resolveSlot finds the slot of an occurrence that was named only by its
// date. A slotted template is planned through its slots alone, so the slot
// on that date is used, or failing that an overdue one carried forward.
func (s *Service) resolveSlot(task models.TaskTemplate, ref recurrence.OccurrenceRef) (*time.Time, error) {
	if ref.ScheduledSlot != nil || len(task.ScheduledSlots) == 0 || ref.DueDate == "" {
		return ref.ScheduledSlot, nil
	}

	loc, err := s.location()
	if err != nil {
		return nil, err
	}

	var onDate, earlier []time.Time
	for _, slot := range task.ScheduledSlots {
		switch date := utils.DateIn(slot, loc); {
		case date == ref.DueDate:
			onDate = append(onDate, slot)
		case utils.DateBefore(date, ref.DueDate):
			earlier = append(earlier, slot)
		}
	}

	matches := onDate
	if len(matches) == 0 {
		matches = earlier
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s has no slot on %s", ErrSlotNotFound, task.Title, ref.DueDate)
	case 1:
		slot := matches[0]
		return &slot, nil
	default:
		return nil, fmt.Errorf("%w: %s has %d candidate slots for %s", ErrAmbiguousSlot, task.Title, len(matches), ref.DueDate)
	}
}

// at resolves date (or today) to a timestamp carrying the current clock time.
func (s *Service) at(date string) (time.Time, error) {
	loc, err := s.location()
	if err != nil {
		return time.Time{}, err
	}
	now := s.now().In(loc)
	if date == "" {
		return now, nil
	}

	day, err := utils.ParseDateInLocation(date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), now.Hour(), now.Minute(), now.Second(), 0, loc), nil
}

func (s *Service) save(task models.TaskTemplate) error {
	task.UpdatedAt = s.now()
	if err := s.Store.UpdateTask(task); err != nil {
		return fmt.Errorf("failed to save task %s: %w", task.ID, err)
	}
	return nil
}

// record appends a history entry. The template is already saved, so a
// failure here is reported but does not undo it.
func (s *Service) record(task models.TaskTemplate, minutes int, at time.Time, note, status string) error {
	err := s.Store.AddHistory(models.HistoryRecord{
		ID:              s.newID(),
		TaskID:          task.ID,
		Title:           task.Title,
		DurationMinutes: minutes,
		CompletedAt:     at,
		Note:            note,
		Status:          status,
	})
	if err != nil {
		logger.Warn("failed to record history", "task", task.ID, "status", status, "error", err)
		return fmt.Errorf("%w: %v", ErrHistoryNotRecorded, err)
	}
	return nil
}

// ErrHistoryNotRecorded is returned when the template was saved but its
// history entry could not be written.
var ErrHistoryNotRecorded = errors.New("task saved but history not recorded")

var (
	// ErrAmbiguousSlot is returned when an occurrence given only by date
	// could be any of several scheduled slots.
	ErrAmbiguousSlot = errors.New("occurrence matches several scheduled slots")
	// ErrSlotNotFound is returned when a slotted template has no slot for
	// the given date.
	ErrSlotNotFound = errors.New("no scheduled slot for occurrence")
)
