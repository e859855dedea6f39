package validation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateTaskName ConflictType = "duplicate_task_name"
	ConflictInvalidDateTime   ConflictType = "invalid_datetime"
	ConflictInvalidDuration   ConflictType = "invalid_duration"
	ConflictInvalidRecurrence ConflictType = "invalid_recurrence"
	ConflictInvalidRemaining  ConflictType = "invalid_remaining"
	ConflictUnsortedSlots     ConflictType = "unsorted_slots"
	ConflictOverlappingSlots  ConflictType = "overlapping_slots"
	ConflictOvercommitted     ConflictType = "overcommitted"
	ConflictMissingTaskID     ConflictType = "missing_task_id"
)

// Conflict represents a detected conflict in templates or plans
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Task titles involved
	TimeRange   string   // Human-readable time range (if applicable)
	TaskIDs     []string // IDs of tasks involved (for auto-fixing)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator validates task templates and window plans
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateTemplate reports every field-level problem with a single template.
// It is used when a template is created or edited.
func ValidateTemplate(task models.TaskTemplate) error {
	var errs []error
	for _, c := range templateConflicts(task) {
		errs = append(errs, errors.New(c.Description))
	}
	return errors.Join(errs...)
}

// ValidateTasks checks a template collection for conflicts
func (v *Validator) ValidateTasks(tasks []models.TaskTemplate) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	// Check for duplicate titles
	nameCount := make(map[string][]string)
	var names []string
	for _, task := range tasks {
		if task.Title == "" {
			continue
		}
		if _, seen := nameCount[task.Title]; !seen {
			names = append(names, task.Title)
		}
		nameCount[task.Title] = append(nameCount[task.Title], task.ID)
	}
	for _, name := range names {
		ids := nameCount[name]
		if len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateTaskName,
				Description: fmt.Sprintf("Duplicate task title: \"%s\" (IDs: %v)", name, ids),
				Items:       []string{name},
				TaskIDs:     ids,
			})
		}
	}

	for _, task := range tasks {
		result.Conflicts = append(result.Conflicts, templateConflicts(task)...)
	}

	return result
}

func templateConflicts(task models.TaskTemplate) []Conflict {
	var conflicts []Conflict
	add := func(kind ConflictType, format string, args ...any) {
		conflicts = append(conflicts, Conflict{
			Type:        kind,
			Description: fmt.Sprintf("Task \"%s\" "+format, append([]any{task.Title}, args...)...),
			Items:       []string{task.Title},
			TaskIDs:     []string{task.ID},
		})
	}

	if task.Duration <= 0 {
		add(ConflictInvalidDuration, "has non-positive duration: %d", task.Duration)
	}

	switch rec := task.Recurrence.(type) {
	case models.GapRecurrence:
		if rec.GapDays < 1 {
			add(ConflictInvalidRecurrence, "has gap of %d days (must be at least 1)", rec.GapDays)
		}
	case models.WeeklyRecurrence:
		if len(rec.Days) == 0 {
			add(ConflictInvalidRecurrence, "repeats weekly on no days")
		}
		for _, d := range rec.Days {
			if d < time.Sunday || d > time.Saturday {
				add(ConflictInvalidRecurrence, "has invalid weekday: %d", d)
			}
		}
	case models.SingleRecurrence:
		if rec.Date != "" && !utils.ValidateDateFormat(rec.Date) {
			add(ConflictInvalidDateTime, "has invalid single date: %s", rec.Date)
		}
	}

	if task.NextDueDate != "" && !utils.ValidateDateFormat(task.NextDueDate) {
		add(ConflictInvalidDateTime, "has invalid next due date: %s", task.NextDueDate)
	}
	if task.DeferUntil != "" && !utils.ValidateDateFormat(task.DeferUntil) {
		add(ConflictInvalidDateTime, "has invalid defer date: %s", task.DeferUntil)
	}

	if task.RemainingDuration != nil {
		if !task.IsFloating() {
			add(ConflictInvalidRemaining, "tracks remaining work but is not floating")
		} else if *task.RemainingDuration < 0 {
			add(ConflictInvalidRemaining, "has negative remaining duration: %d", *task.RemainingDuration)
		}
	}

	if !slices.IsSortedFunc(task.ScheduledSlots, func(a, b time.Time) int { return a.Compare(b) }) {
		add(ConflictUnsortedSlots, "has scheduled slots out of order")
	}

	return conflicts
}

// ValidatePlan checks a window plan against the templates it was built from.
// Days over dailyTarget minutes are reported as overcommitted.
func (v *Validator) ValidatePlan(plan models.WindowPlan, tasks []models.TaskTemplate, dailyTarget int) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	taskMap := make(map[string]models.TaskTemplate, len(tasks))
	for _, task := range tasks {
		taskMap[task.ID] = task
	}

	for _, day := range plan.Days {
		label := day.ShortLabel
		if label == "" {
			label = day.Date
		}

		for _, occ := range day.Occurrences {
			if _, ok := taskMap[occ.TaskID]; !ok {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictMissingTaskID,
					Description: fmt.Sprintf("%s: Occurrence references missing task ID: %s", label, occ.TaskID),
					Date:        day.Date,
				})
			}
		}

		// Only slot-bound occurrences carry a clock time
		var timed []models.Occurrence
		for _, occ := range day.Occurrences {
			if occ.ScheduledSlot != nil && occ.Status == models.StatusScheduled {
				timed = append(timed, occ)
			}
		}
		slices.SortFunc(timed, func(a, b models.Occurrence) int {
			return a.ScheduledSlot.Compare(*b.ScheduledSlot)
		})
		for i := 0; i < len(timed); i++ {
			for j := i + 1; j < len(timed); j++ {
				a, b := timed[i], timed[j]
				aEnd := a.ScheduledSlot.Add(time.Duration(a.Duration) * time.Minute)
				if !b.ScheduledSlot.Before(aEnd) {
					break
				}
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictOverlappingSlots,
					Description: fmt.Sprintf("%s: %s \"%s\" overlaps \"%s\"", label, a.ScheduledTime, a.Title, b.Title),
					Date:        day.Date,
					Items:       []string{a.Title, b.Title},
					TimeRange:   fmt.Sprintf("%s-%s", a.ScheduledTime, aEnd.In(a.ScheduledSlot.Location()).Format("15:04")),
					TaskIDs:     []string{a.TaskID, b.TaskID},
				})
			}
		}

		if dailyTarget > 0 && day.TotalMinutes > dailyTarget {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictOvercommitted,
				Description: fmt.Sprintf("%s: %.1fh planned exceeds the %.1fh daily target",
					label, float64(day.TotalMinutes)/60.0, float64(dailyTarget)/60.0),
				Date: day.Date,
			})
		}
	}

	return result
}

// AutoFixDuplicateTasks keeps one template per duplicated title and deletes
// the others through deleteFunc. The template with the lowest ID is kept.
func AutoFixDuplicateTasks(conflicts []Conflict, tasks []models.TaskTemplate, deleteFunc func(id string) error) []FixAction {
	actions := []FixAction{}

	taskMap := make(map[string]models.TaskTemplate)
	for _, task := range tasks {
		taskMap[task.ID] = task
	}

	for _, conflict := range conflicts {
		if conflict.Type != ConflictDuplicateTaskName || len(conflict.TaskIDs) <= 1 {
			continue
		}

		var candidates []models.TaskTemplate
		for _, id := range conflict.TaskIDs {
			if task, ok := taskMap[id]; ok {
				candidates = append(candidates, task)
			}
		}
		if len(candidates) <= 1 {
			continue
		}

		slices.SortFunc(candidates, func(a, b models.TaskTemplate) int {
			return strings.Compare(a.ID, b.ID)
		})

		keep := candidates[0]
		var deletedIDs, failedIDs []string
		for _, task := range candidates[1:] {
			if err := deleteFunc(task.ID); err == nil {
				deletedIDs = append(deletedIDs, task.ID)
			} else {
				failedIDs = append(failedIDs, task.ID)
			}
		}

		if len(deletedIDs) > 0 {
			msg := fmt.Sprintf("Removed %d duplicate task(s) titled \"%s\" (kept ID: %s, removed: %v)", len(deletedIDs), keep.Title, keep.ID, deletedIDs)
			if len(failedIDs) > 0 {
				msg += fmt.Sprintf(" (failed to remove: %v)", failedIDs)
			}
			actions = append(actions, FixAction{Action: msg, SourceConflict: conflict})
		} else if len(failedIDs) > 0 {
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Failed to remove duplicates for \"%s\": %v", keep.Title, failedIDs),
				SourceConflict: conflict,
			})
		}
	}

	return actions
}
