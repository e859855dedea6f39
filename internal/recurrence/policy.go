// Package recurrence derives template updates after an occurrence is
// completed, skipped or moved. Every function is pure: it returns a new
// template and never mutates its argument or reads the wall clock.
package recurrence

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

// CompleteOptions carries the optional inputs of CompleteTask.
type CompleteOptions struct {
	// Note is prepended to the notes log when non-empty.
	Note string
	// ConsumedSlot is the explicit slot the completion fulfilled, if any.
	ConsumedSlot *time.Time
	// ChunkMinutes is the work done on a floating task. Zero means the full duration.
	ChunkMinutes int
	// NewID generates note ids. Defaults to uuid.NewString.
	NewID func() string
}

// CompleteTask returns the template as it should look after an occurrence
// completed at completedAt. Slot dates are read in completedAt's location.
func CompleteTask(task models.TaskTemplate, completedAt time.Time, opts CompleteOptions) models.TaskTemplate {
	next := task.Clone()

	if opts.ConsumedSlot != nil {
		consumeSlot(&next, *opts.ConsumedSlot, completedAt.Location())
	} else {
		switch rec := normalize(next.Recurrence).(type) {
		case models.GapRecurrence:
			next.NextDueDate = utils.AddDays(completedAt, rec.GapDays)
		case models.WeeklyRecurrence:
			next.NextDueDate = NextWeekly(rec.Days, completedAt)
		case models.SingleRecurrence:
			next.NextDueDate = ""
		case models.FloatingRecurrence:
			chunk := opts.ChunkMinutes
			if chunk <= 0 {
				chunk = next.Duration
			}
			remaining := max(next.Remaining()-chunk, 0)
			next.RemainingDuration = &remaining
		}
	}

	stamp := completedAt
	next.LastCompletedAt = &stamp

	if note := strings.TrimSpace(opts.Note); note != "" {
		newID := opts.NewID
		if newID == nil {
			newID = uuid.NewString
		}
		entry := models.NoteEntry{ID: newID(), Body: note, RecordedAt: completedAt}
		next.NotesLog = append([]models.NoteEntry{entry}, next.NotesLog...)
	}

	return next
}

// SkipTaskOccurrence returns the template after the occurrence due around
// referenceDate was skipped. Notes and completion time are left untouched.
// Slot dates are read in referenceDate's location.
func SkipTaskOccurrence(task models.TaskTemplate, referenceDate time.Time, consumedSlot *time.Time) models.TaskTemplate {
	next := task.Clone()

	if consumedSlot != nil {
		consumeSlot(&next, *consumedSlot, referenceDate.Location())
		return next
	}

	switch rec := normalize(next.Recurrence).(type) {
	case models.GapRecurrence, models.SingleRecurrence:
		next.NextDueDate = utils.AddDays(referenceDate, 1)
	case models.WeeklyRecurrence:
		next.NextDueDate = NextWeekly(rec.Days, referenceDate)
	case models.FloatingRecurrence:
		next.DeferUntil = utils.AddDays(referenceDate, 1)
	}

	return next
}

// NextWeekly returns the nearest date strictly after from whose weekday is in
// days. The search is bounded; an empty set falls back to one week later.
func NextWeekly(days []time.Weekday, from time.Time) string {
	day := utils.StartOfDay(from)
	if len(days) > 0 {
		for offset := 1; offset <= constants.WeeklySearchDays; offset++ {
			candidate := day.AddDate(0, 0, offset)
			if slices.Contains(days, candidate.Weekday()) {
				return utils.FormatDate(candidate)
			}
		}
	}
	return utils.AddDays(day, constants.WeeklyFallbackDays)
}

// NextDueFromSlots returns the date of the earliest slot as observed in loc,
// or "" when there are none.
func NextDueFromSlots(slots []time.Time, loc *time.Location) string {
	if len(slots) == 0 {
		return ""
	}
	earliest := slots[0]
	for _, s := range slots[1:] {
		if s.Before(earliest) {
			earliest = s
		}
	}
	return utils.DateIn(earliest, loc)
}

// consumeSlot removes slot from the template and re-derives the due date.
func consumeSlot(task *models.TaskTemplate, slot time.Time, loc *time.Location) {
	task.ScheduledSlots = slices.DeleteFunc(task.ScheduledSlots, func(s time.Time) bool {
		return s.Equal(slot)
	})
	task.NextDueDate = NextDueFromSlots(task.ScheduledSlots, loc)
}

func normalize(r models.Recurrence) models.Recurrence {
	if r == nil {
		return models.GapRecurrence{GapDays: 1}
	}
	if gap, ok := r.(models.GapRecurrence); ok && gap.GapDays < 1 {
		return models.GapRecurrence{GapDays: 1}
	}
	return r
}
