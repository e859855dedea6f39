package recurrence

import (
	"fmt"
	"slices"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

// OccurrenceRef identifies the occurrence a mutation applies to.
type OccurrenceRef struct {
	DueDate       string     // YYYY-MM-DD
	ScheduledSlot *time.Time // nil when the occurrence was not slot-bound
}

// RefFor builds the reference for a planned occurrence.
func RefFor(o models.Occurrence) OccurrenceRef {
	return OccurrenceRef{DueDate: o.DueDate, ScheduledSlot: o.ScheduledSlot}
}

// RescheduleOccurrence moves an occurrence to newDate. The occurrence's slot
// (or every slot on its due date when it had none) is replaced by a single
// slot on newDate at the old clock time, or at 09:00 for unslotted
// occurrences. Dates and clock times are read in loc.
func RescheduleOccurrence(task models.TaskTemplate, ref OccurrenceRef, newDate string, loc *time.Location) (models.TaskTemplate, error) {
	if loc == nil {
		loc = time.Local
	}

	var target time.Time
	var err error
	if ref.ScheduledSlot != nil {
		src := ref.ScheduledSlot.In(loc)
		target, err = utils.ParseDateInLocation(newDate, loc)
		if err == nil {
			target = time.Date(target.Year(), target.Month(), target.Day(), src.Hour(), src.Minute(), src.Second(), 0, loc)
		}
	} else {
		target, err = utils.ParseDateInLocation(newDate, loc)
		target = target.Add(constants.DefaultSlotHour * time.Hour)
	}
	if err != nil {
		return models.TaskTemplate{}, fmt.Errorf("invalid reschedule date %q: %w", newDate, err)
	}

	next := task.Clone()
	next.ScheduledSlots = slices.DeleteFunc(next.ScheduledSlots, func(s time.Time) bool {
		if ref.ScheduledSlot != nil {
			return s.Equal(*ref.ScheduledSlot)
		}
		return utils.DateIn(s, loc) == ref.DueDate
	})
	next.ScheduledSlots = sortSlots(append(next.ScheduledSlots, target))
	next.NextDueDate = utils.FormatDate(target)

	return next, nil
}

// ApplySlots replaces the template's slots wholesale, keeping them sorted and
// unique, and re-derives the due date from the earliest one as seen in loc.
func ApplySlots(task models.TaskTemplate, slots []time.Time, loc *time.Location) models.TaskTemplate {
	next := task.Clone()
	next.ScheduledSlots = sortSlots(slices.Clone(slots))
	next.NextDueDate = NextDueFromSlots(next.ScheduledSlots, loc)
	return next
}

func sortSlots(slots []time.Time) []time.Time {
	slices.SortStableFunc(slots, func(a, b time.Time) int {
		return a.Compare(b)
	})
	return slices.CompactFunc(slots, func(a, b time.Time) bool {
		return a.Equal(b)
	})
}
