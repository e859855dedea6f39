package scheduler

import (
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

const (
	labelScheduled = "Scheduled by AI"
	labelFloating  = "Auto scheduled"

	slotStampFormat = "20060102T150405"
)

// cardOptions overrides the defaults newOccurrence derives from the template.
type cardOptions struct {
	status   models.OccurrenceStatus
	duration int
	dueDate  string
	slot     *time.Time
	loc      *time.Location
	part     string
	key      string // id discriminator; defaults to "core"
	label    string
}

// newOccurrence builds the card shown for task on date. The id depends only on
// the task id, date and discriminator, so it is stable across recomputation.
func newOccurrence(task models.TaskTemplate, date string, opts cardOptions) models.Occurrence {
	key := opts.key
	if key == "" {
		key = constants.OccurrencePartCore
	}
	duration := opts.duration
	if duration == 0 {
		duration = task.Duration
	}
	dueDate := opts.dueDate
	if dueDate == "" {
		dueDate = date
	}
	label := opts.label
	if label == "" {
		label = task.Priority.Label()
	}
	window := task.Window
	if window == "" {
		window = models.WindowAny
	}

	occ := models.Occurrence{
		ID:            fmt.Sprintf("%s-%s-%s", task.ID, date, key),
		TaskID:        task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Duration:      duration,
		Priority:      task.Priority,
		PriorityLabel: label,
		Status:        opts.status,
		DueDate:       dueDate,
		Part:          opts.part,
		Window:        window,
	}
	if opts.slot != nil {
		slot := *opts.slot
		occ.ScheduledSlot = &slot
		occ.ScheduledTime = slot.In(opts.loc).Format(constants.TimeFormat)
	}
	return occ
}

func slotKey(slot time.Time) string {
	return "slot-" + slot.UTC().Format(slotStampFormat)
}

func partKey(n int) string {
	return fmt.Sprintf("part-%d", n)
}
