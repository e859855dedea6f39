package tasks

import (
	"fmt"
	"slices"

	"github.com/julianstephens/cadence/internal/actions"
	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

var windows = []models.Window{
	models.WindowMorning,
	models.WindowAfternoon,
	models.WindowEvening,
	models.WindowWork,
	models.WindowAny,
}

type TaskEditCmd struct {
	ID          string  `arg:"" help:"Task ID (or a unique prefix)."`
	Title       *string `help:"New title."`
	Duration    *int    `short:"d" help:"New duration in minutes."`
	Gap         *int    `short:"g" help:"New gap in days (gap tasks)."`
	Weekdays    *string `short:"w" help:"New comma-separated weekdays (weekly tasks)."`
	Date        *string `help:"New date (single tasks)."`
	Due         *string `help:"New due date (YYYY-MM-DD, empty to clear)."`
	Defer       *string `help:"Hide floating work until this date (YYYY-MM-DD, empty to clear)."`
	Remaining   *int    `help:"Reset the remaining minutes of a floating task."`
	Priority    *string `short:"p" help:"New priority (high|medium|low)."`
	Window      *string `help:"New preferred time of day."`
	Description *string `help:"New description."`
	AutoSplit   *bool   `help:"Split floating work into chunks across days."`
	MaxChunk    *int    `help:"Largest chunk in minutes when splitting."`
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	id, err := ctx.ResolveTaskID(c.ID)
	if err != nil {
		return err
	}
	task, err := ctx.Store.GetTask(id)
	if err != nil {
		return fmt.Errorf("failed to find task: %w", err)
	}

	patch := actions.TaskPatch{
		Title:           c.Title,
		Description:     c.Description,
		Duration:        c.Duration,
		NextDueDate:     c.Due,
		DeferUntil:      c.Defer,
		AutoSplit:       c.AutoSplit,
		MaxChunkMinutes: c.MaxChunk,
		Remaining:       c.Remaining,
	}
	if c.Priority != nil {
		p := models.Priority(*c.Priority)
		if p.Rank() > models.PriorityLow.Rank() {
			return fmt.Errorf("invalid priority %q (want high, medium or low)", *c.Priority)
		}
		patch.Priority = &p
	}
	if c.Window != nil {
		w := models.Window(*c.Window)
		if !slices.Contains(windows, w) {
			return fmt.Errorf("invalid window %q", *c.Window)
		}
		patch.Window = &w
	}
	for _, d := range []*string{c.Due, c.Defer, c.Date} {
		if d != nil && *d != "" && !utils.ValidateDateFormat(*d) {
			return fmt.Errorf("invalid date %q, use YYYY-MM-DD", *d)
		}
	}

	// Recurrence settings only apply within the task's current mode
	switch rec := task.Recurrence.(type) {
	case models.GapRecurrence:
		if c.Gap != nil {
			patch.Recurrence, err = buildRecurrence(models.RecurrenceGap, *c.Gap, "", "")
		}
	case models.WeeklyRecurrence:
		if c.Weekdays != nil {
			patch.Recurrence, err = buildRecurrence(models.RecurrenceWeekly, 0, *c.Weekdays, "")
		}
	case models.SingleRecurrence:
		if c.Date != nil {
			patch.Recurrence = models.SingleRecurrence{Date: *c.Date}
			if c.Due == nil && rec.Date == task.NextDueDate {
				patch.NextDueDate = c.Date
			}
		}
	}
	if err != nil {
		return err
	}
	if patch.Recurrence == nil && (c.Gap != nil || c.Weekdays != nil || c.Date != nil) {
		return fmt.Errorf("%w: task is %s", actions.ErrModeChange, task.Mode())
	}

	updated, err := ctx.Actions.EditTask(id, patch)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	ctx.Printf("Task updated: %s\n", updated.Title)
	return nil
}
