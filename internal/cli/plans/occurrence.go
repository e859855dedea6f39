package plans

import (
	"errors"
	"time"

	"github.com/julianstephens/cadence/internal/actions"
	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/recurrence"
	"github.com/julianstephens/cadence/internal/utils"
)

// OccurrenceFlags identify the occurrence an action applies to.
type OccurrenceFlags struct {
	Date string `help:"Day the occurrence is shown on (YYYY-MM-DD). Defaults to today."`
	Slot string `help:"Scheduled slot the occurrence belongs to (HH:MM on --date, or RFC 3339). Needed only when a day has several slots."`
}

func (f OccurrenceFlags) ref(ctx *cli.Context) (recurrence.OccurrenceRef, string, error) {
	day, err := ctx.ParseDay(f.Date)
	if err != nil {
		return recurrence.OccurrenceRef{}, "", err
	}
	date := utils.FormatDate(day)
	slot, err := parseSlotOn(f.Slot, date, day.Location())
	if err != nil {
		return recurrence.OccurrenceRef{}, "", err
	}
	return recurrence.OccurrenceRef{DueDate: date, ScheduledSlot: slot}, date, nil
}

// parseSlotOn reads a clock time as a slot on date, or a full RFC 3339 slot.
func parseSlotOn(value, date string, loc *time.Location) (*time.Time, error) {
	if utils.ValidateTimeFormat(value) {
		slot, err := utils.CombineDateAndTime(date, value, loc)
		if err != nil {
			return nil, err
		}
		return &slot, nil
	}
	return cli.ParseSlot(value)
}

type CompleteCmd struct {
	TaskID  string `arg:"" help:"Task ID (or a unique prefix)."`
	Minutes int    `short:"m" help:"Minutes worked. Defaults to the task duration."`
	Note    string `help:"Note to keep with the task."`

	OccurrenceFlags `embed:""`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	id, err := ctx.ResolveTaskID(c.TaskID)
	if err != nil {
		return err
	}
	ref, date, err := c.ref(ctx)
	if err != nil {
		return err
	}

	task, err := ctx.Actions.Complete(actions.CompleteRequest{
		TaskID:  id,
		Ref:     ref,
		Date:    date,
		Minutes: c.Minutes,
		Note:    c.Note,
	})
	if err != nil && !errors.Is(err, actions.ErrHistoryNotRecorded) {
		return err
	}

	ctx.Printf("✓ Completed %s\n", task.Title)
	switch {
	case task.IsFloating():
		ctx.Printf("  %s remaining\n", cli.FormatMinutes(task.Remaining()))
	case task.NextDueDate != "":
		ctx.Printf("  Next due %s\n", task.NextDueDate)
	default:
		ctx.Println("  No further occurrences")
	}
	return err
}

type SkipCmd struct {
	TaskID string `arg:"" help:"Task ID (or a unique prefix)."`

	OccurrenceFlags `embed:""`
}

func (c *SkipCmd) Run(ctx *cli.Context) error {
	id, err := ctx.ResolveTaskID(c.TaskID)
	if err != nil {
		return err
	}
	ref, date, err := c.ref(ctx)
	if err != nil {
		return err
	}

	task, err := ctx.Actions.Skip(id, ref, date)
	if err != nil && !errors.Is(err, actions.ErrHistoryNotRecorded) {
		return err
	}

	ctx.Printf("Skipped %s\n", task.Title)
	if task.DeferUntil != "" && task.IsFloating() {
		ctx.Printf("  Deferred until %s\n", task.DeferUntil)
	} else if task.NextDueDate != "" {
		ctx.Printf("  Next due %s\n", task.NextDueDate)
	}
	return err
}

type RescheduleCmd struct {
	TaskID string `arg:"" help:"Task ID (or a unique prefix)."`
	To     string `arg:"" help:"New date (YYYY-MM-DD or 'tomorrow')."`
	From   string `help:"Due date of the occurrence being moved. Defaults to today."`
	Slot   string `help:"Scheduled slot being moved (HH:MM on --from, or RFC 3339)."`
}

func (c *RescheduleCmd) Run(ctx *cli.Context) error {
	id, err := ctx.ResolveTaskID(c.TaskID)
	if err != nil {
		return err
	}
	ref, _, err := OccurrenceFlags{Date: c.From, Slot: c.Slot}.ref(ctx)
	if err != nil {
		return err
	}
	to, err := ctx.ParseDay(c.To)
	if err != nil {
		return err
	}

	task, err := ctx.Actions.Reschedule(id, ref, utils.FormatDate(to))
	if err != nil {
		return err
	}

	ctx.Printf("Moved %s to %s\n", task.Title, task.NextDueDate)
	return nil
}
