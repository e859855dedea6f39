package tasks

import (
	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/models"
)

type TaskAddCmd struct {
	Title       string `arg:"" help:"Task title."`
	Duration    int    `short:"d" help:"Duration in minutes." required:""`
	Mode        string `short:"r" help:"Recurrence mode (gap|weekly|single|floating)." enum:"gap,weekly,single,floating" default:"gap"`
	Gap         int    `short:"g" help:"Days between occurrences for gap recurrence." default:"1"`
	Weekdays    string `short:"w" help:"Comma-separated weekdays for weekly recurrence."`
	Date        string `help:"Date of a single task (YYYY-MM-DD)."`
	Due         string `help:"First due date (YYYY-MM-DD)."`
	Priority    string `short:"p" help:"Priority (high|medium|low)." enum:"high,medium,low" default:"medium"`
	Window      string `help:"Preferred time of day (morning|afternoon|evening|work|any)." enum:"morning,afternoon,evening,work,any" default:"any"`
	Description string `help:"Longer description."`
	AutoSplit   bool   `help:"Split floating work into chunks across days."`
	MaxChunk    int    `help:"Largest chunk in minutes when splitting."`
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	rec, err := buildRecurrence(models.RecurrenceMode(c.Mode), c.Gap, c.Weekdays, c.Date)
	if err != nil {
		return err
	}

	task, err := ctx.Actions.CreateTask(models.TaskTemplate{
		Title:           c.Title,
		Description:     c.Description,
		Duration:        c.Duration,
		Priority:        models.Priority(c.Priority),
		Window:          models.Window(c.Window),
		Recurrence:      rec,
		NextDueDate:     c.Due,
		AutoSplit:       c.AutoSplit,
		MaxChunkMinutes: c.MaxChunk,
	})
	if err != nil {
		return err
	}

	ctx.Printf("Added task: %s (ID: %s)\n", task.Title, task.ID)
	return nil
}
