package plans

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/validation"
)

type PlanCmd struct {
	Start string `arg:"" optional:"" help:"First day of the window (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
	Days  int    `short:"n" help:"Number of days to plan. Defaults to the window_days setting."`
	Check bool   `help:"Report overlapping slots and overcommitted days."`
}

func (c *PlanCmd) Run(ctx *cli.Context) error {
	start, err := ctx.ParseDay(c.Start)
	if err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	days := c.Days
	if days <= 0 {
		days = settings.WindowDays
	}

	plan, err := ctx.Actions.Plan(start, days)
	if err != nil {
		return err
	}

	ctx.Printf("Plan for %s to %s:\n\n", plan.Start, plan.End)
	ctx.Println(cli.RenderPlan(plan))

	if c.Check {
		tasks, err := ctx.Store.GetAllTasks()
		if err != nil {
			return fmt.Errorf("failed to get tasks: %w", err)
		}
		result := validation.New().ValidatePlan(plan, tasks, settings.DailyTargetMin)
		ctx.Println(result.FormatReport())
	}
	return nil
}

type DayCmd struct {
	Date string `arg:"" optional:"" help:"Date to show (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
}

func (c *DayCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}

	plan, err := ctx.Actions.Plan(day, 1)
	if err != nil {
		return err
	}
	if len(plan.Days) == 0 {
		return fmt.Errorf("no plan for %s", plan.Start)
	}

	ctx.Print(cli.RenderDay(plan.Days[0]))
	return nil
}
