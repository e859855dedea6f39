package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/cadence/internal/cli"
)

type DebugCmd struct {
	DBPath   DebugDBPathCmd   `cmd:"" name:"db-path" help:"Show the storage location."`
	DumpPlan DebugDumpPlanCmd `cmd:"" help:"Dump a day plan as JSON."`
	DumpTask DebugDumpTaskCmd `cmd:"" help:"Dump a task template as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpPlanCmd struct {
	Date string `arg:"" optional:"" help:"Date of the plan to dump (YYYY-MM-DD or 'today')." default:"today"`
	Days int    `short:"n" help:"Number of days to include." default:"1"`
}

func (cmd *DebugDumpPlanCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ParseDay(cmd.Date)
	if err != nil {
		return err
	}
	plan, err := ctx.Actions.Plan(day, cmd.Days)
	if err != nil {
		return fmt.Errorf("failed to build plan: %w", err)
	}
	return printJSON(ctx, plan)
}

type DebugDumpTaskCmd struct {
	ID string `arg:"" help:"ID (or unique prefix) of the task to dump."`
}

func (cmd *DebugDumpTaskCmd) Run(ctx *cli.Context) error {
	id, err := ctx.ResolveTaskID(cmd.ID)
	if err != nil {
		return err
	}
	task, err := ctx.Store.GetTask(id)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	return printJSON(ctx, task)
}

func printJSON(ctx *cli.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(data))
	return nil
}
