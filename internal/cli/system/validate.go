package system

import (
	"errors"
	"fmt"
	"slices"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/validation"
)

// errConflicts is returned when validation finds problems that --fix did not resolve.
var errConflicts = errors.New("validation found conflicts")

type ValidateCmd struct {
	Fix  bool `help:"Remove duplicate tasks, keeping the one with the lowest ID."`
	Days int  `short:"n" help:"Number of days of the plan to check. Defaults to the window_days setting."`
}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	validator := validation.New()

	ctx.Println("Validating tasks...")
	taskResult := validator.ValidateTasks(tasks)

	days := cmd.Days
	if days <= 0 {
		days = settings.WindowDays
	}
	ctx.Printf("Validating the next %d day(s)...\n", days)
	today, err := ctx.Today()
	if err != nil {
		return err
	}
	plan, err := ctx.Actions.Plan(today, days)
	if err != nil {
		return fmt.Errorf("failed to build plan: %w", err)
	}
	planResult := validator.ValidatePlan(plan, tasks, settings.DailyTargetMin)

	combined := validation.ValidationResult{
		Conflicts: slices.Concat(taskResult.Conflicts, planResult.Conflicts),
	}

	ctx.Println()
	ctx.Println(combined.FormatReport())

	if !combined.HasConflicts() {
		return nil
	}
	if !cmd.Fix {
		return errConflicts
	}

	ctx.PerformAutomaticBackup()
	fixes := validation.AutoFixDuplicateTasks(taskResult.Conflicts, tasks, ctx.Actions.DeleteTask)
	if len(fixes) == 0 {
		ctx.Println("No automatic fixes available.")
		return errConflicts
	}
	ctx.Println("Applied fixes:")
	for _, fix := range fixes {
		ctx.Printf("- %s\n", fix.Action)
	}

	remaining, err := ctx.Store.GetAllTasks()
	if err != nil {
		return fmt.Errorf("failed to reload tasks: %w", err)
	}
	remainingResult := validator.ValidateTasks(remaining)
	if remainingResult.HasConflicts() || planResult.HasConflicts() {
		return errConflicts
	}
	return nil
}
