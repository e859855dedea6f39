package ai

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/utils"
)

type AIPlanCmd struct {
	Start  string `arg:"" optional:"" help:"First day of the week to plan (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
	DryRun bool   `help:"Show the proposed slots without saving them."`
	Prompt bool   `help:"Print the prompt sent to the model."`
}

func (c *AIPlanCmd) Run(ctx *cli.Context) error {
	start, err := ctx.ParseDay(c.Start)
	if err != nil {
		return err
	}

	if !c.DryRun {
		ctx.PerformAutomaticBackup()
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx.Printf("Asking %s for a plan starting %s...\n", ctx.Services.AI.Model, utils.FormatDate(start))
	result, err := ctx.Actions.PlanWeek(sigCtx, ctx.AIClient(), ctx.Services.AI.Prompt, start, c.DryRun)
	if c.Prompt && result.Prompt != "" {
		ctx.Println()
		ctx.Println(result.Prompt)
	}
	if err != nil {
		return fmt.Errorf("AI planning failed: %w", err)
	}

	ctx.Println()
	verb := "Scheduled"
	if c.DryRun {
		verb = "Would schedule"
	}
	for _, task := range result.Updated {
		ctx.Printf("✓ %s %s (%s)\n", verb, task.Title, cli.ShortID(task.ID))
		for _, slot := range task.ScheduledSlots {
			ctx.Printf("    %s\n", slot.In(start.Location()).Format("Mon Jan 2 15:04"))
		}
	}
	for _, r := range result.Rejected {
		ctx.Printf("⚠ Rejected %s: %s\n", r.Entry.TaskID, r.Reason)
	}
	for _, id := range result.Unknown {
		ctx.Printf("⚠ Unknown task id: %s\n", id)
	}
	return nil
}
