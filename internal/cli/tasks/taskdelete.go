package tasks

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/cli"
)

type TaskDeleteCmd struct {
	ID  string `arg:"" help:"Task ID (or a unique prefix) to delete."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	id, err := ctx.ResolveTaskID(c.ID)
	if err != nil {
		return err
	}
	task, err := ctx.Store.GetTask(id)
	if err != nil {
		return fmt.Errorf("failed to find task with ID %s: %w", id, err)
	}

	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete %q?", task.Title))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.Actions.DeleteTask(id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	ctx.Printf("Deleted task: %s (ID: %s)\n", task.Title, id)
	return nil
}

type TaskRestoreCmd struct {
	ID string `arg:"" help:"Task ID to restore."`
}

func (c *TaskRestoreCmd) Run(ctx *cli.Context) error {
	if err := ctx.Actions.RestoreTask(c.ID); err != nil {
		return fmt.Errorf("failed to restore task: %w", err)
	}

	ctx.Printf("Restored task with ID: %s\n", c.ID)
	return nil
}
