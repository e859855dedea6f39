package tasks

import (
	"github.com/julianstephens/cadence/internal/cli"
)

type TaskListCmd struct {
	All bool `short:"a" help:"Include deleted tasks."`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	tasks, err := ctx.Actions.ListTasks(c.All)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		ctx.Println("No tasks found")
		return nil
	}

	ctx.Println("Tasks:")
	for _, task := range tasks {
		ctx.Println(cli.RenderTask(task))
	}
	return nil
}
