package system

import (
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/models"
)

func addTask(t *testing.T, ctx *cli.Context, title string) models.TaskTemplate {
	t.Helper()
	task, err := ctx.Actions.CreateTask(models.TaskTemplate{
		Title:    title,
		Duration: 30,
	})
	if err != nil {
		t.Fatalf("failed to create task %q: %v", title, err)
	}
	return task
}

func TestValidateCmd_Clean(t *testing.T) {
	ctx, out := setupTestContext(t)
	addTask(t, ctx, "Walk")

	cmd := &ValidateCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("validate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out.String(), "No conflicts detected.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestValidateCmd_ReportsDuplicates(t *testing.T) {
	ctx, out := setupTestContext(t)
	addTask(t, ctx, "Walk")
	addTask(t, ctx, "Walk")

	cmd := &ValidateCmd{}
	err := cmd.Run(ctx)
	if !errors.Is(err, errConflicts) {
		t.Fatalf("validate error = %v, want errConflicts", err)
	}
	if !strings.Contains(out.String(), "Duplicate task title") {
		t.Errorf("expected duplicate report:\n%s", out)
	}
}

func TestValidateCmd_FixRemovesDuplicates(t *testing.T) {
	ctx, out := setupTestContext(t)
	addTask(t, ctx, "Walk")
	addTask(t, ctx, "Walk")

	cmd := &ValidateCmd{Fix: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("validate --fix failed: %v\n%s", err, out)
	}

	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		t.Fatalf("failed to list tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("got %d tasks after fix, want 1", len(tasks))
	}
	if !strings.Contains(out.String(), "Removed 1 duplicate task(s)") {
		t.Errorf("expected fix report:\n%s", out)
	}

	// --fix backs up before deleting
	mgr, err := ctx.BackupManager()
	if err != nil {
		t.Fatalf("failed to get backup manager: %v", err)
	}
	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("failed to list backups: %v", err)
	}
	if len(backups) == 0 {
		t.Error("expected an automatic backup before fixing")
	}
}
