package backup

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
)

func TestIntegrationStoreBackupRestore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cadence.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	task := models.TaskTemplate{
		ID:          "walk",
		Title:       "Walk",
		Duration:    30,
		Priority:    models.PriorityMedium,
		Recurrence:  models.GapRecurrence{GapDays: 1},
		NextDueDate: "2024-03-04",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.AddTask(task); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	mgr := NewManager(dbPath)
	mgr.now = clock(now)
	saved, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	task.NextDueDate = "2024-03-09"
	if err := store.UpdateTask(task); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if err := store.DeleteTask("walk"); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := mgr.Restore(saved.Path); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	reopened := sqlite.NewStore(dbPath)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetTask("walk")
	if err != nil {
		t.Fatalf("GetTask after restore failed: %v", err)
	}
	if got.NextDueDate != "2024-03-04" {
		t.Errorf("NextDueDate = %s, want 2024-03-04", got.NextDueDate)
	}
}
