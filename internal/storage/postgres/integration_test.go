package postgres

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
)

// Set CADENCE_TEST_POSTGRES to a disposable database URL to run this test, e.g.
// postgres://planner@localhost:5432/cadence_test?sslmode=disable
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("CADENCE_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("CADENCE_TEST_POSTGRES not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	t.Run("Settings", func(t *testing.T) {
		settings, err := store.GetSettings()
		if err != nil {
			t.Fatalf("GetSettings failed: %v", err)
		}
		settings.DailyTargetMin = 200
		if err := store.SaveSettings(settings); err != nil {
			t.Fatalf("SaveSettings failed: %v", err)
		}
		got, err := store.GetSettings()
		if err != nil {
			t.Fatalf("GetSettings failed: %v", err)
		}
		if got.DailyTargetMin != 200 {
			t.Errorf("DailyTargetMin = %d, want 200", got.DailyTargetMin)
		}
	})

	t.Run("Tasks", func(t *testing.T) {
		id := "it-" + time.Now().Format("150405.000000")
		now := time.Now().UTC().Truncate(time.Microsecond)
		task := models.TaskTemplate{
			ID:          id,
			Title:       "Integration " + id,
			Duration:    30,
			Priority:    models.PriorityLow,
			Recurrence:  models.WeeklyRecurrence{Days: []time.Weekday{time.Friday}},
			NextDueDate: "2024-03-08",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := store.AddTask(task); err != nil {
			t.Fatalf("AddTask failed: %v", err)
		}

		got, err := store.GetTask(id)
		if err != nil {
			t.Fatalf("GetTask failed: %v", err)
		}
		if got.Title != task.Title || got.NextDueDate != "2024-03-08" {
			t.Errorf("GetTask = %+v", got)
		}

		if err := store.DeleteTask(id); err != nil {
			t.Fatalf("DeleteTask failed: %v", err)
		}
		if _, err := store.GetTask(id); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetTask after delete error = %v, want ErrNotFound", err)
		}
		if err := store.RestoreTask(id); err != nil {
			t.Fatalf("RestoreTask failed: %v", err)
		}
	})

	t.Run("History", func(t *testing.T) {
		record := models.HistoryRecord{
			ID:              "h-" + time.Now().Format("150405.000000"),
			TaskID:          "t1",
			Title:           "Laundry",
			DurationMinutes: 30,
			CompletedAt:     time.Now().UTC(),
			Status:          "completed",
		}
		if err := store.AddHistory(record); err != nil {
			t.Fatalf("AddHistory failed: %v", err)
		}
		history, err := store.GetHistory(1)
		if err != nil {
			t.Fatalf("GetHistory failed: %v", err)
		}
		if len(history) != 1 || history[0].ID != record.ID {
			t.Errorf("GetHistory(1) = %+v, want %s first", history, record.ID)
		}
	})
}
