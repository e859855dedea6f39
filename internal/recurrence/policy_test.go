package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/cadence/internal/models"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 18, 30, 0, 0, time.UTC)
}

func fixedID() string { return "note-1" }

func TestCompleteTask_Gap(t *testing.T) {
	task := models.TaskTemplate{
		ID:          "gap",
		Duration:    30,
		Recurrence:  models.GapRecurrence{GapDays: 2},
		NextDueDate: "2024-03-01",
	}

	got := CompleteTask(task, day(2024, 3, 1), CompleteOptions{})

	assert.Equal(t, "2024-03-03", got.NextDueDate)
	require.NotNil(t, got.LastCompletedAt)
	assert.True(t, got.LastCompletedAt.Equal(day(2024, 3, 1)))
	assert.Equal(t, "2024-03-01", task.NextDueDate, "input template must not change")
	assert.Nil(t, task.LastCompletedAt)
}

func TestCompleteTask_Weekly(t *testing.T) {
	task := models.TaskTemplate{
		ID:         "weekly",
		Recurrence: models.WeeklyRecurrence{Days: []time.Weekday{time.Monday, time.Wednesday}},
	}

	tests := []struct {
		name      string
		completed time.Time
		want      string
	}{
		{name: "monday to wednesday", completed: day(2024, 1, 1), want: "2024-01-03"},
		{name: "wednesday to next monday", completed: day(2024, 1, 3), want: "2024-01-08"},
		{name: "saturday to monday", completed: day(2024, 1, 6), want: "2024-01-08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompleteTask(task, tt.completed, CompleteOptions{})
			assert.Equal(t, tt.want, got.NextDueDate)
		})
	}
}

func TestCompleteTask_WeeklyEmptyDaysFallsBackToAWeek(t *testing.T) {
	task := models.TaskTemplate{ID: "weekly", Recurrence: models.WeeklyRecurrence{}}

	got := CompleteTask(task, day(2024, 1, 1), CompleteOptions{})
	assert.Equal(t, "2024-01-08", got.NextDueDate)

	skipped := SkipTaskOccurrence(task, day(2024, 1, 1), nil)
	assert.Equal(t, "2024-01-08", skipped.NextDueDate)
}

func TestCompleteTask_SingleBecomesDormant(t *testing.T) {
	task := models.TaskTemplate{
		ID:          "single",
		Recurrence:  models.SingleRecurrence{Date: "2024-03-01"},
		NextDueDate: "2024-03-01",
	}

	got := CompleteTask(task, day(2024, 3, 1), CompleteOptions{})
	assert.Empty(t, got.NextDueDate)
}

func TestCompleteTask_FloatingDecrementsRemaining(t *testing.T) {
	remaining := 150
	task := models.TaskTemplate{
		ID:                "floating",
		Duration:          150,
		Recurrence:        models.FloatingRecurrence{},
		RemainingDuration: &remaining,
	}

	got := CompleteTask(task, day(2024, 3, 1), CompleteOptions{ChunkMinutes: 60})
	require.NotNil(t, got.RemainingDuration)
	assert.Equal(t, 90, *got.RemainingDuration)
	assert.Empty(t, got.NextDueDate)
	assert.Equal(t, 150, remaining, "input pointer must not be written")

	drained := CompleteTask(got, day(2024, 3, 2), CompleteOptions{ChunkMinutes: 500})
	assert.Equal(t, 0, *drained.RemainingDuration)

	unset := CompleteTask(models.TaskTemplate{Duration: 45, Recurrence: models.FloatingRecurrence{}}, day(2024, 3, 1), CompleteOptions{})
	require.NotNil(t, unset.RemainingDuration)
	assert.Equal(t, 0, *unset.RemainingDuration)
}

func TestCompleteTask_ConsumedSlot(t *testing.T) {
	first := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	second := time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC)
	task := models.TaskTemplate{
		ID:             "slotted",
		Recurrence:     models.GapRecurrence{GapDays: 5},
		ScheduledSlots: []time.Time{first, second},
		NextDueDate:    "2024-03-01",
	}

	got := CompleteTask(task, day(2024, 3, 1), CompleteOptions{ConsumedSlot: &first})
	assert.Equal(t, []time.Time{second}, got.ScheduledSlots)
	assert.Equal(t, "2024-03-04", got.NextDueDate)
	assert.Len(t, task.ScheduledSlots, 2)

	last := CompleteTask(got, day(2024, 3, 4), CompleteOptions{ConsumedSlot: &second})
	assert.Empty(t, last.ScheduledSlots)
	assert.Empty(t, last.NextDueDate)
}

func TestCompleteTask_NotesLog(t *testing.T) {
	task := models.TaskTemplate{
		ID:         "noted",
		Recurrence: models.GapRecurrence{GapDays: 1},
		NotesLog:   []models.NoteEntry{{ID: "old", Body: "earlier"}},
	}

	got := CompleteTask(task, day(2024, 3, 1), CompleteOptions{Note: "  went well ", NewID: fixedID})
	require.Len(t, got.NotesLog, 2)
	assert.Equal(t, models.NoteEntry{ID: "note-1", Body: "went well", RecordedAt: day(2024, 3, 1)}, got.NotesLog[0])
	assert.Equal(t, "old", got.NotesLog[1].ID)
	assert.Len(t, task.NotesLog, 1)

	silent := CompleteTask(task, day(2024, 3, 1), CompleteOptions{Note: "   "})
	assert.Len(t, silent.NotesLog, 1)
}

func TestSkipTaskOccurrence(t *testing.T) {
	ref := day(2024, 3, 1)

	tests := []struct {
		name      string
		task      models.TaskTemplate
		wantDue   string
		wantDefer string
	}{
		{
			name:    "gap moves to next day",
			task:    models.TaskTemplate{Recurrence: models.GapRecurrence{GapDays: 7}, NextDueDate: "2024-03-01"},
			wantDue: "2024-03-02",
		},
		{
			name:    "single moves to next day",
			task:    models.TaskTemplate{Recurrence: models.SingleRecurrence{Date: "2024-03-01"}, NextDueDate: "2024-03-01"},
			wantDue: "2024-03-02",
		},
		{
			name:    "weekly finds next weekday",
			task:    models.TaskTemplate{Recurrence: models.WeeklyRecurrence{Days: []time.Weekday{time.Friday}}, NextDueDate: "2024-03-01"},
			wantDue: "2024-03-08",
		},
		{
			name:      "floating defers",
			task:      models.TaskTemplate{Recurrence: models.FloatingRecurrence{}},
			wantDefer: "2024-03-02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SkipTaskOccurrence(tt.task, ref, nil)
			assert.Equal(t, tt.wantDue, got.NextDueDate)
			assert.Equal(t, tt.wantDefer, got.DeferUntil)
			assert.Nil(t, got.LastCompletedAt)
		})
	}
}

func TestSkipTaskOccurrence_FloatingKeepsRemaining(t *testing.T) {
	remaining := 80
	task := models.TaskTemplate{Recurrence: models.FloatingRecurrence{}, RemainingDuration: &remaining}

	got := SkipTaskOccurrence(task, day(2024, 3, 1), nil)
	require.NotNil(t, got.RemainingDuration)
	assert.Equal(t, 80, *got.RemainingDuration)
}

func TestSkipTaskOccurrence_ConsumedSlotLeavesNotes(t *testing.T) {
	slot := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	task := models.TaskTemplate{
		Recurrence:     models.GapRecurrence{GapDays: 1},
		ScheduledSlots: []time.Time{slot},
		NextDueDate:    "2024-03-01",
		NotesLog:       []models.NoteEntry{{ID: "n"}},
	}

	got := SkipTaskOccurrence(task, day(2024, 3, 1), &slot)
	assert.Empty(t, got.ScheduledSlots)
	assert.Empty(t, got.NextDueDate)
	assert.Len(t, got.NotesLog, 1)
	assert.Nil(t, got.LastCompletedAt)
}

func TestNextWeekly_StrictlyAfter(t *testing.T) {
	// 2024-01-01 is a Monday; a Monday-only task completed on Monday moves a full week.
	assert.Equal(t, "2024-01-08", NextWeekly([]time.Weekday{time.Monday}, day(2024, 1, 1)))
}
