package actions

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/cadence/internal/aiplan"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
	"github.com/julianstephens/cadence/internal/storage"
)

var testNow = time.Date(2024, 3, 4, 15, 20, 0, 0, time.UTC) // Monday

type fakeGenerator struct {
	response string
	err      error
	prompt   string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.response, g.err
}

func setupService(t *testing.T, tasks ...models.TaskTemplate) (*Service, *storage.JSONStore) {
	t.Helper()

	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "cadence.json"))
	require.NoError(t, store.Init())
	for _, task := range tasks {
		require.NoError(t, store.AddTask(task))
	}

	ids := 0
	svc := New(store)
	svc.Now = func() time.Time { return testNow }
	svc.NewID = func() string {
		ids++
		return "id-" + string(rune('0'+ids))
	}
	svc.Location = time.UTC
	return svc, store
}

func intPtr(v int) *int { return &v }

func TestComplete_GapRecordsHistory(t *testing.T) {
	svc, store := setupService(t, models.TaskTemplate{
		ID:          "walk",
		Title:       "Walk",
		Duration:    30,
		Recurrence:  models.GapRecurrence{GapDays: 2},
		NextDueDate: "2024-03-04",
	})

	got, err := svc.Complete(CompleteRequest{TaskID: "walk", Note: "nice weather"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-06", got.NextDueDate)
	require.Len(t, got.NotesLog, 1)

	stored, err := store.GetTask("walk")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-06", stored.NextDueDate)
	assert.True(t, stored.UpdatedAt.Equal(testNow))

	history, err := store.GetHistory(0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, constants.HistoryStatusCompleted, history[0].Status)
	assert.Equal(t, 30, history[0].DurationMinutes)
	assert.Equal(t, "Walk", history[0].Title)
	assert.Equal(t, "nice weather", history[0].Note)
}

func TestComplete_OnEarlierDay(t *testing.T) {
	svc, _ := setupService(t, models.TaskTemplate{
		ID:         "walk",
		Title:      "Walk",
		Duration:   30,
		Recurrence: models.GapRecurrence{GapDays: 3},
	})

	got, err := svc.Complete(CompleteRequest{TaskID: "walk", Date: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", got.NextDueDate)
	require.NotNil(t, got.LastCompletedAt)
	assert.Equal(t, time.Date(2024, 3, 1, 15, 20, 0, 0, time.UTC), *got.LastCompletedAt)

	_, err = svc.Complete(CompleteRequest{TaskID: "walk", Date: "03/01/2024"})
	assert.Error(t, err)
}

func TestComplete_FloatingChunk(t *testing.T) {
	svc, store := setupService(t, models.TaskTemplate{
		ID:                "essay",
		Title:             "Essay",
		Duration:          180,
		Recurrence:        models.FloatingRecurrence{},
		RemainingDuration: intPtr(180),
	})

	got, err := svc.Complete(CompleteRequest{TaskID: "essay", Minutes: 60})
	require.NoError(t, err)
	require.NotNil(t, got.RemainingDuration)
	assert.Equal(t, 120, *got.RemainingDuration)

	history, err := store.GetHistory(0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 60, history[0].DurationMinutes)
}

func TestComplete_ConsumesSlot(t *testing.T) {
	slot := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	later := time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, models.TaskTemplate{
		ID:             "dentist",
		Title:          "Dentist",
		Duration:       45,
		Recurrence:     models.SingleRecurrence{},
		ScheduledSlots: []time.Time{slot, later},
		NextDueDate:    "2024-03-05",
	})

	got, err := svc.Complete(CompleteRequest{
		TaskID: "dentist",
		Ref:    recurrence.OccurrenceRef{DueDate: "2024-03-05", ScheduledSlot: &slot},
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{later}, got.ScheduledSlots)
	assert.Equal(t, "2024-03-08", got.NextDueDate)
}

func TestComplete_ResolvesSlotFromDate(t *testing.T) {
	slot := time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)
	svc, store := setupService(t, models.TaskTemplate{
		ID:             "piano",
		Title:          "Piano",
		Duration:       30,
		Recurrence:     models.GapRecurrence{GapDays: 2},
		ScheduledSlots: []time.Time{slot},
		NextDueDate:    "2024-03-04",
	})

	got, err := svc.Complete(CompleteRequest{
		TaskID: "piano",
		Ref:    recurrence.OccurrenceRef{DueDate: "2024-03-04"},
		Date:   "2024-03-04",
	})
	require.NoError(t, err)
	assert.Empty(t, got.ScheduledSlots)
	assert.Empty(t, got.NextDueDate)

	plan, err := svc.Plan(testNow, 3)
	require.NoError(t, err)
	assert.Empty(t, plan.Days[0].Occurrences)

	history, err := store.GetHistory(0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestComplete_AmbiguousSlotWritesNothing(t *testing.T) {
	morning := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 4, 19, 0, 0, 0, time.UTC)
	svc, store := setupService(t, models.TaskTemplate{
		ID:             "piano",
		Title:          "Piano",
		Duration:       30,
		Recurrence:     models.GapRecurrence{GapDays: 1},
		ScheduledSlots: []time.Time{morning, evening},
		NextDueDate:    "2024-03-04",
	})

	_, err := svc.Complete(CompleteRequest{TaskID: "piano", Ref: recurrence.OccurrenceRef{DueDate: "2024-03-04"}})
	assert.ErrorIs(t, err, ErrAmbiguousSlot)
	_, err = svc.Skip("piano", recurrence.OccurrenceRef{DueDate: "2024-03-04"}, "")
	assert.ErrorIs(t, err, ErrAmbiguousSlot)

	stored, err := store.GetTask("piano")
	require.NoError(t, err)
	assert.Len(t, stored.ScheduledSlots, 2)
	history, err := store.GetHistory(0)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = svc.Complete(CompleteRequest{TaskID: "piano", Ref: recurrence.OccurrenceRef{DueDate: "2024-03-06"}})
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestSkip_ResolvesOverdueSlotInPlanningZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	overdue := time.Date(2024, 3, 2, 23, 0, 0, 0, time.UTC)
	// 02:00Z on the 5th is the evening of the 4th in New York.
	upcoming := time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, models.TaskTemplate{
		ID:             "piano",
		Title:          "Piano",
		Duration:       30,
		Recurrence:     models.GapRecurrence{GapDays: 1},
		ScheduledSlots: []time.Time{overdue, upcoming},
		NextDueDate:    "2024-03-02",
	})
	svc.Location = ny

	got, err := svc.Skip("piano", recurrence.OccurrenceRef{DueDate: "2024-03-01"}, "")
	assert.ErrorIs(t, err, ErrSlotNotFound)

	got, err = svc.Skip("piano", recurrence.OccurrenceRef{DueDate: "2024-03-03"}, "2024-03-03")
	require.NoError(t, err)
	require.Len(t, got.ScheduledSlots, 1)
	assert.True(t, got.ScheduledSlots[0].Equal(upcoming))
	assert.Equal(t, "2024-03-04", got.NextDueDate)

	plan, err := svc.Plan(testNow.In(ny), 2)
	require.NoError(t, err)
	day, ok := plan.Day(got.NextDueDate)
	require.True(t, ok)
	require.Len(t, day.Occurrences, 1)
	assert.Equal(t, "piano", day.Occurrences[0].TaskID)
}

func TestComplete_UnknownTask(t *testing.T) {
	svc, store := setupService(t)

	_, err := svc.Complete(CompleteRequest{TaskID: "missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	history, err := store.GetHistory(0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSkip_RecordsSkippedHistory(t *testing.T) {
	svc, store := setupService(t, models.TaskTemplate{
		ID:          "gym",
		Title:       "Gym",
		Duration:    60,
		Recurrence:  models.WeeklyRecurrence{Days: []time.Weekday{time.Monday, time.Thursday}},
		NextDueDate: "2024-03-04",
	})

	got, err := svc.Skip("gym", recurrence.OccurrenceRef{DueDate: "2024-03-04"}, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-07", got.NextDueDate)
	assert.Nil(t, got.LastCompletedAt)

	history, err := store.GetHistory(0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, constants.HistoryStatusSkipped, history[0].Status)
	assert.Zero(t, history[0].DurationMinutes)
}

func TestSkip_FloatingDefers(t *testing.T) {
	svc, _ := setupService(t, models.TaskTemplate{
		ID:                "essay",
		Title:             "Essay",
		Duration:          120,
		Recurrence:        models.FloatingRecurrence{},
		RemainingDuration: intPtr(120),
	})

	got, err := svc.Skip("essay", recurrence.OccurrenceRef{DueDate: "2024-03-06"}, "2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-07", got.DeferUntil)
	assert.Equal(t, 120, *got.RemainingDuration)
}

func TestReschedule(t *testing.T) {
	slot := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	svc, store := setupService(t, models.TaskTemplate{
		ID:             "call",
		Title:          "Call",
		Duration:       30,
		Recurrence:     models.SingleRecurrence{},
		ScheduledSlots: []time.Time{slot},
		NextDueDate:    "2024-03-05",
	})

	got, err := svc.Reschedule("call", recurrence.OccurrenceRef{DueDate: "2024-03-05", ScheduledSlot: &slot}, "2024-03-07")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{time.Date(2024, 3, 7, 14, 30, 0, 0, time.UTC)}, got.ScheduledSlots)
	assert.Equal(t, "2024-03-07", got.NextDueDate)

	history, err := store.GetHistory(0)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = svc.Reschedule("call", recurrence.OccurrenceRef{DueDate: "2024-03-07"}, "tomorrow")
	assert.Error(t, err)
	stored, err := store.GetTask("call")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-07", stored.NextDueDate)
}

func TestPlan_UsesStoredSettings(t *testing.T) {
	svc, store := setupService(t, models.TaskTemplate{
		ID:          "walk",
		Title:       "Walk",
		Duration:    30,
		Recurrence:  models.GapRecurrence{GapDays: 1},
		NextDueDate: "2024-03-05",
	})
	settings, err := store.GetSettings()
	require.NoError(t, err)
	settings.DailyTargetMin = 90
	require.NoError(t, store.SaveSettings(settings))

	plan, err := svc.Plan(testNow, 3)
	require.NoError(t, err)
	require.Len(t, plan.Days, 3)
	assert.Equal(t, "2024-03-04", plan.Start)
	assert.Equal(t, "2024-03-06", plan.End)

	day, ok := plan.Day("2024-03-05")
	require.True(t, ok)
	require.Len(t, day.Occurrences, 1)
	assert.Equal(t, "walk", day.Occurrences[0].TaskID)
}

func TestCommitAIPlan(t *testing.T) {
	svc, store := setupService(t,
		models.TaskTemplate{ID: "a", Title: "Alpha", Duration: 30, Recurrence: models.GapRecurrence{GapDays: 1}},
		models.TaskTemplate{ID: "b", Title: "Beta", Duration: 30, Recurrence: models.SingleRecurrence{}},
	)

	result, err := svc.CommitAIPlan([]aiplan.Entry{
		{TaskID: "a", Date: "2024-03-06", Time: "08:00"},
		{TaskID: "a", Date: "2024-03-05"},
		{TaskID: "b", Date: "2024-03-07", Time: "17:15"},
		{TaskID: "ghost", Date: "2024-03-07"},
		{TaskID: "b", Date: "not-a-date"},
	})
	require.NoError(t, err)
	assert.Len(t, result.Updated, 2)
	assert.Equal(t, []string{"ghost"}, result.Unknown)
	assert.Len(t, result.Rejected, 1)

	a, err := store.GetTask("a")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC),
	}, a.ScheduledSlots)
	assert.Equal(t, "2024-03-05", a.NextDueDate)

	b, err := store.GetTask("b")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-07", b.NextDueDate)
}

func TestCommitAIPlan_NothingApplicable(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.CommitAIPlan(nil)
	assert.ErrorIs(t, err, aiplan.ErrEmptyPlan)

	_, err = svc.CommitAIPlan([]aiplan.Entry{{TaskID: "ghost", Date: "2024-03-05"}})
	assert.ErrorIs(t, err, aiplan.ErrEmptyPlan)
}

func TestPlanWeek(t *testing.T) {
	task := models.TaskTemplate{
		ID:                "essay",
		Title:             "Essay",
		Duration:          120,
		Recurrence:        models.FloatingRecurrence{},
		RemainingDuration: intPtr(120),
	}

	t.Run("commits parsed plan", func(t *testing.T) {
		svc, store := setupService(t, task)
		gen := &fakeGenerator{response: "```json\n[{\"id\": \"essay\", \"date\": \"2024-03-05\", \"time\": \"10:00\"}]\n```"}

		result, err := svc.PlanWeek(context.Background(), gen, "Plan my week.", testNow, false)
		require.NoError(t, err)
		assert.Contains(t, gen.prompt, "Plan my week.")
		assert.Contains(t, gen.prompt, "Tasks JSON for upcoming week:")
		assert.Contains(t, gen.prompt, "essay")
		require.Len(t, result.Updated, 1)

		stored, err := store.GetTask("essay")
		require.NoError(t, err)
		assert.Equal(t, []time.Time{time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)}, stored.ScheduledSlots)
	})

	t.Run("dry run leaves store untouched", func(t *testing.T) {
		svc, store := setupService(t, task)
		gen := &fakeGenerator{response: `[{"task_id": "essay", "scheduled_date": "2024-03-05"}]`}

		result, err := svc.PlanWeek(context.Background(), gen, "", testNow, true)
		require.NoError(t, err)
		require.Len(t, result.Updated, 1)

		stored, err := store.GetTask("essay")
		require.NoError(t, err)
		assert.Empty(t, stored.ScheduledSlots)
	})

	t.Run("invalid response changes nothing", func(t *testing.T) {
		svc, store := setupService(t, task)
		gen := &fakeGenerator{response: "Sure! Here is your plan."}

		_, err := svc.PlanWeek(context.Background(), gen, "", testNow, false)
		assert.ErrorIs(t, err, aiplan.ErrInvalidResponse)

		stored, err := store.GetTask("essay")
		require.NoError(t, err)
		assert.Empty(t, stored.ScheduledSlots)
	})

	t.Run("generator error", func(t *testing.T) {
		svc, _ := setupService(t, task)
		gen := &fakeGenerator{err: errors.New("connection refused")}

		_, err := svc.PlanWeek(context.Background(), gen, "", testNow, false)
		assert.ErrorContains(t, err, "connection refused")
	})
}
