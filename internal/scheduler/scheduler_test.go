package scheduler

import (
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/cadence/internal/models"
)

// 2024-03-04 is a Monday
var windowStart = time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func durations(day models.DayPlan, taskID string) []int {
	var out []int
	for _, occ := range day.Occurrences {
		if occ.TaskID == taskID {
			out = append(out, occ.Duration)
		}
	}
	return out
}

func find(day models.DayPlan, taskID string) (models.Occurrence, bool) {
	for _, occ := range day.Occurrences {
		if occ.TaskID == taskID {
			return occ, true
		}
	}
	return models.Occurrence{}, false
}

func TestBuildPlanner_WindowShape(t *testing.T) {
	plan := BuildPlanner(nil, windowStart, 3)

	if plan.Start != "2024-03-04" || plan.End != "2024-03-06" {
		t.Fatalf("window = %s..%s, want 2024-03-04..2024-03-06", plan.Start, plan.End)
	}
	if len(plan.Days) != 3 {
		t.Fatalf("got %d days, want 3", len(plan.Days))
	}
	if plan.Days[0].Label != "Monday, Mar 4" || plan.Days[0].ShortLabel != "Mon 04" {
		t.Errorf("labels = %q / %q", plan.Days[0].Label, plan.Days[0].ShortLabel)
	}
	if plan.Days[2].Date != "2024-03-06" {
		t.Errorf("last day = %s, want 2024-03-06", plan.Days[2].Date)
	}
}

func TestBuildPlanner_EmptyWindow(t *testing.T) {
	plan := BuildPlanner([]models.TaskTemplate{{ID: "a", Duration: 30, NextDueDate: "2024-03-01"}}, windowStart, 0)
	if len(plan.Days) != 0 {
		t.Fatalf("expected no days, got %d", len(plan.Days))
	}
	if plan.Start != "2024-03-04" || plan.End != "2024-03-04" {
		t.Errorf("window = %s..%s", plan.Start, plan.End)
	}
}

func TestBuildPlanner_DueOccurrences(t *testing.T) {
	tasks := []models.TaskTemplate{
		{ID: "gap", Title: "Laundry", Duration: 45, Priority: models.PriorityMedium, Recurrence: models.GapRecurrence{GapDays: 3}, NextDueDate: "2024-03-05"},
		{ID: "later", Title: "Taxes", Duration: 90, Priority: models.PriorityHigh, Recurrence: models.SingleRecurrence{Date: "2024-04-15"}, NextDueDate: "2024-04-15"},
		{ID: "dormant", Title: "Done", Duration: 30, Recurrence: models.SingleRecurrence{}},
	}

	plan := BuildPlanner(tasks, windowStart, 3)

	occ, ok := find(plan.Days[1], "gap")
	if !ok {
		t.Fatal("expected gap task on 2024-03-05")
	}
	if occ.Status != models.StatusDue || occ.DueDate != "2024-03-05" {
		t.Errorf("status/due = %s/%s", occ.Status, occ.DueDate)
	}
	if occ.ID != "gap-2024-03-05-core" {
		t.Errorf("id = %s", occ.ID)
	}
	if occ.Window != models.WindowAny {
		t.Errorf("window = %s, want any", occ.Window)
	}
	if plan.Days[1].TotalMinutes != 45 {
		t.Errorf("total = %d, want 45", plan.Days[1].TotalMinutes)
	}
	for _, day := range plan.Days {
		if _, ok := find(day, "later"); ok {
			t.Errorf("task due outside the window appeared on %s", day.Date)
		}
		if _, ok := find(day, "dormant"); ok {
			t.Errorf("dormant task appeared on %s", day.Date)
		}
	}
}

func TestBuildPlanner_OverdueCarriedIntoFirstDay(t *testing.T) {
	tasks := []models.TaskTemplate{
		{ID: "old", Title: "Call bank", Duration: 20, Priority: models.PriorityLow, Recurrence: models.GapRecurrence{GapDays: 1}, NextDueDate: "2024-02-20"},
		{ID: "weekly", Title: "Review", Duration: 30, Recurrence: models.WeeklyRecurrence{Days: []time.Weekday{time.Friday}}, NextDueDate: "2024-03-01"},
	}

	for _, days := range []int{1, 7} {
		plan := BuildPlanner(tasks, windowStart, days)
		for _, id := range []string{"old", "weekly"} {
			occ, ok := find(plan.Days[0], id)
			if !ok {
				t.Fatalf("days=%d: %s not carried into day 0", days, id)
			}
			if occ.Status != models.StatusOverdue {
				t.Errorf("days=%d: %s status = %s, want overdue", days, id, occ.Status)
			}
		}
		occ, _ := find(plan.Days[0], "old")
		if occ.DueDate != "2024-02-20" {
			t.Errorf("overdue due date = %s, want 2024-02-20", occ.DueDate)
		}
		if occ.Priority != models.PriorityLow {
			t.Errorf("overdue priority = %s, want low", occ.Priority)
		}
		if plan.Days[0].TotalMinutes != 50 {
			t.Errorf("day 0 total = %d, want 50", plan.Days[0].TotalMinutes)
		}
	}
}

func TestBuildPlanner_ScheduledSlots(t *testing.T) {
	morning := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	afternoon := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	past := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	tasks := []models.TaskTemplate{{
		ID:             "slotted",
		Title:          "Piano",
		Duration:       40,
		Priority:       models.PriorityMedium,
		Recurrence:     models.GapRecurrence{GapDays: 2},
		NextDueDate:    "2024-03-01",
		ScheduledSlots: []time.Time{past, afternoon, morning},
	}}

	plan := BuildPlanner(tasks, windowStart, 3)

	day1 := plan.Days[1]
	if len(day1.Occurrences) != 2 {
		t.Fatalf("got %d occurrences on 2024-03-05, want 2", len(day1.Occurrences))
	}
	wantParts := []string{"Slot 1", "Slot 2"}
	wantTimes := []string{"09:00", "14:30"}
	for i, occ := range day1.Occurrences {
		if occ.Status != models.StatusScheduled {
			t.Errorf("slot %d status = %s, want scheduled", i, occ.Status)
		}
		if occ.Part != wantParts[i] {
			t.Errorf("slot %d part = %q, want %q", i, occ.Part, wantParts[i])
		}
		if occ.ScheduledTime != wantTimes[i] {
			t.Errorf("slot %d time = %q, want %q", i, occ.ScheduledTime, wantTimes[i])
		}
		if occ.ScheduledSlot == nil {
			t.Errorf("slot %d lost its slot", i)
		}
	}
	if day1.Occurrences[0].ID == day1.Occurrences[1].ID {
		t.Errorf("slot occurrences share id %s", day1.Occurrences[0].ID)
	}
	if day1.TotalMinutes != 80 {
		t.Errorf("total = %d, want 80", day1.TotalMinutes)
	}

	// The past slot is overdue; nextDueDate matching is bypassed for slotted tasks.
	day0 := plan.Days[0]
	if len(day0.Occurrences) != 1 {
		t.Fatalf("got %d occurrences on day 0, want 1", len(day0.Occurrences))
	}
	overdue := day0.Occurrences[0]
	if overdue.Status != models.StatusOverdue || overdue.DueDate != "2024-03-01" || overdue.ScheduledTime != "08:00" {
		t.Errorf("overdue slot = %+v", overdue)
	}
	if overdue.Part != "" {
		t.Errorf("single slot on its date should not be labelled, got %q", overdue.Part)
	}
}

func TestBuildPlanner_FloatingSplitsAcrossDays(t *testing.T) {
	tasks := []models.TaskTemplate{{
		ID:                "essay",
		Title:             "Essay",
		Duration:          150,
		Priority:          models.PriorityMedium,
		Recurrence:        models.FloatingRecurrence{},
		RemainingDuration: intPtr(150),
		AutoSplit:         true,
		MaxChunkMinutes:   60,
	}}

	plan := BuildPlanner(tasks, windowStart, 3)

	want := [][]int{{60}, {60}, {30}}
	for i, day := range plan.Days {
		if got := durations(day, "essay"); !reflect.DeepEqual(got, want[i]) {
			t.Errorf("day %d chunks = %v, want %v", i, got, want[i])
		}
		if day.TotalMinutes != want[i][0] {
			t.Errorf("day %d total = %d, want %d", i, day.TotalMinutes, want[i][0])
		}
	}

	occ := plan.Days[2].Occurrences[0]
	if occ.Part != "Part 3" || occ.Status != models.StatusFloating || occ.ID != "essay-2024-03-06-part-3" {
		t.Errorf("last chunk = %+v", occ)
	}
}

func TestBuildPlanner_FloatingRespectsExistingLoad(t *testing.T) {
	tasks := []models.TaskTemplate{
		{ID: "big", Title: "Deep work", Duration: 200, Priority: models.PriorityHigh, Recurrence: models.GapRecurrence{GapDays: 7}, NextDueDate: "2024-03-04"},
		{ID: "float", Title: "Reading", Duration: 100, Priority: models.PriorityLow, Recurrence: models.FloatingRecurrence{}, AutoSplit: true, MaxChunkMinutes: 60},
	}

	plan := BuildPlanner(tasks, windowStart, 3)

	if got := durations(plan.Days[0], "float"); !reflect.DeepEqual(got, []int{40}) {
		t.Errorf("day 0 chunks = %v, want [40]", got)
	}
	if got := durations(plan.Days[1], "float"); !reflect.DeepEqual(got, []int{60}) {
		t.Errorf("day 1 chunks = %v, want [60]", got)
	}
	if plan.Days[0].TotalMinutes != 240 {
		t.Errorf("day 0 total = %d, want 240", plan.Days[0].TotalMinutes)
	}
}

func TestBuildPlanner_FloatingPriorityOrder(t *testing.T) {
	tasks := []models.TaskTemplate{
		{ID: "low", Title: "Low", Duration: 240, Priority: models.PriorityLow, Recurrence: models.FloatingRecurrence{}, AutoSplit: true, MaxChunkMinutes: 240},
		{ID: "high", Title: "High", Duration: 240, Priority: models.PriorityHigh, Recurrence: models.FloatingRecurrence{}, AutoSplit: true, MaxChunkMinutes: 240},
	}

	plan := BuildPlanner(tasks, windowStart, 2)

	if got := durations(plan.Days[0], "high"); !reflect.DeepEqual(got, []int{240}) {
		t.Errorf("high chunks on day 0 = %v, want [240]", got)
	}
	// Day 0 is full, so the low task only gets the allocation floor there.
	if got := durations(plan.Days[0], "low"); !reflect.DeepEqual(got, []int{30}) {
		t.Errorf("low chunks on day 0 = %v, want [30]", got)
	}
	if got := durations(plan.Days[1], "low"); !reflect.DeepEqual(got, []int{210}) {
		t.Errorf("low chunks on day 1 = %v, want [210]", got)
	}
}

func TestBuildPlanner_FloatingOverflowsOntoLastDay(t *testing.T) {
	tasks := []models.TaskTemplate{{
		ID:                "thesis",
		Title:             "Thesis",
		Duration:          600,
		Priority:          models.PriorityHigh,
		Recurrence:        models.FloatingRecurrence{},
		RemainingDuration: intPtr(600),
		AutoSplit:         true,
		MaxChunkMinutes:   240,
	}}

	plan := BuildPlanner(tasks, windowStart, 2)

	if got := durations(plan.Days[0], "thesis"); !reflect.DeepEqual(got, []int{240}) {
		t.Errorf("day 0 chunks = %v, want [240]", got)
	}
	if got := durations(plan.Days[1], "thesis"); !reflect.DeepEqual(got, []int{240, 30, 30, 30, 30}) {
		t.Errorf("day 1 chunks = %v, want [240 30 30 30 30]", got)
	}

	placed := plan.Days[0].TotalMinutes + plan.Days[1].TotalMinutes
	if placed != 600 {
		t.Errorf("placed %d minutes, want 600", placed)
	}
}

func TestBuildPlanner_FloatingDefer(t *testing.T) {
	tasks := []models.TaskTemplate{
		{ID: "soon", Title: "Soon", Duration: 30, Recurrence: models.FloatingRecurrence{}, DeferUntil: "2024-03-05"},
		{ID: "far", Title: "Far", Duration: 30, Recurrence: models.FloatingRecurrence{}, DeferUntil: "2024-04-01"},
	}

	plan := BuildPlanner(tasks, windowStart, 3)

	if _, ok := find(plan.Days[0], "soon"); ok {
		t.Error("deferred task placed before its defer date")
	}
	if _, ok := find(plan.Days[1], "soon"); !ok {
		t.Error("deferred task missing on its defer date")
	}
	if _, ok := find(plan.Days[2], "far"); !ok {
		t.Error("task deferred past the window must still land on the last day")
	}
}

func TestBuildPlanner_FloatingWithoutSplit(t *testing.T) {
	tasks := []models.TaskTemplate{
		{ID: "whole", Title: "Whole", Duration: 150, Priority: models.PriorityMedium, Recurrence: models.FloatingRecurrence{}, MaxChunkMinutes: 60},
		{ID: "small", Title: "Small", Duration: 45, Priority: models.PriorityLow, Recurrence: models.FloatingRecurrence{}, MaxChunkMinutes: 60},
		{ID: "done", Title: "Done", Duration: 45, Recurrence: models.FloatingRecurrence{}, RemainingDuration: intPtr(0)},
	}

	plan := BuildPlanner(tasks, windowStart, 3)

	if got := durations(plan.Days[0], "whole"); !reflect.DeepEqual(got, []int{60}) {
		t.Errorf("oversized unsplit task = %v, want a single [60] placement", got)
	}
	for _, day := range plan.Days[1:] {
		if _, ok := find(day, "whole"); ok {
			t.Errorf("unsplit task continued onto %s", day.Date)
		}
	}

	occ, ok := find(plan.Days[0], "small")
	if !ok || occ.Duration != 45 {
		t.Fatalf("small task = %+v, want 45 minutes on day 0", occ)
	}
	if occ.Part != "" || occ.ID != "small-2024-03-04-floating" {
		t.Errorf("single placement labelled %q with id %s", occ.Part, occ.ID)
	}

	for _, day := range plan.Days {
		if _, ok := find(day, "done"); ok {
			t.Errorf("exhausted floating task placed on %s", day.Date)
		}
	}
}

func TestBuildPlanner_PartiallyDoneFloatingIsLabelled(t *testing.T) {
	tasks := []models.TaskTemplate{{
		ID: "f", Title: "F", Duration: 120, Recurrence: models.FloatingRecurrence{}, RemainingDuration: intPtr(45),
	}}

	plan := BuildPlanner(tasks, windowStart, 1)

	occ, ok := find(plan.Days[0], "f")
	if !ok || occ.Part != "Part 1" || occ.Duration != 45 {
		t.Errorf("occurrence = %+v, want Part 1 of 45 minutes", occ)
	}
}

func TestBuildPlanner_SortOrder(t *testing.T) {
	tasks := []models.TaskTemplate{
		{ID: "low-float", Title: "Sketch", Duration: 30, Priority: models.PriorityLow, Recurrence: models.FloatingRecurrence{}},
		{ID: "med-overdue", Title: "Invoice", Duration: 30, Priority: models.PriorityMedium, Recurrence: models.GapRecurrence{GapDays: 1}, NextDueDate: "2024-03-02"},
		{ID: "high-due", Title: "Standup", Duration: 15, Priority: models.PriorityHigh, Recurrence: models.GapRecurrence{GapDays: 1}, NextDueDate: "2024-03-04"},
		{ID: "med-due", Title: "Budget", Duration: 15, Priority: models.PriorityMedium, Recurrence: models.GapRecurrence{GapDays: 1}, NextDueDate: "2024-03-04"},
	}

	plan := BuildPlanner(tasks, windowStart, 1)

	var got []string
	for _, occ := range plan.Days[0].Occurrences {
		got = append(got, occ.TaskID)
	}
	want := []string{"high-due", "med-overdue", "med-due", "low-float"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestCompareOccurrences(t *testing.T) {
	base := models.Occurrence{Priority: models.PriorityMedium, Status: models.StatusDue, DueDate: "2024-03-04", Title: "B"}

	tests := []struct {
		name string
		a    models.Occurrence
		want int
	}{
		{name: "equal", a: base, want: 0},
		{name: "unknown priority after low", a: models.Occurrence{Priority: "urgent"}, want: 1},
		{name: "earlier due date first", a: models.Occurrence{Priority: models.PriorityMedium, Status: models.StatusDue, DueDate: "2024-03-01", Title: "Z"}, want: -1},
		{name: "title breaks ties", a: models.Occurrence{Priority: models.PriorityMedium, Status: models.StatusDue, DueDate: "2024-03-04", Title: "A"}, want: -1},
		{name: "scheduled before due", a: models.Occurrence{Priority: models.PriorityMedium, Status: models.StatusScheduled, DueDate: "2024-03-09"}, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compareOccurrences(tt.a, base); got != tt.want {
				t.Errorf("compareOccurrences() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildPlanner_Idempotent(t *testing.T) {
	tasks := []models.TaskTemplate{
		{ID: "a", Title: "A", Duration: 30, Priority: models.PriorityHigh, Recurrence: models.GapRecurrence{GapDays: 1}, NextDueDate: "2024-03-01"},
		{ID: "b", Title: "B", Duration: 200, Priority: models.PriorityLow, Recurrence: models.FloatingRecurrence{}, AutoSplit: true},
		{ID: "c", Title: "C", Duration: 20, Recurrence: models.GapRecurrence{GapDays: 1}, ScheduledSlots: []time.Time{time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)}},
	}
	snapshot := make([]models.TaskTemplate, len(tasks))
	for i, task := range tasks {
		snapshot[i] = task.Clone()
	}

	first := BuildPlanner(tasks, windowStart, 5)
	second := BuildPlanner(tasks, windowStart, 5)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different plans")
	}
	if !reflect.DeepEqual(tasks, snapshot) {
		t.Error("BuildPlanner mutated its input templates")
	}
}

func TestNewWithConfig(t *testing.T) {
	s := NewWithConfig(Config{DailyTargetMin: 90})
	cfg := s.Config()
	if cfg.DailyTargetMin != 90 || cfg.MinAllocationMin != 30 || cfg.DefaultChunkMin != 60 {
		t.Fatalf("config = %+v", cfg)
	}

	tasks := []models.TaskTemplate{{
		ID: "f", Title: "F", Duration: 200, Recurrence: models.FloatingRecurrence{}, AutoSplit: true, MaxChunkMinutes: 120,
	}}
	plan := s.BuildPlanner(tasks, windowStart, 3)

	want := [][]int{{90}, {90}, {20}}
	for i, day := range plan.Days {
		if got := durations(day, "f"); !reflect.DeepEqual(got, want[i]) {
			t.Errorf("day %d chunks = %v, want %v", i, got, want[i])
		}
	}
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(models.Settings{DailyTargetMin: 300, MinAllocationMin: 15, DefaultChunkMin: 45})
	if cfg != (Config{DailyTargetMin: 300, MinAllocationMin: 15, DefaultChunkMin: 45}) {
		t.Errorf("config = %+v", cfg)
	}
}

func TestBuildPlanner_CloseSlotsGetDistinctIDs(t *testing.T) {
	base := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	tasks := []models.TaskTemplate{{
		ID:         "drill",
		Title:      "Drill",
		Duration:   5,
		Priority:   models.PriorityMedium,
		Recurrence: models.GapRecurrence{GapDays: 1},
		ScheduledSlots: []time.Time{
			base,
			base.Add(20 * time.Second),
			base.Add(20*time.Second + 300*time.Millisecond),
		},
	}}

	plan := BuildPlanner(tasks, windowStart, 2)

	day1 := plan.Days[1]
	if len(day1.Occurrences) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(day1.Occurrences))
	}
	ids := make(map[string]bool)
	for _, occ := range day1.Occurrences {
		if ids[occ.ID] {
			t.Errorf("duplicate occurrence id %s", occ.ID)
		}
		ids[occ.ID] = true
	}
}
