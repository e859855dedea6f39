package aiplan

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/utils"
)

// Entry is one normalized element of the model's answer.
type Entry struct {
	TaskID          string `json:"task_id"`
	Date            string `json:"scheduled_date"`
	Time            string `json:"scheduled_time,omitempty"`
	LastCompletedAt string `json:"last_completed_at,omitempty"`
}

// ParseResponse decodes the model's answer. Alternate keys (id, date, time)
// are accepted; entries without a task id or date are dropped.
func ParseResponse(text string) ([]Entry, error) {
	var raw []map[string]any
	if err := json.Unmarshal([]byte(stripFence(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		e := Entry{
			TaskID:          firstString(item, "task_id", "id"),
			Date:            firstString(item, "scheduled_date", "date"),
			Time:            firstString(item, "scheduled_time", "time"),
			LastCompletedAt: firstString(item, "last_completed_at"),
		}
		if e.TaskID == "" || e.Date == "" {
			continue
		}
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, ErrEmptyPlan
	}
	return entries, nil
}

// stripFence removes a surrounding markdown code fence.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

func firstString(item map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := item[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

// Assignment is the planned slots for one template.
type Assignment struct {
	TaskID          string
	Slots           []time.Time
	LastCompletedAt *time.Time
}

// Rejection is an entry that could not be turned into a slot.
type Rejection struct {
	Entry  Entry
	Reason string
}

// GroupSlots combines each entry's date and time (09:00 when absent) in loc
// and groups the resulting slots by task, in order of first appearance.
func GroupSlots(entries []Entry, loc *time.Location) ([]Assignment, []Rejection) {
	if loc == nil {
		loc = time.Local
	}
	defaultTime := fmt.Sprintf("%02d:00", constants.DefaultSlotHour)

	var assignments []Assignment
	var rejected []Rejection
	index := make(map[string]int)

	for _, e := range entries {
		clock := e.Time
		if clock == "" {
			clock = defaultTime
		}
		clock = normalizeClock(clock)

		slot, err := utils.CombineDateAndTime(e.Date, clock, loc)
		if err != nil {
			rejected = append(rejected, Rejection{Entry: e, Reason: err.Error()})
			continue
		}

		i, ok := index[e.TaskID]
		if !ok {
			i = len(assignments)
			index[e.TaskID] = i
			assignments = append(assignments, Assignment{TaskID: e.TaskID})
		}
		a := &assignments[i]
		a.Slots = append(a.Slots, slot)

		if e.LastCompletedAt != "" {
			if t, err := time.Parse(time.RFC3339, e.LastCompletedAt); err == nil {
				a.LastCompletedAt = &t
			}
		}
	}

	for i := range assignments {
		slices.SortFunc(assignments[i].Slots, func(a, b time.Time) int { return a.Compare(b) })
	}
	return assignments, rejected
}

// normalizeClock accepts H:MM and HH:MM:SS in addition to HH:MM.
func normalizeClock(clock string) string {
	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return clock
	}
	h, m := parts[0], parts[1]
	if len(h) == 1 {
		h = "0" + h
	}
	return h + ":" + m
}
