package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

type RecurrenceMode string

const (
	RecurrenceGap      RecurrenceMode = "gap"
	RecurrenceWeekly   RecurrenceMode = "weekly"
	RecurrenceSingle   RecurrenceMode = "single"
	RecurrenceFloating RecurrenceMode = "floating"
)

// Recurrence is the closed set of recurrence variants. The only
// implementations are GapRecurrence, WeeklyRecurrence, SingleRecurrence and
// FloatingRecurrence; consumers type-switch over exactly those four.
type Recurrence interface {
	Mode() RecurrenceMode
	isRecurrence()
}

// GapRecurrence repeats every GapDays days after completion.
type GapRecurrence struct {
	GapDays int `json:"gapDays"`
}

// WeeklyRecurrence repeats on the listed weekdays.
type WeeklyRecurrence struct {
	Days []time.Weekday `json:"days"`
}

// SingleRecurrence occurs once on Date (YYYY-MM-DD).
type SingleRecurrence struct {
	Date string `json:"date,omitempty"`
}

// FloatingRecurrence has no fixed date; its remaining work is spread across days.
type FloatingRecurrence struct{}

func (GapRecurrence) Mode() RecurrenceMode      { return RecurrenceGap }
func (WeeklyRecurrence) Mode() RecurrenceMode   { return RecurrenceWeekly }
func (SingleRecurrence) Mode() RecurrenceMode   { return RecurrenceSingle }
func (FloatingRecurrence) Mode() RecurrenceMode { return RecurrenceFloating }

func (GapRecurrence) isRecurrence()      {}
func (WeeklyRecurrence) isRecurrence()   {}
func (SingleRecurrence) isRecurrence()   {}
func (FloatingRecurrence) isRecurrence() {}

// Includes reports whether wd is one of the recurrence days.
func (w WeeklyRecurrence) Includes(wd time.Weekday) bool {
	return slices.Contains(w.Days, wd)
}

// RecurrenceEnvelope is the wire shape of a recurrence: {"mode": ..., "config": {...}}.
type RecurrenceEnvelope struct {
	Mode   RecurrenceMode  `json:"mode"`
	Config json.RawMessage `json:"config,omitempty"`
}

// EncodeRecurrence converts a recurrence into its wire envelope. A nil
// recurrence encodes as a one-day gap.
func EncodeRecurrence(r Recurrence) (RecurrenceEnvelope, error) {
	if r == nil {
		r = GapRecurrence{GapDays: 1}
	}

	var payload any
	switch rec := r.(type) {
	case GapRecurrence:
		payload = rec
	case WeeklyRecurrence:
		days := rec.Days
		if days == nil {
			days = []time.Weekday{}
		}
		payload = WeeklyRecurrence{Days: days}
	case SingleRecurrence:
		payload = rec
	case FloatingRecurrence:
		payload = struct{}{}
	default:
		return RecurrenceEnvelope{}, fmt.Errorf("unsupported recurrence type %T", r)
	}

	config, err := json.Marshal(payload)
	if err != nil {
		return RecurrenceEnvelope{}, fmt.Errorf("failed to marshal recurrence config: %w", err)
	}
	return RecurrenceEnvelope{Mode: r.Mode(), Config: config}, nil
}

// DecodeRecurrence converts a wire envelope into a recurrence. A missing mode
// decodes as gap, and a gap without gapDays defaults to one day.
func DecodeRecurrence(env RecurrenceEnvelope) (Recurrence, error) {
	config := env.Config
	if len(config) == 0 || string(config) == "null" {
		config = json.RawMessage("{}")
	}

	switch env.Mode {
	case "", RecurrenceGap:
		var rec GapRecurrence
		if err := json.Unmarshal(config, &rec); err != nil {
			return nil, fmt.Errorf("invalid gap recurrence config: %w", err)
		}
		if rec.GapDays < 1 {
			rec.GapDays = 1
		}
		return rec, nil
	case RecurrenceWeekly:
		var rec WeeklyRecurrence
		if err := json.Unmarshal(config, &rec); err != nil {
			return nil, fmt.Errorf("invalid weekly recurrence config: %w", err)
		}
		return rec, nil
	case RecurrenceSingle:
		var rec SingleRecurrence
		if err := json.Unmarshal(config, &rec); err != nil {
			return nil, fmt.Errorf("invalid single recurrence config: %w", err)
		}
		return rec, nil
	case RecurrenceFloating:
		return FloatingRecurrence{}, nil
	default:
		return nil, fmt.Errorf("unknown recurrence mode: %s", env.Mode)
	}
}

// cloneRecurrence returns a copy that shares no backing arrays with r.
func cloneRecurrence(r Recurrence) Recurrence {
	if w, ok := r.(WeeklyRecurrence); ok {
		return WeeklyRecurrence{Days: slices.Clone(w.Days)}
	}
	return r
}
