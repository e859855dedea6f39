package constants

const (
	// Planner tuning defaults
	DefaultDailyTargetMin   = 240 // soft per-day budget for floating work
	DefaultMinAllocationMin = 30  // floor used so a full day still yields a non-zero chunk
	DefaultChunkMin         = 60  // chunk size when a template has no maxChunkMinutes
	DefaultWindowDays       = 7
	DefaultTimezone         = "Local"

	// WeeklySearchDays bounds the nearest-weekday search for weekly recurrences.
	WeeklySearchDays = 21
	// WeeklyFallbackDays is used when the weekday set is empty.
	WeeklyFallbackDays = 7

	// DefaultSlotHour is the clock hour used when an unslotted occurrence is moved.
	DefaultSlotHour = 9

	// Occurrence id discriminators
	OccurrencePartCore = "core"

	// Settings keys
	SettingDailyTargetMin   = "daily_target_min"
	SettingMinAllocationMin = "min_allocation_min"
	SettingDefaultChunkMin  = "default_chunk_min"
	SettingWindowDays       = "window_days"
	SettingTimezone         = "timezone"
)
