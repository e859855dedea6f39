package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/cadence/internal/constants"
)

// Settings holds planner tuning persisted alongside the templates.
type Settings struct {
	DailyTargetMin   int    `json:"daily_target_min"`   // soft per-day budget for floating work
	MinAllocationMin int    `json:"min_allocation_min"` // smallest chunk offered on a full day
	DefaultChunkMin  int    `json:"default_chunk_min"`  // chunk size when a template sets none
	WindowDays       int    `json:"window_days"`        // default planning window length
	Timezone         string `json:"timezone"`           // IANA timezone name or "Local"
}

// DefaultSettings returns the built-in planner settings.
func DefaultSettings() Settings {
	return Settings{
		DailyTargetMin:   constants.DefaultDailyTargetMin,
		MinAllocationMin: constants.DefaultMinAllocationMin,
		DefaultChunkMin:  constants.DefaultChunkMin,
		WindowDays:       constants.DefaultWindowDays,
		Timezone:         constants.DefaultTimezone,
	}
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		var err error
		switch key {
		case constants.SettingDailyTargetMin:
			settings.DailyTargetMin, err = strconv.Atoi(value)
		case constants.SettingMinAllocationMin:
			settings.MinAllocationMin, err = strconv.Atoi(value)
		case constants.SettingDefaultChunkMin:
			settings.DefaultChunkMin, err = strconv.Atoi(value)
		case constants.SettingWindowDays:
			settings.WindowDays, err = strconv.Atoi(value)
		case constants.SettingTimezone:
			settings.Timezone = value
		}
		if err != nil {
			return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
		}
	}
	ApplyDefaultSettings(&settings)
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingDailyTargetMin:   strconv.Itoa(settings.DailyTargetMin),
		constants.SettingMinAllocationMin: strconv.Itoa(settings.MinAllocationMin),
		constants.SettingDefaultChunkMin:  strconv.Itoa(settings.DefaultChunkMin),
		constants.SettingWindowDays:       strconv.Itoa(settings.WindowDays),
		constants.SettingTimezone:         settings.Timezone,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	defaults := DefaultSettings()
	if settings.DailyTargetMin <= 0 {
		settings.DailyTargetMin = defaults.DailyTargetMin
	}
	if settings.MinAllocationMin <= 0 {
		settings.MinAllocationMin = defaults.MinAllocationMin
	}
	if settings.DefaultChunkMin <= 0 {
		settings.DefaultChunkMin = defaults.DefaultChunkMin
	}
	if settings.WindowDays <= 0 {
		settings.WindowDays = defaults.WindowDays
	}
	if settings.Timezone == "" {
		settings.Timezone = defaults.Timezone
	}
}
