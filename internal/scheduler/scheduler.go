// Package scheduler turns task templates into a day-by-day window plan.
//
// BuildPlanner is a pure function of its inputs: it reads no clock, keeps no
// state between calls and never mutates the templates it is given.
package scheduler

import (
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

// Config tunes the floating allocator. Zero or negative fields use the defaults.
type Config struct {
	DailyTargetMin   int
	MinAllocationMin int
	DefaultChunkMin  int
}

// ConfigFromSettings maps persisted settings onto a scheduler configuration.
func ConfigFromSettings(s models.Settings) Config {
	return Config{
		DailyTargetMin:   s.DailyTargetMin,
		MinAllocationMin: s.MinAllocationMin,
		DefaultChunkMin:  s.DefaultChunkMin,
	}
}

type Scheduler struct {
	cfg Config
}

func New() *Scheduler {
	return NewWithConfig(Config{})
}

func NewWithConfig(cfg Config) *Scheduler {
	if cfg.DailyTargetMin <= 0 {
		cfg.DailyTargetMin = constants.DefaultDailyTargetMin
	}
	if cfg.MinAllocationMin <= 0 {
		cfg.MinAllocationMin = constants.DefaultMinAllocationMin
	}
	if cfg.DefaultChunkMin <= 0 {
		cfg.DefaultChunkMin = constants.DefaultChunkMin
	}
	return &Scheduler{cfg: cfg}
}

// Config returns the effective configuration after defaults were applied.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// BuildPlanner plans the window of days consecutive calendar days beginning
// on start's calendar day, in start's location.
func (s *Scheduler) BuildPlanner(templates []models.TaskTemplate, start time.Time, days int) models.WindowPlan {
	start = utils.StartOfDay(start)
	startDate := utils.FormatDate(start)

	if days < 1 {
		return models.WindowPlan{Start: startDate, End: startDate, Days: []models.DayPlan{}}
	}

	// Step 1: Slot-bound, due and overdue occurrences
	plan := planDays(templates, start, days)

	// Step 2: Spread floating work over the window
	s.allocateFloating(plan, templates)

	// Step 3: Display order within each day
	for i := range plan {
		sortOccurrences(plan[i].Occurrences)
	}

	return models.WindowPlan{
		Start: startDate,
		End:   utils.AddDays(start, days-1),
		Days:  plan,
	}
}

// BuildPlanner plans a window using the default configuration.
func BuildPlanner(templates []models.TaskTemplate, start time.Time, days int) models.WindowPlan {
	return New().BuildPlanner(templates, start, days)
}
