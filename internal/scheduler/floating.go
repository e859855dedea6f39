package scheduler

import (
	"fmt"
	"slices"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

// allocateFloating places the remaining work of every floating template onto
// plan, highest priority first. Placement is greedy and never revisits earlier
// tasks; each day's TotalMinutes doubles as its running load.
func (s *Scheduler) allocateFloating(plan []models.DayPlan, templates []models.TaskTemplate) {
	if len(plan) == 0 {
		return
	}

	var floating []models.TaskTemplate
	for _, task := range templates {
		if task.IsFloating() {
			floating = append(floating, task)
		}
	}
	slices.SortStableFunc(floating, func(a, b models.TaskTemplate) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})

	for _, task := range floating {
		s.placeFloating(plan, task)
	}
}

func (s *Scheduler) placeFloating(plan []models.DayPlan, task models.TaskTemplate) {
	remaining := task.Remaining()
	if remaining <= 0 {
		return
	}
	started := remaining

	maxChunk := task.MaxChunkMinutes
	if maxChunk <= 0 {
		maxChunk = s.cfg.DefaultChunkMin
	}

	last := len(plan) - 1
	dayIndex := 0
	part := 1

	for remaining > 0 {
		// Overflow piles onto the final day rather than being dropped
		dayIndex = min(dayIndex, last)
		day := &plan[dayIndex]

		// The defer is ignored on the final day so the task still shows up
		if task.DeferUntil != "" && utils.DateBefore(day.Date, task.DeferUntil) && dayIndex < last {
			dayIndex++
			continue
		}

		chunk := remaining
		if task.AutoSplit || remaining > maxChunk {
			available := max(s.cfg.MinAllocationMin, s.cfg.DailyTargetMin-day.TotalMinutes)
			chunk = min(remaining, maxChunk, available)
		}

		if chunk <= 0 {
			if dayIndex == last {
				return
			}
			dayIndex++
			continue
		}

		opts := cardOptions{
			status:   models.StatusFloating,
			duration: chunk,
			label:    labelFloating,
			key:      "floating",
		}
		if part > 1 || started < task.Duration || (task.AutoSplit && chunk < remaining) {
			opts.part = fmt.Sprintf("Part %d", part)
			opts.key = partKey(part)
		}

		day.Occurrences = append(day.Occurrences, newOccurrence(task, day.Date, opts))
		day.TotalMinutes += chunk
		remaining -= chunk
		part++

		if !task.AutoSplit {
			return
		}
		dayIndex++
	}
}
