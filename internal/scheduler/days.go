package scheduler

import (
	"fmt"
	"slices"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

// planDays lays out the window and places every slot-bound, due and overdue
// occurrence. Overdue work from before start is injected into day 0.
func planDays(templates []models.TaskTemplate, start time.Time, days int) []models.DayPlan {
	loc := start.Location()
	startDate := utils.FormatDate(start)

	plan := make([]models.DayPlan, days)
	index := make(map[string]int, days)
	for i := range plan {
		day := start.AddDate(0, 0, i)
		date := utils.FormatDate(day)
		plan[i] = models.DayPlan{
			Date:        date,
			Label:       day.Format(constants.DayLabelFormat),
			ShortLabel:  day.Format(constants.DayShortLabelFormat),
			Occurrences: []models.Occurrence{},
		}
		index[date] = i
	}

	var overdue []models.Occurrence
	for _, task := range templates {
		if len(task.ScheduledSlots) > 0 {
			for _, occ := range slotOccurrences(task, startDate, loc) {
				if occ.Status == models.StatusOverdue {
					overdue = append(overdue, occ)
					continue
				}
				if i, ok := index[occ.DueDate]; ok {
					plan[i].Occurrences = append(plan[i].Occurrences, occ)
				}
			}
			continue
		}

		if task.NextDueDate == "" {
			continue
		}
		if utils.DateBefore(task.NextDueDate, startDate) {
			overdue = append(overdue, newOccurrence(task, startDate, cardOptions{
				status:  models.StatusOverdue,
				dueDate: task.NextDueDate,
				loc:     loc,
			}))
			continue
		}
		if task.IsFloating() {
			continue
		}
		if i, ok := index[task.NextDueDate]; ok {
			plan[i].Occurrences = append(plan[i].Occurrences, newOccurrence(task, task.NextDueDate, cardOptions{
				status: models.StatusDue,
				loc:    loc,
			}))
		}
	}

	plan[0].Occurrences = append(overdue, plan[0].Occurrences...)

	for i := range plan {
		total := 0
		for _, occ := range plan[i].Occurrences {
			total += occ.Duration
		}
		plan[i].TotalMinutes = total
	}

	return plan
}

// slotOccurrences emits one card per explicit slot. Slots dated before
// startDate become overdue cards bound for day 0; the others carry their
// own date in DueDate. Several slots on one date are labelled "Slot N".
func slotOccurrences(task models.TaskTemplate, startDate string, loc *time.Location) []models.Occurrence {
	slots := slices.Clone(task.ScheduledSlots)
	slices.SortStableFunc(slots, func(a, b time.Time) int {
		return a.Compare(b)
	})

	perDate := make(map[string]int, len(slots))
	for _, slot := range slots {
		perDate[utils.DateIn(slot, loc)]++
	}

	seen := make(map[string]int, len(perDate))
	keys := make(map[string]int, len(slots))
	occurrences := make([]models.Occurrence, 0, len(slots))
	for _, slot := range slots {
		// Slots closer together than the key's precision still get distinct ids
		key := slotKey(slot)
		keys[key]++
		if n := keys[key]; n > 1 {
			key = fmt.Sprintf("%s-%d", key, n)
		}

		date := utils.DateIn(slot, loc)
		seen[date]++

		part := ""
		if perDate[date] > 1 {
			part = fmt.Sprintf("Slot %d", seen[date])
		}

		opts := cardOptions{
			status:  models.StatusScheduled,
			dueDate: date,
			slot:    &slot,
			loc:     loc,
			part:    part,
			key:     key,
			label:   labelScheduled,
		}
		cardDate := date
		if utils.DateBefore(date, startDate) {
			opts.status = models.StatusOverdue
			cardDate = startDate
		}
		occurrences = append(occurrences, newOccurrence(task, cardDate, opts))
	}
	return occurrences
}
