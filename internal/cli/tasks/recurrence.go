package tasks

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/models"
)

// buildRecurrence assembles the recurrence for mode from the command flags.
func buildRecurrence(mode models.RecurrenceMode, gap int, weekdays, date string) (models.Recurrence, error) {
	switch mode {
	case models.RecurrenceGap:
		if gap < 1 {
			return nil, fmt.Errorf("gap must be at least 1 day")
		}
		return models.GapRecurrence{GapDays: gap}, nil
	case models.RecurrenceWeekly:
		if weekdays == "" {
			return nil, fmt.Errorf("weekly tasks need --weekdays")
		}
		days, err := cli.ParseWeekdays(weekdays)
		if err != nil {
			return nil, err
		}
		return models.WeeklyRecurrence{Days: days}, nil
	case models.RecurrenceSingle:
		return models.SingleRecurrence{Date: date}, nil
	case models.RecurrenceFloating:
		return models.FloatingRecurrence{}, nil
	default:
		return nil, fmt.Errorf("invalid recurrence mode: %s", mode)
	}
}
