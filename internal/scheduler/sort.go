package scheduler

import (
	"cmp"
	"slices"

	"github.com/julianstephens/cadence/internal/models"
)

// sortOccurrences orders a day by priority, status, due date and title.
// Full ties keep construction order.
func sortOccurrences(occurrences []models.Occurrence) {
	slices.SortStableFunc(occurrences, compareOccurrences)
}

func compareOccurrences(a, b models.Occurrence) int {
	return cmp.Or(
		cmp.Compare(a.Priority.Rank(), b.Priority.Rank()),
		cmp.Compare(a.Status.Rank(), b.Status.Rank()),
		cmp.Compare(a.DueDate, b.DueDate),
		cmp.Compare(a.Title, b.Title),
	)
}
