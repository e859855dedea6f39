package plans

import (
	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/constants"
)

type HistoryCmd struct {
	Limit int `short:"l" help:"Maximum number of entries to show (0 shows all)." default:"${history_limit}"`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	history, err := ctx.Actions.History(c.Limit)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		ctx.Println("No history yet")
		return nil
	}

	for _, h := range history {
		mark := "✓"
		if h.Status == constants.HistoryStatusSkipped {
			mark = "↷"
		}
		ctx.Printf("%s %s  %-30s", mark, h.CompletedAt.Local().Format("2006-01-02 15:04"), h.Title)
		if h.Status == constants.HistoryStatusCompleted {
			ctx.Printf("  %s", cli.FormatMinutes(h.DurationMinutes))
		}
		if h.Note != "" {
			ctx.Printf("  %q", h.Note)
		}
		ctx.Println()
	}
	return nil
}
