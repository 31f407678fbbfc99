package habits

import (
	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/constants"
)

type TodayCmd struct {
	Date string `help:"Day to show (YYYY-MM-DD). Defaults to today."`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}
	board, _, err := loadBoard(ctx, day)
	if err != nil {
		return err
	}

	habits := board.Habits()
	done, total := board.Counts()
	ctx.Printf("Habits for %s (%d/%d done)\n", day.Format("Monday, "+constants.DateFormat), done, total)
	if total == 0 {
		ctx.Println("  No habits for this day.")
		return nil
	}

	for _, h := range habits {
		mark := "○"
		if h.Completed() {
			mark = "✓"
		}
		ctx.Printf("  %s %-30s %-12s streak %d (best %d)  [%s]\n",
			mark, h.Name, amount(h.Quantity, h.Measure), h.Streak, h.LongestStreak, h.ID)
	}
	if board.AllComplete() {
		ctx.Println("\nAll habits completed for the day!")
	}
	return nil
}
