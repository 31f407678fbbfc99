package habits

import (
	"errors"
	"fmt"

	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/today"
)

type DoneCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Date  string `help:"Day to check in (YYYY-MM-DD). Defaults to today."`
}

func (c *DoneCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}
	board, client, err := loadBoard(ctx, day)
	if err != nil {
		return err
	}

	habit, err := findHabit(board.Habits(), c.Habit)
	if err != nil {
		return err
	}

	if err := board.Toggle(ctx.Context(), client, habit.ID); err != nil {
		if errors.Is(err, today.ErrNotPending) {
			return fmt.Errorf("%s is already completed for %s", habit.Name, day.Format(constants.DateFormat))
		}
		return err
	}

	for _, h := range board.Habits() {
		if h.ID == habit.ID {
			ctx.Printf("✓ Checked in %s (streak %d)\n", h.Name, h.Streak)
		}
	}
	if board.AllComplete() {
		ctx.Println("All habits completed for the day!")
	}
	return nil
}
