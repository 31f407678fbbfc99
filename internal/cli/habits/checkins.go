package habits

import (
	"fmt"
	"sort"

	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/models"
)

type CheckinsCmd struct {
	List   CheckinListCmd   `cmd:"" default:"withargs" help:"List check-ins."`
	Delete CheckinDeleteCmd `cmd:"" help:"Delete a check-in."`
}

type CheckinListCmd struct {
	Habit string `short:"H" help:"Only show check-ins of this habit ID."`
	Limit int    `short:"n" help:"Maximum number of check-ins to show." default:"20"`
}

func (c *CheckinListCmd) Run(ctx *cli.Context) error {
	uid, err := ctx.UID()
	if err != nil {
		return err
	}
	client, err := ctx.Client()
	if err != nil {
		return err
	}
	checkins, err := client.ListCheckinsByUser(ctx.Context(), uid)
	if err != nil {
		return err
	}

	var list []models.HabitCheckin
	for _, ch := range checkins {
		if c.Habit == "" || ch.HabitID == c.Habit {
			list = append(list, ch)
		}
	}
	// Newest first
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Created().After(list[j].Created())
	})
	if c.Limit > 0 && len(list) > c.Limit {
		list = list[:c.Limit]
	}

	if len(list) == 0 {
		ctx.Println("No check-ins found.")
		return nil
	}
	for _, ch := range list {
		mark := "○"
		if ch.Completed {
			mark = "✓"
		}
		ctx.Printf("  %s %s  habit %s  qty %d  [%s]\n", mark, ch.Date, ch.HabitID, ch.Quantity, ch.ID)
	}
	return nil
}

type CheckinDeleteCmd struct {
	ID string `arg:"" help:"Check-in ID to delete."`
}

func (c *CheckinDeleteCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.UID(); err != nil {
		return err
	}
	client, err := ctx.Client()
	if err != nil {
		return err
	}
	if err := client.DeleteCheckin(ctx.Context(), c.ID); err != nil {
		return fmt.Errorf("failed to delete check-in: %w", err)
	}
	ctx.Printf("Deleted check-in: %s\n", c.ID)
	return nil
}
