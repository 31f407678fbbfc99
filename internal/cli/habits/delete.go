package habits

import (
	"fmt"

	"github.com/julianstephens/kairos/internal/cli"
)

type DeleteCmd struct {
	ID string `arg:"" help:"Habit ID to delete."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.UID(); err != nil {
		return err
	}
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// Check if the habit exists first
	habit, err := client.GetHabit(ctx.Context(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to find habit with ID %s: %w", c.ID, err)
	}
	if err := client.DeleteHabit(ctx.Context(), c.ID); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	ctx.Printf("Deleted habit: %s (ID: %s)\n", habit.Name, c.ID)
	return nil
}
