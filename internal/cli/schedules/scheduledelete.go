package schedules

import (
	"fmt"

	"github.com/julianstephens/kairos/internal/cli"
)

type ScheduleDeleteCmd struct {
	ID string `arg:"" help:"Schedule entry ID to delete."`
}

func (c *ScheduleDeleteCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.UID(); err != nil {
		return err
	}
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	slot, err := client.GetSchedule(ctx.Context(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to find schedule entry with ID %s: %w", c.ID, err)
	}
	if err := client.DeleteSchedule(ctx.Context(), c.ID); err != nil {
		return fmt.Errorf("failed to delete schedule entry: %w", err)
	}

	ctx.Printf("Deleted schedule entry: %s (ID: %s)\n", slot.Label, c.ID)
	return nil
}
