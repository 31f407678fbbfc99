package schedules

import (
	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/schedule"
	"github.com/julianstephens/kairos/internal/validation"
)

type ScheduleListCmd struct {
	All bool `short:"a" help:"List every slot instead of the upcoming ones."`
}

func (c *ScheduleListCmd) Run(ctx *cli.Context) error {
	slots, err := fetch(ctx)
	if err != nil {
		return err
	}

	now := ctx.Today()
	var shown []schedule.Slot
	if c.All {
		shown = schedule.Sorted(slots, now)
	} else {
		shown = schedule.Window(slots, now)
	}

	if len(shown) == 0 {
		ctx.Println("No schedule entries.")
		return nil
	}

	ctx.Println("Schedule:")
	loc := ctx.Config.Location()
	for _, s := range shown {
		label := s.Label
		if s.Category != "" {
			label += " (" + s.Category + ")"
		}
		ctx.Printf("  %s  %-40s [%s]\n", schedule.FormatStart(s, loc), label, s.ID)
	}

	printConflicts(ctx, slots)
	return nil
}

func fetch(ctx *cli.Context) ([]models.Schedule, error) {
	uid, err := ctx.UID()
	if err != nil {
		return nil, err
	}
	client, err := ctx.Client()
	if err != nil {
		return nil, err
	}
	return client.ListSchedulesByUser(ctx.Context(), uid)
}

func printConflicts(ctx *cli.Context, slots []models.Schedule) {
	result := validation.New().ValidateSchedules(slots, ctx.Today())
	if !result.HasConflicts() {
		return
	}
	ctx.Println()
	ctx.Printf("⚠ %s", result.FormatReport())
}
