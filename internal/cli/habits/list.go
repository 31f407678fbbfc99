package habits

import (
	"strings"

	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/utils"
)

type ListCmd struct {
	All bool `short:"a" help:"Include inactive habits."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	uid, err := ctx.UID()
	if err != nil {
		return err
	}
	client, err := ctx.Client()
	if err != nil {
		return err
	}
	habits, err := client.ListHabitsByUser(ctx.Context(), uid)
	if err != nil {
		return err
	}

	shown := 0
	for _, h := range habits {
		if !h.IsActive && !c.All {
			continue
		}
		if shown == 0 {
			ctx.Println("Habits:")
		}
		shown++
		status := ""
		if !h.IsActive {
			status = " (inactive)"
		}
		ctx.Printf("  %-30s %-22s %-12s streak %d (best %d)%s  [%s]\n",
			h.Name, describeFrequency(h), amount(h.Quantity, h.Measure), h.Streak, h.LongestStreak, status, h.ID)
	}
	if shown == 0 {
		ctx.Println("No habits found.")
	}
	return nil
}

func describeFrequency(h models.Habit) string {
	if h.Frequency != models.FrequencyCustom {
		return string(h.Frequency)
	}
	names := make([]string, 0, len(h.CustomDays))
	for _, d := range h.CustomDays {
		// CustomDays are Sunday-based, day names are Monday-based
		names = append(names, utils.ShortDayName((d+6)%7))
	}
	return "custom " + strings.Join(names, "")
}
