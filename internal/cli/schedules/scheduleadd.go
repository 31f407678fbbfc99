package schedules

import (
	"fmt"
	"strings"

	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/utils"
)

type ScheduleAddCmd struct {
	Time     string `arg:"" help:"Start time (HH:MM)."`
	Label    string `arg:"" help:"What the slot is for."`
	Date     string `help:"Day of the slot (YYYY-MM-DD). Defaults to today."`
	Duration int    `short:"d" help:"Duration in minutes."`
	End      string `short:"e" help:"End time (HH:MM). Overrides --duration."`
	Category string `short:"c" help:"Category."`
}

func (c *ScheduleAddCmd) Validate() error {
	if !utils.ValidateTimeFormat(c.Time) {
		return fmt.Errorf("invalid start time %q, expected HH:MM", c.Time)
	}
	if c.End != "" && !utils.ValidateTimeFormat(c.End) {
		return fmt.Errorf("invalid end time %q, expected HH:MM", c.End)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	if strings.TrimSpace(c.Label) == "" {
		return fmt.Errorf("label cannot be empty")
	}
	return nil
}

func (c *ScheduleAddCmd) Run(ctx *cli.Context) error {
	if err := c.Validate(); err != nil {
		return err
	}
	uid, err := ctx.UID()
	if err != nil {
		return err
	}
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}

	start, _ := utils.ParseClock(c.Time)
	slot := models.Schedule{
		UserID:   uid,
		Time:     utils.CreateTime(day, start.Hour(), start.Minute()),
		Label:    strings.TrimSpace(c.Label),
		IsActive: true,
		Duration: c.Duration,
		Category: c.Category,
	}
	if c.End != "" {
		end, _ := utils.ParseClock(c.End)
		slot.EndTime = utils.CreateTime(day, end.Hour(), end.Minute())
		slot.Duration = 0
	}

	client, err := ctx.Client()
	if err != nil {
		return err
	}
	created, err := client.CreateSchedule(ctx.Context(), slot)
	if err != nil {
		return err
	}
	ctx.Printf("Added schedule entry: %s at %s on %s (ID: %s)\n",
		created.Label, start.Format(constants.TimeFormat), day.Format(constants.DateFormat), created.ID)

	slots, err := client.ListSchedulesByUser(ctx.Context(), uid)
	if err != nil {
		return nil
	}
	printConflicts(ctx, slots)
	return nil
}
