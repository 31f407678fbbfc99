package habits

import (
	"strings"

	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/utils"
)

type WeekCmd struct {
	Date string `help:"Any day of the week to show (YYYY-MM-DD). Defaults to today."`
}

func (c *WeekCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}
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
	checkins, err := client.ListCheckinsByUser(ctx.Context(), uid)
	if err != nil {
		return err
	}

	week := utils.SundayWeek(day)
	done := completedDays(checkins)

	var header strings.Builder
	header.WriteString("  " + strings.Repeat(" ", 30))
	for _, d := range week {
		header.WriteString(" " + d.Format("Mon")[:2])
	}
	ctx.Printf("Week of %s\n", week[0].Format(constants.DateFormat))
	ctx.Println(header.String())

	shown := 0
	for _, h := range habits {
		if !h.IsActive {
			continue
		}
		shown++
		var row strings.Builder
		row.WriteString("  " + padRight(h.Name, 30))
		for _, d := range week {
			mark := " · "
			if done[h.ID][d.Format(constants.DateFormat)] {
				mark = " ✓ "
			}
			row.WriteString(mark)
		}
		ctx.Println(strings.TrimRight(row.String(), " "))
	}
	if shown == 0 {
		ctx.Println("  No habits found.")
	}
	return nil
}

// completedDays returns, per habit, the days whose latest checkin is completed
func completedDays(checkins []models.HabitCheckin) map[string]map[string]bool {
	grouped := map[string]map[string][]models.HabitCheckin{}
	for _, c := range checkins {
		if grouped[c.HabitID] == nil {
			grouped[c.HabitID] = map[string][]models.HabitCheckin{}
		}
		grouped[c.HabitID][c.Date] = append(grouped[c.HabitID][c.Date], c)
	}

	out := map[string]map[string]bool{}
	for habitID, byDay := range grouped {
		out[habitID] = map[string]bool{}
		for date, cs := range byDay {
			h := models.HabitForHome{Checkins: cs}
			out[habitID][date] = h.Completed()
		}
	}
	return out
}

func padRight(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}
