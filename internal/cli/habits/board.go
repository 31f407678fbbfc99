package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/kairos/internal/api"
	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/today"
)

// loadBoard fetches the signed-in user's habits for day
func loadBoard(ctx *cli.Context, day time.Time) (*today.Board, *api.Client, error) {
	uid, err := ctx.UID()
	if err != nil {
		return nil, nil, err
	}
	client, err := ctx.Client()
	if err != nil {
		return nil, nil, err
	}

	board := today.NewBoard()
	board.SetClock(ctx.Today)
	if err := board.Load(ctx.Context(), client, uid, day); err != nil {
		return nil, nil, err
	}
	return board, client, nil
}

// findHabit matches ref against habit ids first, then names ignoring case
func findHabit(habits []models.HabitForHome, ref string) (models.HabitForHome, error) {
	ref = strings.TrimSpace(ref)
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
	}

	var matches []models.HabitForHome
	for _, h := range habits {
		if strings.EqualFold(strings.TrimSpace(h.Name), ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.HabitForHome{}, fmt.Errorf("no habit named %q on this day", ref)
	case 1:
		return matches[0], nil
	}
	return models.HabitForHome{}, fmt.Errorf("%d habits are named %q, use the habit ID instead", len(matches), ref)
}

func amount(quantity int, measure string) string {
	if measure == "" {
		return fmt.Sprintf("%d", quantity)
	}
	return fmt.Sprintf("%d %s", quantity, measure)
}
