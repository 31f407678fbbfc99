// Package schedule picks the upcoming slots shown on the schedule card.
package schedule

import (
	"sort"
	"time"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/logger"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/utils"
)

// Slot is a schedule entry with its resolved start time
type Slot struct {
	models.Schedule
	Start time.Time
}

// Resolve parses the start time of s. RFC3339 timestamps are taken as is;
// bare HH:MM[:SS] times are placed on the day of now, in now's location.
func Resolve(s models.Schedule, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s.Time); err == nil {
		return t, nil
	}
	tod, err := utils.ParseClock(s.Time)
	if err != nil {
		return time.Time{}, err
	}
	return utils.OnDay(now, tod), nil
}

// Sorted resolves and orders slots by start time. Slots whose time cannot be
// parsed are dropped.
func Sorted(slots []models.Schedule, now time.Time) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		start, err := Resolve(s, now)
		if err != nil {
			logger.Warn("Skipping schedule slot with invalid time", "id", s.ID, "time", s.Time, "error", err)
			continue
		}
		out = append(out, Slot{Schedule: s, Start: start})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// Upcoming returns up to n slots starting at the first one strictly after
// now. When no slot is in the future, or fewer than n remain while more than
// n exist, the last n slots are returned instead.
func Upcoming(slots []models.Schedule, now time.Time, n int) []Slot {
	sorted := Sorted(slots, now)
	if n <= 0 {
		return nil
	}

	active := -1
	for i, s := range sorted {
		if s.Start.After(now) {
			active = i
			break
		}
	}

	var from, to int
	if active == -1 {
		from = len(sorted) - n
		to = len(sorted)
	} else {
		from = active
		to = active + n
	}
	if from < 0 {
		from = 0
	}
	if to > len(sorted) {
		to = len(sorted)
	}
	next := sorted[from:to]

	if len(next) < n && len(sorted) > n {
		return sorted[len(sorted)-n:]
	}
	return next
}

// Window is Upcoming with the dashboard card size
func Window(slots []models.Schedule, now time.Time) []Slot {
	return Upcoming(slots, now, constants.CardDisplayLimit)
}

// FormatStart renders a slot start as 12-hour clock time, e.g. "09:30 AM"
func FormatStart(s Slot, loc *time.Location) string {
	t := s.Start
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(constants.SlotFormat)
}
