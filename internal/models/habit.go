package models

import "time"

// HabitFrequency describes how often a habit is expected
type HabitFrequency string

const (
	FrequencyDaily   HabitFrequency = "daily"
	FrequencyWeekly  HabitFrequency = "weekly"
	FrequencyMonthly HabitFrequency = "monthly"
	FrequencyCustom  HabitFrequency = "custom"
)

// Valid reports whether f is one of the known frequencies
func (f HabitFrequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyCustom:
		return true
	}
	return false
}

// Habit represents a recurring practice to track
type Habit struct {
	ID            string         `json:"id,omitempty"`
	UserID        string         `json:"userId"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Frequency     HabitFrequency `json:"frequency"`
	Quantity      int            `json:"quantity"`
	Measure       string         `json:"measure"`
	Streak        int            `json:"streak"`
	LongestStreak int            `json:"longestStreak"`
	IsActive      bool           `json:"isActive"`
	CreatedAt     string         `json:"createdAt,omitempty"` // RFC3339 timestamp
	UpdatedAt     string         `json:"updatedAt,omitempty"` // RFC3339 timestamp
	CustomDays    []int          `json:"customDays,omitempty"`   // 0-6, Sunday=0
	ReminderTime  string         `json:"reminderTime,omitempty"` // HH:MM:SS format
	Category      string         `json:"category,omitempty"`
	Color         string         `json:"color,omitempty"`
	Icon          string         `json:"icon,omitempty"`
}

// HabitCheckin is a single completion record for a habit on a day
type HabitCheckin struct {
	ID        string `json:"id,omitempty"`
	HabitID   string `json:"habitId"`
	Date      string `json:"date"` // YYYY-MM-DD format
	Completed bool   `json:"completed"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"` // RFC3339 timestamp
	UpdatedAt string `json:"updatedAt,omitempty"` // RFC3339 timestamp
}

// Created returns the parsed creation time, or the zero time if it is missing or malformed.
func (c HabitCheckin) Created() time.Time {
	return ParseTimestamp(c.CreatedAt)
}

// HabitForHome is a habit together with the checkins of one day
type HabitForHome struct {
	Habit
	Checkins []HabitCheckin `json:"checkins"`
}

// LatestCheckin returns the checkin with the greatest creation time.
// When two checkins share a creation time the later one in the slice wins.
func (h HabitForHome) LatestCheckin() (HabitCheckin, bool) {
	if len(h.Checkins) == 0 {
		return HabitCheckin{}, false
	}
	latest := h.Checkins[0]
	for _, c := range h.Checkins[1:] {
		if !c.Created().Before(latest.Created()) {
			latest = c
		}
	}
	return latest, true
}

// Completed reports whether the latest checkin marks the habit as done
func (h HabitForHome) Completed() bool {
	latest, ok := h.LatestCheckin()
	return ok && latest.Completed
}

// ParseTimestamp parses an RFC3339 timestamp, returning the zero time on failure.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
