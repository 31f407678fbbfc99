package utils

import (
	"strings"
	"time"

	"github.com/julianstephens/kairos/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// PathDate formats a day the way the backend expects it in URL paths (DD-MM-YYYY).
func PathDate(t time.Time) string {
	return t.Format(constants.PathDateFormat)
}

// ParseClock parses a time of day in HH:MM or HH:MM:SS format.
func ParseClock(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(constants.ClockFormat, s); err == nil {
		return t, nil
	}
	return time.Parse(constants.TimeFormat, s)
}

// OnDay places the clock time of tod on the calendar day of day, in day's location.
func OnDay(day, tod time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, day.Location())
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) in the specified timezone.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	// Return the date at midnight in the specified timezone
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// ValidateTimeFormat checks if the string is a valid HH:MM or HH:MM:SS time of day.
func ValidateTimeFormat(timeStr string) bool {
	_, err := ParseClock(timeStr)
	return err == nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
