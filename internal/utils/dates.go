package utils

import (
	"fmt"
	"time"
)

var (
	dayNames       = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}
	shortDayNames  = []string{"L", "M", "X", "J", "V", "S", "D"}
	monthNames     = []string{"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio", "Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre"}
	shortMonthName = []string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}
)

// DayIndex returns the Monday-based index of t's weekday (0 is Monday, 6 is Sunday).
func DayIndex(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 6
	}
	return wd - 1
}

// DayName returns the Spanish day name for a Monday-based index, or "" when out of range.
func DayName(index int) string {
	return lookup(dayNames, index)
}

// ShortDayName returns the one-letter Spanish day name (L, M, X, J, V, S, D).
func ShortDayName(index int) string {
	return lookup(shortDayNames, index)
}

// MonthName returns the Spanish month name for a zero-based month index.
func MonthName(index int) string {
	return lookup(monthNames, index)
}

// ShortMonthName returns the three-letter Spanish month name (Ene, Feb, ...).
func ShortMonthName(index int) string {
	return lookup(shortMonthName, index)
}

func lookup(names []string, index int) string {
	if index < 0 || index >= len(names) {
		return ""
	}
	return names[index]
}

// DaysInMonth returns the number of days in month (1-12) of year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfWeek returns the Monday of t's week, keeping t's clock time.
func StartOfWeek(t time.Time) time.Time {
	return t.AddDate(0, 0, -DayIndex(t))
}

// EndOfWeek returns the Sunday of t's week, keeping t's clock time.
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 6)
}

// SundayWeek returns the seven days of t's week starting on Sunday, at midnight.
func SundayWeek(t time.Time) []time.Time {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -int(t.Weekday()))
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// CreateTime returns an RFC3339 timestamp for hours:minutes on the day of now,
// carrying now's UTC offset (e.g. 2025-08-16T09:30:00-03:00).
func CreateTime(now time.Time, hours, minutes int) string {
	_, offset := now.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:00%s%02d:%02d",
		now.Year(), int(now.Month()), now.Day(), hours, minutes,
		sign, offset/3600, (offset%3600)/60)
}
