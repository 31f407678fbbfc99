package utils

import (
	"testing"
	"time"
)

func TestDayIndex(t *testing.T) {
	// 2025-08-11 is a Monday
	monday := time.Date(2025, time.August, 11, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		if got := DayIndex(day); got != i {
			t.Errorf("DayIndex(%s) = %d, want %d", day.Weekday(), got, i)
		}
	}
}

func TestDayAndMonthNames(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"monday", DayName(0), "Lunes"},
		{"sunday", DayName(6), "Domingo"},
		{"out of range day", DayName(7), ""},
		{"negative day", DayName(-1), ""},
		{"short wednesday", ShortDayName(2), "X"},
		{"january", MonthName(0), "Enero"},
		{"december", MonthName(11), "Diciembre"},
		{"out of range month", MonthName(12), ""},
		{"short august", ShortMonthName(7), "Ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2025, time.February, 28},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}

	for _, tt := range tests {
		if got := DaysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysInMonth(%d, %s) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		wantStart string
		wantEnd   string
	}{
		{
			name:      "midweek",
			date:      time.Date(2025, time.August, 14, 9, 0, 0, 0, time.UTC), // Thursday
			wantStart: "2025-08-11",
			wantEnd:   "2025-08-17",
		},
		{
			name:      "sunday belongs to the previous monday",
			date:      time.Date(2025, time.August, 17, 9, 0, 0, 0, time.UTC),
			wantStart: "2025-08-11",
			wantEnd:   "2025-08-17",
		},
		{
			name:      "monday is its own start",
			date:      time.Date(2025, time.August, 11, 9, 0, 0, 0, time.UTC),
			wantStart: "2025-08-11",
			wantEnd:   "2025-08-17",
		},
		{
			name:      "crosses month boundary",
			date:      time.Date(2025, time.September, 2, 9, 0, 0, 0, time.UTC),
			wantStart: "2025-09-01",
			wantEnd:   "2025-09-07",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StartOfWeek(tt.date).Format("2006-01-02"); got != tt.wantStart {
				t.Errorf("StartOfWeek() = %s, want %s", got, tt.wantStart)
			}
			if got := EndOfWeek(tt.date).Format("2006-01-02"); got != tt.wantEnd {
				t.Errorf("EndOfWeek() = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestSundayWeek(t *testing.T) {
	days := SundayWeek(time.Date(2025, time.August, 14, 9, 0, 0, 0, time.UTC))
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[0].Weekday() != time.Sunday || days[0].Format("2006-01-02") != "2025-08-10" {
		t.Errorf("expected week to start on Sunday 2025-08-10, got %s", days[0].Format("Mon 2006-01-02"))
	}
	if days[6].Format("2006-01-02") != "2025-08-16" {
		t.Errorf("expected week to end on 2025-08-16, got %s", days[6].Format("2006-01-02"))
	}
}

func TestCreateTime(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		h, m int
		want string
	}{
		{
			name: "negative offset",
			now:  time.Date(2025, time.August, 16, 22, 10, 0, 0, time.FixedZone("CLT", -3*3600)),
			h:    9, m: 30,
			want: "2025-08-16T09:30:00-03:00",
		},
		{
			name: "half hour offset",
			now:  time.Date(2025, time.January, 2, 1, 0, 0, 0, time.FixedZone("IST", 5*3600+1800)),
			h:    18, m: 5,
			want: "2025-01-02T18:05:00+05:30",
		},
		{
			name: "utc",
			now:  time.Date(2025, time.January, 2, 1, 0, 0, 0, time.UTC),
			h:    0, m: 0,
			want: "2025-01-02T00:00:00+00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateTime(tt.now, tt.h, tt.m)
			if got != tt.want {
				t.Errorf("CreateTime() = %q, want %q", got, tt.want)
			}
			if _, err := time.Parse(time.RFC3339, got); err != nil {
				t.Errorf("CreateTime() produced invalid RFC3339: %v", err)
			}
		})
	}
}
