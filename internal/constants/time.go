package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// ClockFormat is the time-of-day format the backend uses for reminders (HH:MM:SS)
	ClockFormat = "15:04:05"

	// PathDateFormat is the day format the backend expects in URL paths (DD-MM-YYYY)
	PathDateFormat = "02-01-2006"

	// SlotFormat is how schedule slots are rendered (03:04 PM)
	SlotFormat = "03:04 PM"
)
