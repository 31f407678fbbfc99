package models

// Schedule is a time slot on the user's agenda
type Schedule struct {
	ID       string `json:"id,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Time     string `json:"time"` // RFC3339 timestamp or HH:MM[:SS]
	Label    string `json:"label"`
	IsActive bool   `json:"isActive"`
	EndTime  string `json:"endTime,omitempty"`
	Duration int    `json:"duration,omitempty"` // minutes
	Category string `json:"category,omitempty"`
	Color    string `json:"color,omitempty"`
}
