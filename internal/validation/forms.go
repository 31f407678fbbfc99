package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/models"
)

// HabitForm is the raw input of the add-habit form
type HabitForm struct {
	Name        string
	Description string
	Frequency   models.HabitFrequency
	CustomDays  []int
	Quantity    string
	Measure     string
	Category    string
}

// ValidateHabitForm checks the form and returns the habit to create for uid.
// Only the first problem found is reported.
func ValidateHabitForm(uid string, f HabitForm) (models.Habit, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return models.Habit{}, errors.New("Please enter a name for the habit")
	}
	if utf8.RuneCountInString(name) > constants.HabitNameMaxLen {
		return models.Habit{}, fmt.Errorf("Habit name must be at most %d characters", constants.HabitNameMaxLen)
	}
	description := strings.TrimSpace(f.Description)
	if utf8.RuneCountInString(description) > constants.HabitDescriptionMaxLen {
		return models.Habit{}, fmt.Errorf("Description must be at most %d characters", constants.HabitDescriptionMaxLen)
	}

	freq := f.Frequency
	if freq == "" {
		freq = models.FrequencyDaily
	}
	if !freq.Valid() {
		return models.Habit{}, fmt.Errorf("Unknown frequency %q", f.Frequency)
	}

	var days []int
	if freq == models.FrequencyCustom {
		if len(f.CustomDays) == 0 {
			return models.Habit{}, errors.New("Please select at least one day for custom habits")
		}
		seen := map[int]bool{}
		for _, d := range f.CustomDays {
			if d < 0 || d > 6 {
				return models.Habit{}, fmt.Errorf("Invalid day %d, days go from 0 (Sunday) to 6 (Saturday)", d)
			}
			if !seen[d] {
				seen[d] = true
				days = append(days, d)
			}
		}
	}

	qtyText := strings.TrimSpace(f.Quantity)
	if qtyText == "" {
		qtyText = "1"
	}
	qty, err := strconv.Atoi(qtyText)
	if err != nil || qty < 1 {
		return models.Habit{}, errors.New("Quantity must be a number greater than 0")
	}

	measure := strings.TrimSpace(f.Measure)
	if measure == "" {
		measure = constants.DefaultMeasure
	}

	return models.Habit{
		UserID:      uid,
		Name:        name,
		Description: description,
		Frequency:   freq,
		Quantity:    qty,
		Measure:     measure,
		IsActive:    true,
		CustomDays:  days,
		Category:    strings.TrimSpace(f.Category),
	}, nil
}

// AuthMode selects which credential rules apply
type AuthMode int

const (
	SignIn AuthMode = iota
	SignUp
)

// Credentials is the raw input of the login form
type Credentials struct {
	Email           string
	Password        string
	ConfirmPassword string
	Username        string
}

// ValidateCredentials applies the login form rules in order and reports the
// first failure.
func ValidateCredentials(mode AuthMode, c Credentials) error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return errors.New("Please fill in all fields")
	}
	if mode != SignUp {
		return nil
	}
	if c.ConfirmPassword == "" {
		return errors.New("Please confirm your password")
	}
	if c.Password != c.ConfirmPassword {
		return errors.New("Passwords do not match")
	}
	if len(c.Password) < constants.MinPasswordLen {
		return fmt.Errorf("Password must be at least %d characters long", constants.MinPasswordLen)
	}
	if strings.TrimSpace(c.Username) == "" {
		return errors.New("Please enter a username")
	}
	return nil
}
