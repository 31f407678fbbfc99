package validation

import (
	"reflect"
	"strings"
	"testing"

	"github.com/julianstephens/kairos/internal/models"
)

func TestValidateHabitForm(t *testing.T) {
	tests := []struct {
		name    string
		form    HabitForm
		wantErr string
		check   func(t *testing.T, h models.Habit)
	}{
		{
			name:    "missing name",
			form:    HabitForm{Name: "   "},
			wantErr: "Please enter a name for the habit",
		},
		{
			name:    "name too long",
			form:    HabitForm{Name: strings.Repeat("a", 51)},
			wantErr: "Habit name must be at most 50 characters",
		},
		{
			name:    "description too long",
			form:    HabitForm{Name: "Read", Description: strings.Repeat("d", 201)},
			wantErr: "Description must be at most 200 characters",
		},
		{
			name:    "custom without days",
			form:    HabitForm{Name: "Read", Frequency: models.FrequencyCustom},
			wantErr: "Please select at least one day for custom habits",
		},
		{
			name:    "custom with invalid day",
			form:    HabitForm{Name: "Read", Frequency: models.FrequencyCustom, CustomDays: []int{1, 7}},
			wantErr: "Invalid day 7",
		},
		{
			name:    "zero quantity",
			form:    HabitForm{Name: "Read", Quantity: "0"},
			wantErr: "Quantity must be a number greater than 0",
		},
		{
			name:    "non numeric quantity",
			form:    HabitForm{Name: "Read", Quantity: "two"},
			wantErr: "Quantity must be a number greater than 0",
		},
		{
			name:    "unknown frequency",
			form:    HabitForm{Name: "Read", Frequency: "yearly"},
			wantErr: "Unknown frequency",
		},
		{
			name: "defaults applied",
			form: HabitForm{Name: "  Read  ", Description: "  "},
			check: func(t *testing.T, h models.Habit) {
				want := models.Habit{UserID: "u1", Name: "Read", Frequency: models.FrequencyDaily, Quantity: 1, Measure: "vez", IsActive: true}
				if !reflect.DeepEqual(h, want) {
					t.Errorf("ValidateHabitForm() = %+v, want %+v", h, want)
				}
			},
		},
		{
			name: "custom days deduplicated, dropped for other frequencies",
			form: HabitForm{Name: "Gym", Frequency: models.FrequencyCustom, CustomDays: []int{1, 3, 1}, Quantity: "3", Measure: "sets"},
			check: func(t *testing.T, h models.Habit) {
				if !reflect.DeepEqual(h.CustomDays, []int{1, 3}) {
					t.Errorf("CustomDays = %v, want [1 3]", h.CustomDays)
				}
				if h.Quantity != 3 || h.Measure != "sets" {
					t.Errorf("Quantity/Measure = %d %q, want 3 sets", h.Quantity, h.Measure)
				}
			},
		},
		{
			name: "weekly ignores custom days",
			form: HabitForm{Name: "Call mom", Frequency: models.FrequencyWeekly, CustomDays: []int{0}},
			check: func(t *testing.T, h models.Habit) {
				if h.CustomDays != nil {
					t.Errorf("CustomDays = %v, want nil", h.CustomDays)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ValidateHabitForm("u1", tt.form)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("ValidateHabitForm() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateHabitForm() error = %v", err)
			}
			tt.check(t, h)
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name    string
		mode    AuthMode
		creds   Credentials
		wantErr string
	}{
		{"sign in missing email", SignIn, Credentials{Password: "secret"}, "Please fill in all fields"},
		{"sign in missing password", SignIn, Credentials{Email: "a@b.c"}, "Please fill in all fields"},
		{"sign in short password allowed", SignIn, Credentials{Email: "a@b.c", Password: "abc"}, ""},
		{"sign up missing confirmation", SignUp, Credentials{Email: "a@b.c", Password: "secret1"}, "Please confirm your password"},
		{"sign up mismatch", SignUp, Credentials{Email: "a@b.c", Password: "secret1", ConfirmPassword: "secret2"}, "Passwords do not match"},
		{"sign up short password", SignUp, Credentials{Email: "a@b.c", Password: "abc", ConfirmPassword: "abc"}, "Password must be at least 6 characters long"},
		{"sign up missing username", SignUp, Credentials{Email: "a@b.c", Password: "secret1", ConfirmPassword: "secret1", Username: " "}, "Please enter a username"},
		{"sign up ok", SignUp, Credentials{Email: "a@b.c", Password: "secret1", ConfirmPassword: "secret1", Username: "ana"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.mode, tt.creds)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateCredentials() error = %v, want nil", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("ValidateCredentials() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
