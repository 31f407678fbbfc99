package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/schedule"
	"github.com/julianstephens/kairos/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictOverlappingSlots    ConflictType = "overlapping_slots"
	ConflictDuplicateHabitName  ConflictType = "duplicate_habit_name"
	ConflictInvalidDateTime     ConflictType = "invalid_datetime"
	ConflictInvalidReminderTime ConflictType = "invalid_reminder_time"
)

// Conflict represents a detected conflict in habits or schedules
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // Habit names or slot labels involved
	TimeRange   string   // Human-readable time range (if applicable)
	IDs         []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var report strings.Builder
	report.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&report, "- %s\n", conflict.Description)
	}
	return report.String()
}

// Validator validates habits, schedules and forms
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabits checks a user's habits for duplicate names and malformed
// reminder times. Inactive habits are ignored.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	nameCount := make(map[string][]string)
	var names []string
	for _, h := range habits {
		if !h.IsActive {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(h.Name))
		if key == "" {
			continue
		}
		if _, seen := nameCount[key]; !seen {
			names = append(names, key)
		}
		nameCount[key] = append(nameCount[key], h.ID)

		if h.ReminderTime != "" {
			if _, err := utils.ParseClock(h.ReminderTime); err != nil {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictInvalidReminderTime,
					Description: fmt.Sprintf("Habit \"%s\" has invalid reminder time: %s", h.Name, h.ReminderTime),
					Items:       []string{h.Name},
					IDs:         []string{h.ID},
				})
			}
		}
	}

	for _, name := range names {
		if ids := nameCount[name]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitName,
				Description: fmt.Sprintf("Duplicate habit name: \"%s\" (IDs: %v)", name, ids),
				Items:       []string{name},
				IDs:         ids,
			})
		}
	}

	return result
}

type span struct {
	slot       models.Schedule
	start, end time.Time
}

// ValidateSchedules checks the active slots of day for unparsable times and
// for overlaps. A slot without a duration or end time occupies a single
// instant and never overlaps.
func (v *Validator) ValidateSchedules(slots []models.Schedule, day time.Time) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	var spans []span
	for _, s := range slots {
		if !s.IsActive {
			continue
		}
		start, err := schedule.Resolve(s, day)
		if err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDateTime,
				Description: fmt.Sprintf("Slot \"%s\" has invalid time: %s", s.Label, s.Time),
				Items:       []string{s.Label},
				IDs:         []string{s.ID},
			})
			continue
		}
		end := start
		switch {
		case s.EndTime != "":
			endSlot := s
			endSlot.Time = s.EndTime
			if e, err := schedule.Resolve(endSlot, day); err == nil && e.After(start) {
				end = e
			}
		case s.Duration > 0:
			end = start.Add(time.Duration(s.Duration) * time.Minute)
		}
		spans = append(spans, span{slot: s, start: start, end: end})
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })

	// Two ranges overlap if: start1 < end2 AND start2 < end1
	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			a, b := spans[i], spans[j]
			if !b.start.Before(a.end) {
				break
			}
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictOverlappingSlots,
				Description: fmt.Sprintf("%s-%s \"%s\" overlaps \"%s\"",
					a.start.Format("15:04"), a.end.Format("15:04"), a.slot.Label, b.slot.Label),
				Items:     []string{a.slot.Label, b.slot.Label},
				TimeRange: fmt.Sprintf("%s-%s", b.start.Format("15:04"), minTime(a.end, b.end).Format("15:04")),
				IDs:       []string{a.slot.ID, b.slot.ID},
			})
		}
	}

	return result
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
