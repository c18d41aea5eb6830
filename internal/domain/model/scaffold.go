package model

import (
	"fmt"
	"strings"
	"time"

	"telegram-event-scheduler/internal/domain"

	"github.com/google/uuid"
)

// Scaffold is a recurring weekly template. The scheduler materializes it into
// concrete events once their start falls within LeadDays.
type Scaffold struct {
	ID         string // UUID
	Title      string
	Location   string
	Weekday    time.Weekday
	StartClock string // "HH:MM" wall clock in the group timezone
	Duration   time.Duration
	Capacity   int
	CostCents  int64
	LeadDays   int
	Active     bool
	CreatedBy  string
	CreatedAt  time.Time
}

func NewScaffold(id, title, location string, weekday time.Weekday, startClock string, duration time.Duration, capacity int, costCents int64, leadDays int, createdBy string) (*Scaffold, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if title == "" || createdBy == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, _, err := parseClock(startClock); err != nil {
		return nil, err
	}
	if capacity < 0 || costCents < 0 || duration <= 0 || leadDays <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Scaffold{
		ID:         id,
		Title:      title,
		Location:   location,
		Weekday:    weekday,
		StartClock: startClock,
		Duration:   duration,
		Capacity:   capacity,
		CostCents:  costCents,
		LeadDays:   leadDays,
		Active:     true,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now(),
	}, nil
}

func (s *Scaffold) IsZero() bool { return s == nil || s.ID == "" }

// NextOccurrence returns the first start at or after the given instant that
// matches the scaffold's weekday and wall clock in loc.
func (s *Scaffold) NextOccurrence(after time.Time, loc *time.Location) time.Time {
	hour, minute, _ := parseClock(s.StartClock)
	day := after.In(loc)
	for i := 0; i < 8; i++ {
		candidate := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
		if candidate.Weekday() == s.Weekday && !candidate.Before(after) {
			return candidate
		}
		day = day.AddDate(0, 0, 1)
	}
	// Unreachable: a weekday recurs within any 8-day window.
	return time.Time{}
}

func parseClock(clock string) (int, int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: %w", clock, domain.ErrInvalidArgument)
	}
	return t.Hour(), t.Minute(), nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekday accepts English day names and their usual abbreviations,
// case-insensitively.
func ParseWeekday(raw string) (time.Weekday, error) {
	if wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("invalid day of week: %s", strings.TrimSpace(raw))
}
