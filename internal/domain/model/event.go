package model

import (
	"crypto/rand"
	"time"

	"telegram-event-scheduler/internal/domain"

	"github.com/oklog/ulid/v2"
)

type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusFinished  EventStatus = "finished"
)

// Event is a single concrete session the group can join. Events created from
// a recurring template carry its ScaffoldID; one-off events leave it nil.
type Event struct {
	ID         string // ULID: lexicographic order follows creation time
	ScaffoldID *string
	Title      string
	Location   string
	StartsAt   time.Time
	Duration   time.Duration
	Capacity   int
	CostCents  int64
	Status     EventStatus
	CreatedBy  string // UUID of creating user
	CreatedAt  time.Time
}

// NewEventID mints a time-ordered event identifier.
func NewEventID(at time.Time) string {
	return ulid.MustNew(ulid.Timestamp(at), rand.Reader).String()
}

func NewEvent(id, title, location string, startsAt time.Time, duration time.Duration, capacity int, costCents int64, createdBy string) (*Event, error) {
	now := time.Now()
	if id == "" {
		id = NewEventID(now)
	}
	if title == "" || createdBy == "" {
		return nil, domain.ErrInvalidArgument
	}
	if capacity < 0 || costCents < 0 || duration < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Event{
		ID:        id,
		Title:     title,
		Location:  location,
		StartsAt:  startsAt,
		Duration:  duration,
		Capacity:  capacity,
		CostCents: costCents,
		Status:    EventStatusScheduled,
		CreatedBy: createdBy,
		CreatedAt: now,
	}, nil
}

func (e *Event) IsZero() bool { return e == nil || e.ID == "" }

// Unlimited reports whether the event has no seat cap.
func (e *Event) Unlimited() bool { return e.Capacity == 0 }

func (e *Event) EndsAt() time.Time { return e.StartsAt.Add(e.Duration) }

// Joinable reports whether members may still join or leave.
func (e *Event) Joinable(now time.Time) bool {
	return e.Status == EventStatusScheduled && now.Before(e.StartsAt)
}
