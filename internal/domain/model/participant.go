package model

import (
	"time"

	"telegram-event-scheduler/internal/domain"
)

type ParticipantStatus string

const (
	ParticipantStatusJoined     ParticipantStatus = "joined"
	ParticipantStatusWaitlisted ParticipantStatus = "waitlisted"
)

// Participant links a user to an event. JoinedAt orders the roster and the
// waitlist; promotion always takes the earliest waitlisted entry.
type Participant struct {
	EventID  string
	UserID   string
	Status   ParticipantStatus
	JoinedAt time.Time
}

func NewParticipant(eventID, userID string, status ParticipantStatus) (*Participant, error) {
	if eventID == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if status != ParticipantStatusJoined && status != ParticipantStatusWaitlisted {
		return nil, domain.ErrInvalidArgument
	}
	return &Participant{
		EventID:  eventID,
		UserID:   userID,
		Status:   status,
		JoinedAt: time.Now(),
	}, nil
}
