package model

import (
	"strings"
	"time"

	"telegram-event-scheduler/internal/domain"

	"github.com/google/uuid"
)

// User is a domain entity representing a Telegram user known to the group.
type User struct {
	ID           string
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	RegisteredAt time.Time
	LastActiveAt time.Time
	IsAdmin      bool
}

func NewUser(id string, tgID int64, username, firstName, lastName string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	u := &User{
		ID:           id,
		TelegramID:   tgID,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		RegisteredAt: now,
		LastActiveAt: now,
		IsAdmin:      false,
	}
	return u, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.LastActiveAt = time.Now() }

// DisplayName prefers @username, then the first/last name pair.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return "user"
	}
	return name
}
