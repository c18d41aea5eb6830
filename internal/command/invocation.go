package command

import "telegram-event-scheduler/internal/domain/model"

type Origin string

const (
	OriginCommand  Origin = "command"  // typed slash command
	OriginCallback Origin = "callback" // inline button press
)

// Invocation identifies who triggered a command and from where. It is built
// fresh from the triggering update; handlers receive it alongside the
// collected values.
type Invocation struct {
	Origin     Origin
	CallbackID string // callback query id, set iff Origin == OriginCallback
	ChatID     int64
	TelegramID int64
	User       *model.User // resolved domain user
	Args       string      // raw argument string as typed or carried in the button
}

// FromButton reports whether this run was triggered by an inline button.
func (i Invocation) FromButton() bool { return i.Origin == OriginCallback }
