package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotAllowed      = errors.New("operation not allowed")

	// Command and conversation errors
	ErrDuplicateCommand      = errors.New("command key already registered")
	ErrConversationActive    = errors.New("another conversation is already active")
	ErrConversationCancelled = errors.New("conversation cancelled")
	ErrConversationExpired   = errors.New("conversation expired")

	// Event lifecycle errors
	ErrEventFull        = errors.New("event is full")
	ErrEventCancelled   = errors.New("event is cancelled")
	ErrEventClosed      = errors.New("event is closed")
	ErrAlreadyJoined    = errors.New("already joined this event")
	ErrNotJoined        = errors.New("not joined this event")
	ErrScaffoldInactive = errors.New("recurring template is inactive")

	// Infrastructure errors
	ErrLockHeld = errors.New("lock is held by another owner")
)
