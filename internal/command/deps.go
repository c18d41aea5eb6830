package command

import (
	"time"

	"telegram-event-scheduler/internal/usecase"
)

// Deps is the dependency container parsers and option sources draw from.
// It is assembled once during wiring and treated as read-only afterwards.
type Deps struct {
	Users      usecase.UserUseCase
	Events     usecase.EventUseCase
	Scaffolds  usecase.ScaffoldUseCase
	Attendance usecase.AttendanceUseCase
	Payments   usecase.PaymentUseCase
	Stats      usecase.StatsUseCase

	// Loc is the group timezone used for date and clock parsing.
	Loc *time.Location
}
