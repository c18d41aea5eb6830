package usecase

import (
	"context"
	"errors"
	"time"

	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/repository"
	"telegram-event-scheduler/internal/infra/logging"
	"telegram-event-scheduler/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ AttendanceUseCase = (*attendanceUC)(nil)

type RosterEntry struct {
	User     *model.User
	JoinedAt time.Time
}

// RosterView is the resolved attendance picture for one event.
type RosterView struct {
	Event    *model.Event
	Joined   []RosterEntry
	Waitlist []RosterEntry
}

type AttendanceUseCase interface {
	// Join adds the user to the event roster, spilling to the waitlist once
	// capacity is reached. The returned participant's status tells which.
	Join(ctx context.Context, eventID, userID string) (*model.Participant, error)
	// Leave removes the user. When a joined seat frees up, the earliest
	// waitlisted member is promoted and returned, else nil.
	Leave(ctx context.Context, eventID, userID string) (*model.Participant, error)
	Roster(ctx context.Context, eventID string) (*RosterView, error)
	JoinedEventIDs(ctx context.Context, userID string) ([]string, error)
}

type attendanceUC struct {
	events repository.EventRepository
	parts  repository.ParticipantRepository
	users  repository.UserRepository
	tm     repository.TransactionManager
	log    *zerolog.Logger
}

func NewAttendanceUseCase(events repository.EventRepository, parts repository.ParticipantRepository, users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *attendanceUC {
	return &attendanceUC{events: events, parts: parts, users: users, tm: tm, log: logger}
}

func (a *attendanceUC) Join(ctx context.Context, eventID, userID string) (*model.Participant, error) {
	defer logging.TraceDuration(a.log, "AttendanceUC.Join")()

	var joined *model.Participant
	err := a.tm.WithTx(ctx, txSerializable, func(ctx context.Context, tx repository.Tx) error {
		ev, err := a.events.FindByID(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if ev.Status == model.EventStatusCancelled {
			return domain.ErrEventCancelled
		}
		if !ev.Joinable(time.Now()) {
			return domain.ErrEventClosed
		}

		if _, err := a.parts.Find(ctx, tx, eventID, userID); err == nil {
			return domain.ErrAlreadyJoined
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		status := model.ParticipantStatusJoined
		if !ev.Unlimited() {
			n, err := a.parts.CountByStatus(ctx, tx, eventID, model.ParticipantStatusJoined)
			if err != nil {
				return err
			}
			if n >= ev.Capacity {
				status = model.ParticipantStatusWaitlisted
			}
		}

		p, err := model.NewParticipant(eventID, userID, status)
		if err != nil {
			return err
		}
		if err := a.parts.Save(ctx, tx, p); err != nil {
			return err
		}
		joined = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncJoin(string(joined.Status))
	a.log.Info().Str("event_id", eventID).Str("user_id", userID).Str("status", string(joined.Status)).Msg("user joined event")
	return joined, nil
}

func (a *attendanceUC) Leave(ctx context.Context, eventID, userID string) (*model.Participant, error) {
	defer logging.TraceDuration(a.log, "AttendanceUC.Leave")()

	var promoted *model.Participant
	err := a.tm.WithTx(ctx, txSerializable, func(ctx context.Context, tx repository.Tx) error {
		ev, err := a.events.FindByID(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if !ev.Joinable(time.Now()) {
			return domain.ErrEventClosed
		}

		cur, err := a.parts.Find(ctx, tx, eventID, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotJoined
			}
			return err
		}
		if err := a.parts.Delete(ctx, tx, eventID, userID); err != nil {
			return err
		}

		// A freed seat goes to the head of the waitlist.
		if cur.Status == model.ParticipantStatusJoined {
			next, err := a.parts.FirstWaitlisted(ctx, tx, eventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil
				}
				return err
			}
			next.Status = model.ParticipantStatusJoined
			if err := a.parts.Save(ctx, tx, next); err != nil {
				return err
			}
			promoted = next
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncLeave()
	if promoted != nil {
		metrics.IncWaitlistPromotion()
		a.log.Info().Str("event_id", eventID).Str("promoted_user_id", promoted.UserID).Msg("waitlisted user promoted")
	}
	return promoted, nil
}

func (a *attendanceUC) Roster(ctx context.Context, eventID string) (*RosterView, error) {
	defer logging.TraceDuration(a.log, "AttendanceUC.Roster")()

	ev, err := a.events.FindByID(ctx, repository.NoTX, eventID)
	if err != nil {
		return nil, err
	}
	parts, err := a.parts.ListByEvent(ctx, repository.NoTX, eventID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, p.UserID)
	}
	users, err := a.users.ListByIDs(ctx, repository.NoTX, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	view := &RosterView{Event: ev}
	for _, p := range parts {
		entry := RosterEntry{User: byID[p.UserID], JoinedAt: p.JoinedAt}
		if p.Status == model.ParticipantStatusJoined {
			view.Joined = append(view.Joined, entry)
		} else {
			view.Waitlist = append(view.Waitlist, entry)
		}
	}
	return view, nil
}

func (a *attendanceUC) JoinedEventIDs(ctx context.Context, userID string) ([]string, error) {
	defer logging.TraceDuration(a.log, "AttendanceUC.JoinedEventIDs")()
	return a.parts.ListEventIDsByUser(ctx, repository.NoTX, userID)
}
