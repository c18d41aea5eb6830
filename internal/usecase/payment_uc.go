// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"

	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/repository"
	"telegram-event-scheduler/internal/infra/logging"
	"telegram-event-scheduler/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// SplitView is the split report with display data resolved.
type SplitView struct {
	Event  *model.Event
	Report *model.SplitReport
	Users  map[string]*model.User
}

type PaymentUseCase interface {
	// Record stores money a roster member laid out for the event.
	Record(ctx context.Context, eventID, payerID string, amountCents int64, note string) (*model.Payment, error)
	List(ctx context.Context, eventID string) ([]*model.Payment, error)
	// Split computes the per-head share and each member's balance.
	Split(ctx context.Context, eventID string) (*SplitView, error)
	TotalRecorded(ctx context.Context) (int64, error)
}

type paymentUC struct {
	payments repository.PaymentRepository
	events   repository.EventRepository
	parts    repository.ParticipantRepository
	users    repository.UserRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewPaymentUseCase(payments repository.PaymentRepository, events repository.EventRepository, parts repository.ParticipantRepository, users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *paymentUC {
	return &paymentUC{payments: payments, events: events, parts: parts, users: users, tm: tm, log: logger}
}

func (u *paymentUC) Record(ctx context.Context, eventID, payerID string, amountCents int64, note string) (*model.Payment, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.Record")()

	var payment *model.Payment
	err := u.tm.WithTx(ctx, txDefault, func(ctx context.Context, tx repository.Tx) error {
		ev, err := u.events.FindByID(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if ev.Status == model.EventStatusCancelled {
			return domain.ErrEventCancelled
		}
		// Only roster members settle costs for an event.
		if _, err := u.parts.Find(ctx, tx, eventID, payerID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotJoined
			}
			return err
		}

		p, err := model.NewPayment("", eventID, payerID, amountCents, note)
		if err != nil {
			return err
		}
		if err := u.payments.Save(ctx, tx, p); err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncPaymentRecorded(amountCents)
	u.log.Info().Str("event_id", eventID).Str("payer_id", payerID).Int64("amount_cents", amountCents).Msg("payment recorded")
	return payment, nil
}

func (u *paymentUC) List(ctx context.Context, eventID string) ([]*model.Payment, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.List")()
	return u.payments.ListByEvent(ctx, repository.NoTX, eventID)
}

func (u *paymentUC) Split(ctx context.Context, eventID string) (*SplitView, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.Split")()

	ev, err := u.events.FindByID(ctx, repository.NoTX, eventID)
	if err != nil {
		return nil, err
	}
	roster, err := u.parts.ListByEvent(ctx, repository.NoTX, eventID)
	if err != nil {
		return nil, err
	}
	payments, err := u.payments.ListByEvent(ctx, repository.NoTX, eventID)
	if err != nil {
		return nil, err
	}

	report, err := model.ComputeSplit(ev, roster, payments)
	if err != nil {
		return nil, fmt.Errorf("compute split: %w", err)
	}

	ids := make([]string, 0, len(report.Lines))
	for _, line := range report.Lines {
		ids = append(ids, line.UserID)
	}
	users, err := u.users.ListByIDs(ctx, repository.NoTX, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.User, len(users))
	for _, usr := range users {
		byID[usr.ID] = usr
	}

	return &SplitView{Event: ev, Report: report, Users: byID}, nil
}

func (u *paymentUC) TotalRecorded(ctx context.Context) (int64, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.TotalRecorded")()
	return u.payments.SumAll(ctx, repository.NoTX)
}
