package usecase

import (
	"context"
	"time"

	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsSummary is the admin dashboard headline block.
type StatsSummary struct {
	Users           int       `json:"users"`
	UpcomingEvents  int       `json:"upcoming_events"`
	ActiveScaffolds int       `json:"active_scaffolds"`
	TotalPaidCents  int64     `json:"total_paid_cents"`
	GeneratedAt     time.Time `json:"generated_at"`
}

type StatsUseCase interface {
	Summary(ctx context.Context) (*StatsSummary, error)
	InactiveUsers(ctx context.Context, olderThan time.Time) (int, error)
}

type statsUC struct {
	users     repository.UserRepository
	events    repository.EventRepository
	scaffolds repository.ScaffoldRepository
	payments  repository.PaymentRepository

	log *zerolog.Logger
}

func NewStatsUseCase(users repository.UserRepository, events repository.EventRepository, scaffolds repository.ScaffoldRepository, payments repository.PaymentRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{users: users, events: events, scaffolds: scaffolds, payments: payments, log: logger}
}

func (s *statsUC) Summary(ctx context.Context) (*StatsSummary, error) {
	users, err := s.users.CountUsers(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.events.List(ctx, repository.NoTX, repository.EventFilter{
		From:   time.Now(),
		Status: model.EventStatusScheduled,
	})
	if err != nil {
		return nil, err
	}
	scaffolds, err := s.scaffolds.ListActive(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	paid, err := s.payments.SumAll(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	return &StatsSummary{
		Users:           users,
		UpcomingEvents:  len(upcoming),
		ActiveScaffolds: len(scaffolds),
		TotalPaidCents:  paid,
		GeneratedAt:     time.Now(),
	}, nil
}

func (s *statsUC) InactiveUsers(ctx context.Context, olderThan time.Time) (int, error) {
	return s.users.CountInactiveUsers(ctx, repository.NoTX, olderThan)
}
