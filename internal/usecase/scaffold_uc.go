package usecase

import (
	"context"
	"fmt"
	"time"

	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/repository"
	"telegram-event-scheduler/internal/infra/logging"
	"telegram-event-scheduler/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ScaffoldUseCase = (*scaffoldUC)(nil)

type CreateScaffoldInput struct {
	Title      string
	Location   string
	Weekday    time.Weekday
	StartClock string // "HH:MM" in the group timezone
	Duration   time.Duration
	Capacity   int
	CostCents  int64
	LeadDays   int
	CreatedBy  string
}

type ScaffoldUseCase interface {
	Create(ctx context.Context, in CreateScaffoldInput) (*model.Scaffold, error)
	Get(ctx context.Context, id string) (*model.Scaffold, error)
	ListActive(ctx context.Context) ([]*model.Scaffold, error)
	ListAll(ctx context.Context) ([]*model.Scaffold, error)
	// Deactivate stops future materialization. Existing events stay.
	Deactivate(ctx context.Context, id, requesterID string, requesterAdmin bool) (*model.Scaffold, error)
	// Materialize creates the concrete events for every active template whose
	// next occurrence falls within its lead window. Idempotent per occurrence.
	Materialize(ctx context.Context, now time.Time) ([]*model.Event, error)
}

type scaffoldUC struct {
	scaffolds repository.ScaffoldRepository
	events    repository.EventRepository
	tm        repository.TransactionManager
	loc       *time.Location
	log       *zerolog.Logger
}

func NewScaffoldUseCase(scaffolds repository.ScaffoldRepository, events repository.EventRepository, tm repository.TransactionManager, loc *time.Location, logger *zerolog.Logger) *scaffoldUC {
	if loc == nil {
		loc = time.UTC
	}
	return &scaffoldUC{scaffolds: scaffolds, events: events, tm: tm, loc: loc, log: logger}
}

func (s *scaffoldUC) Create(ctx context.Context, in CreateScaffoldInput) (*model.Scaffold, error) {
	defer logging.TraceDuration(s.log, "ScaffoldUC.Create")()

	sc, err := model.NewScaffold("", in.Title, in.Location, in.Weekday, in.StartClock, in.Duration, in.Capacity, in.CostCents, in.LeadDays, in.CreatedBy)
	if err != nil {
		return nil, err
	}
	if err := s.scaffolds.Save(ctx, repository.NoTX, sc); err != nil {
		return nil, fmt.Errorf("save scaffold: %w", err)
	}
	s.log.Info().Str("scaffold_id", sc.ID).Str("title", sc.Title).Stringer("weekday", sc.Weekday).Msg("scaffold created")
	return sc, nil
}

func (s *scaffoldUC) Get(ctx context.Context, id string) (*model.Scaffold, error) {
	defer logging.TraceDuration(s.log, "ScaffoldUC.Get")()
	return s.scaffolds.FindByID(ctx, repository.NoTX, id)
}

func (s *scaffoldUC) ListActive(ctx context.Context) ([]*model.Scaffold, error) {
	defer logging.TraceDuration(s.log, "ScaffoldUC.ListActive")()
	return s.scaffolds.ListActive(ctx, repository.NoTX)
}

func (s *scaffoldUC) ListAll(ctx context.Context) ([]*model.Scaffold, error) {
	defer logging.TraceDuration(s.log, "ScaffoldUC.ListAll")()
	return s.scaffolds.ListAll(ctx, repository.NoTX)
}

func (s *scaffoldUC) Deactivate(ctx context.Context, id, requesterID string, requesterAdmin bool) (*model.Scaffold, error) {
	defer logging.TraceDuration(s.log, "ScaffoldUC.Deactivate")()

	var out *model.Scaffold
	err := s.tm.WithTx(ctx, txDefault, func(ctx context.Context, tx repository.Tx) error {
		sc, err := s.scaffolds.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !sc.Active {
			return domain.ErrScaffoldInactive
		}
		if !requesterAdmin && sc.CreatedBy != requesterID {
			return domain.ErrNotAllowed
		}
		sc.Active = false
		if err := s.scaffolds.Save(ctx, tx, sc); err != nil {
			return err
		}
		out = sc
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("scaffold_id", id).Str("by", requesterID).Msg("scaffold deactivated")
	return out, nil
}

func (s *scaffoldUC) Materialize(ctx context.Context, now time.Time) ([]*model.Event, error) {
	defer logging.TraceDuration(s.log, "ScaffoldUC.Materialize")()

	active, err := s.scaffolds.ListActive(ctx, repository.NoTX)
	if err != nil {
		return nil, fmt.Errorf("list active scaffolds: %w", err)
	}

	var created []*model.Event
	for _, sc := range active {
		next := sc.NextOccurrence(now, s.loc)
		if next.IsZero() || next.After(now.AddDate(0, 0, sc.LeadDays)) {
			continue
		}

		// Check-then-insert per scaffold inside one transaction so two
		// overlapping scheduler runs cannot double-create an occurrence.
		err := s.tm.WithTx(ctx, txSerializable, func(ctx context.Context, tx repository.Tx) error {
			exists, err := s.events.ExistsForOccurrence(ctx, tx, sc.ID, next)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
			ev, err := model.NewEvent("", sc.Title, sc.Location, next, sc.Duration, sc.Capacity, sc.CostCents, sc.CreatedBy)
			if err != nil {
				return err
			}
			scaffoldID := sc.ID
			ev.ScaffoldID = &scaffoldID
			if err := s.events.Save(ctx, tx, ev); err != nil {
				return err
			}
			created = append(created, ev)
			return nil
		})
		if err != nil {
			s.log.Error().Err(err).Str("scaffold_id", sc.ID).Msg("materialization failed for scaffold")
			continue
		}
	}

	if len(created) > 0 {
		metrics.AddEventsMaterialized(len(created))
		for range created {
			metrics.IncEventCreated("scaffold")
		}
	}
	return created, nil
}
