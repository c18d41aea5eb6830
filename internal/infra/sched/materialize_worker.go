package sched

import (
	"context"
	"time"

	"telegram-event-scheduler/internal/application"
	"telegram-event-scheduler/internal/usecase"

	"github.com/rs/zerolog"
)

// MaterializeWorker rolls recurring scaffolds forward into concrete events
// and announces each new one to the group.
type MaterializeWorker struct {
	scaffoldUC usecase.ScaffoldUseCase
	announce   *application.Announcer
	log        *zerolog.Logger
}

func NewMaterializeWorker(scaffoldUC usecase.ScaffoldUseCase, announce *application.Announcer, logger *zerolog.Logger) *MaterializeWorker {
	compLog := logger.With().Str("component", "MaterializeWorker").Logger()
	return &MaterializeWorker{
		scaffoldUC: scaffoldUC,
		announce:   announce,
		log:        &compLog,
	}
}

func (w *MaterializeWorker) Name() string { return "materialize" }

func (w *MaterializeWorker) Run(ctx context.Context) error {
	created, err := w.scaffoldUC.Materialize(ctx, time.Now())
	if err != nil {
		return err
	}
	if len(created) == 0 {
		return nil
	}
	announced := 0
	for _, ev := range created {
		// The announcer logs its own failures; one missed announcement
		// must not abort the rest.
		if err := w.announce.AnnounceEvent(ctx, ev); err == nil {
			announced++
		}
	}
	w.log.Info().Int("count", len(created)).Int("announced", announced).Msg("events materialized")
	return nil
}
