package sched

import (
	"context"

	"telegram-event-scheduler/internal/usecase"

	"github.com/rs/zerolog"
)

// FinishWorker closes the books on events whose end time has passed.
type FinishWorker struct {
	eventUC usecase.EventUseCase
	log     *zerolog.Logger
}

func NewFinishWorker(eventUC usecase.EventUseCase, logger *zerolog.Logger) *FinishWorker {
	compLog := logger.With().Str("component", "FinishWorker").Logger()
	return &FinishWorker{eventUC: eventUC, log: &compLog}
}

func (w *FinishWorker) Name() string { return "finish_past" }

func (w *FinishWorker) Run(ctx context.Context) error {
	n, err := w.eventUC.FinishPast(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		w.log.Info().Int("count", n).Msg("past events finished")
	}
	return nil
}
