// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"telegram-event-scheduler/internal/application"
	"telegram-event-scheduler/internal/command"
	"telegram-event-scheduler/internal/config"
	"telegram-event-scheduler/internal/conversation"
	tele "telegram-event-scheduler/internal/infra/adapters/telegram"
	pg "telegram-event-scheduler/internal/infra/db/postgres"
	"telegram-event-scheduler/internal/infra/i18n"
	"telegram-event-scheduler/internal/infra/logging"
	"telegram-event-scheduler/internal/infra/metrics"
	red "telegram-event-scheduler/internal/infra/redis"
	"telegram-event-scheduler/internal/infra/sched"
	"telegram-event-scheduler/internal/infra/web"
	"telegram-event-scheduler/internal/infra/worker"
	"telegram-event-scheduler/internal/usecase"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// LoadConfig owns the -config and -dev flags.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	logger.Info().Str("version", version).Bool("dev", cfg.Runtime.Dev).Msg("starting event scheduler bot")

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	loc := cfg.Location()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	limiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)
	markers := red.NewReminderMarkerStore(redisClient, 48*time.Hour)

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	eventRepo := pg.NewEventRepo(pool)
	partRepo := pg.NewParticipantRepo(pool)
	payRepo := pg.NewPaymentRepo(pool)
	scaffoldRepo := pg.NewScaffoldRepoCacheDecorator(pg.NewScaffoldRepo(pool), redisClient)
	txm := pg.NewTxManager(pool)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, txm, logger)
	eventUC := usecase.NewEventUseCase(eventRepo, txm, logger)
	scaffoldUC := usecase.NewScaffoldUseCase(scaffoldRepo, eventRepo, txm, loc, logger)
	attendanceUC := usecase.NewAttendanceUseCase(eventRepo, partRepo, userRepo, txm, logger)
	paymentUC := usecase.NewPaymentUseCase(payRepo, eventRepo, partRepo, userRepo, txm, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, eventRepo, scaffoldRepo, payRepo, logger)

	// ---- Messages ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		logger.Fatal().Err(err).Msg("translator init failed")
	}

	// ---- Telegram gateway ----
	// The gateway is the outbound send port, so it exists before the
	// conversation engine and orchestrator that talk through it.
	bot, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, userUC, tr, limiter, *logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram connect failed")
	}

	render := application.NewRenderer(tr, loc)
	announcer := application.NewAnnouncer(bot, tr, render, cfg.Group.ChatID, *logger)

	// ---- Command surface ----
	engine := conversation.NewEngine(bot, conversation.Messages{
		Cancelled:     tr.T("conv_cancelled"),
		Expired:       tr.T("conv_expired"),
		InvalidChoice: tr.T("conv_invalid_choice"),
		CancelButton:  tr.T("button_cancel"),
	}, cfg.Conversation.IdleTimeout, *logger)

	deps := &command.Deps{
		Users:      userUC,
		Events:     eventUC,
		Scaffolds:  scaffoldUC,
		Attendance: attendanceUC,
		Payments:   paymentUC,
		Stats:      statsUC,
		Loc:        loc,
	}
	orch := command.NewOrchestrator(engine, bot, deps, command.OrchestratorMessages{
		Busy:     tr.T("busy_pending"),
		Internal: tr.T("internal_error"),
	}, *logger)

	registry := command.NewRegistry()
	catalog := application.NewCatalog(deps, bot, tr, render, announcer, cfg.Group.EventDuration, cfg.Group.LeadDays, *logger)
	if err := catalog.Register(registry); err != nil {
		logger.Fatal().Err(err).Msg("command registration failed")
	}

	if err := bot.AttachRouting(registry, orch, engine, catalog.Descriptions()); err != nil {
		logger.Fatal().Err(err).Msg("telegram routing failed")
	}
	if !strings.EqualFold(cfg.Bot.Mode, "polling") {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("unsupported bot mode, falling back to polling")
	}
	go func() {
		if err := bot.StartPolling(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Background jobs ----
	dmPool := worker.NewPool(cfg.Bot.Workers, *logger)
	dmPool.Start(ctx)
	defer dmPool.Stop()

	sch := sched.NewScheduler(locker, loc, *logger)
	if err := sch.Add(cfg.Scheduler.MaterializeCron, sched.NewMaterializeWorker(scaffoldUC, announcer, logger)); err != nil {
		logger.Fatal().Err(err).Msg("schedule materialize job")
	}
	reminder := sched.NewReminderWorker(cfg.Scheduler.ReminderLead, eventUC, attendanceUC, markers, announcer, bot, tr, render, dmPool, logger)
	if err := sch.Add(cfg.Scheduler.ReminderCron, reminder); err != nil {
		logger.Fatal().Err(err).Msg("schedule reminder job")
	}
	if err := sch.Add(cfg.Scheduler.FinishCron, sched.NewFinishWorker(eventUC, logger)); err != nil {
		logger.Fatal().Err(err).Msg("schedule finish job")
	}
	sch.Start()
	defer sch.Stop()

	// ---- Web ----
	if cfg.Web.Port > 0 {
		auth := web.NewAuthManager(cfg.Web.JWTSecret, !cfg.Runtime.Dev, cfg.Web.SessionTTL)
		creds := web.Credentials{Username: cfg.Web.Username, Password: cfg.Web.Password}
		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Web.Port),
			Handler: web.NewServer(statsUC, eventUC, attendanceUC, paymentUC, auth, creds, logger).Router(),
		}
		go func() {
			logger.Info().Int("port", cfg.Web.Port).Msg("web server listening")
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("web server failed")
			}
		}()
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			_ = httpSrv.Shutdown(shutCtx)
		}()
	}

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
}
