package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-event-scheduler/internal/command"
	"telegram-event-scheduler/internal/config"
	"telegram-event-scheduler/internal/conversation"
	"telegram-event-scheduler/internal/domain/ports/adapter"
	"telegram-event-scheduler/internal/infra/i18n"
	"telegram-event-scheduler/internal/infra/logging"
	red "telegram-event-scheduler/internal/infra/redis"
	"telegram-event-scheduler/internal/usecase"
)

// Callback data for buttons that trigger a registered command, the inline
// counterpart of typing "/<key> <args>".
const callbackCommandPrefix = "cmd:"

// Per-user fixed-window limits, per minute.
const (
	messageRateLimit  = 20
	callbackRateLimit = 30
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter polls Telegram for updates and routes them: slash
// commands into the orchestrator, free text and option picks into the
// conversation engine. It also implements the outbound send port.
type RealTelegramBotAdapter struct {
	bot      *tgbotapi.BotAPI
	cfg      *config.BotConfig
	users    usecase.UserUseCase
	registry *command.Registry
	orch     *command.Orchestrator
	engine   *conversation.Engine
	tr       *i18n.Translator
	limiter  *red.RateLimiter
	log      zerolog.Logger

	// menu holds key/description pairs for the Telegram command menu,
	// captured from the catalog at wiring time.
	menu [][2]string

	adminIDsMap   map[int64]struct{}
	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	users usecase.UserUseCase,
	tr *i18n.Translator,
	limiter *red.RateLimiter,
	log zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if users == nil {
		return nil, errors.New("user usecase is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	adminMap := map[int64]struct{}{}
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		users:         users,
		tr:            tr,
		limiter:       limiter,
		log:           log.With().Str("component", "telegram").Logger(),
		adminIDsMap:   adminMap,
		updateWorkers: workers,
	}, nil
}

// AttachRouting wires the command surface into the gateway. The engine and
// orchestrator send through the gateway, so they are built after it; routing
// arrives in this second phase and StartPolling refuses to run without it.
func (r *RealTelegramBotAdapter) AttachRouting(
	registry *command.Registry,
	orch *command.Orchestrator,
	engine *conversation.Engine,
	menu [][2]string,
) error {
	if registry == nil {
		return errors.New("command registry is nil")
	}
	if orch == nil {
		return errors.New("orchestrator is nil")
	}
	if engine == nil {
		return errors.New("conversation engine is nil")
	}
	r.registry = registry
	r.orch = orch
	r.engine = engine
	r.menu = menu
	return nil
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.registry == nil || r.orch == nil || r.engine == nil {
		return errors.New("routing not attached")
	}

	if err := r.SetMenuCommands(ctx); err != nil {
		r.log.Warn().Err(err).Msg("failed to set command menu")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update failed")
					}
				}
			}
		}(i)
	}

	r.log.Info().Int("workers", r.updateWorkers).Msg("polling for updates")

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ctx = logging.WithTraceID(ctx, uuid.NewString())

	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}
	return r.handleMessage(ctx, update.Message)
}

func (r *RealTelegramBotAdapter) isAdmin(tgID int64) bool {
	_, ok := r.adminIDsMap[tgID]
	return ok
}

// SetMenuCommands publishes the command menu Telegram shows behind the "/"
// button. /cancel is appended manually: it bypasses the registry.
func (r *RealTelegramBotAdapter) SetMenuCommands(ctx context.Context) error {
	cmds := make([]tgbotapi.BotCommand, 0, len(r.menu)+1)
	for _, d := range r.menu {
		cmds = append(cmds, tgbotapi.BotCommand{Command: d[0], Description: d[1]})
	}
	cmds = append(cmds, tgbotapi.BotCommand{Command: "cancel", Description: r.tr.T("desc_cancel")})
	_, err := r.bot.Request(tgbotapi.NewSetMyCommands(cmds...))
	return err
}

// SendMessage implements the outbound port. telegramID is the chat to write
// to: a user id for DMs, the group id for announcements.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, telegramID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(telegramID, text)
	_, err := r.bot.Send(msg)
	return err
}

// SendButtons sends a message with inline buttons.
// - If btn.URL is set, the button opens a link
// - Else if btn.Data is set, the button sends callback data
// - Else a safe fallback uses btn.Text as callback data
func (r *RealTelegramBotAdapter) SendButtons(
	ctx context.Context,
	telegramID int64,
	text string,
	rows [][]adapter.InlineButton,
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			var kb tgbotapi.InlineKeyboardButton
			switch {
			case btn.URL != "":
				kb = tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL)
			case btn.Data != "":
				kb = tgbotapi.NewInlineKeyboardButtonData(label, btn.Data)
			default:
				kb = tgbotapi.NewInlineKeyboardButtonData(label, label)
			}
			btns = append(btns, kb)
		}
		kbRows = append(kbRows, btns)
	}

	msg := tgbotapi.NewMessage(telegramID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	_, err := r.bot.Send(msg)
	return err
}
