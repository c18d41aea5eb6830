package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/ports/adapter"
	"telegram-event-scheduler/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Messages are the engine's own user-facing strings, localized by the caller
// at construction time.
type Messages struct {
	Cancelled     string
	Expired       string
	InvalidChoice string
	CancelButton  string
}

type outcome struct {
	value string
	err   error
}

// pending is one suspended collection. The outcome channel is buffered so the
// resolving side never blocks on a collector that already gave up.
type pending struct {
	step   Step
	chatID int64
	opts   []Option // snapshot of the last rendered choice list, guarded by Engine.mu
	result chan outcome
	timer  *time.Timer
}

// Engine tracks at most one suspended collection per user. Collect parks the
// calling goroutine until matching input, cancellation, expiry or context
// shutdown resolves it; HandleInput and Cancel run on whatever goroutine the
// update dispatcher uses.
type Engine struct {
	bot  adapter.TelegramBotAdapter
	msgs Messages
	idle time.Duration
	log  zerolog.Logger

	mu      sync.Mutex
	pending map[int64]*pending
}

// NewEngine builds an engine. idleTimeout bounds how long an unanswered
// prompt stays live; zero disables expiry.
func NewEngine(bot adapter.TelegramBotAdapter, msgs Messages, idleTimeout time.Duration, log zerolog.Logger) *Engine {
	e := &Engine{
		bot:     bot,
		msgs:    msgs,
		idle:    idleTimeout,
		log:     log.With().Str("component", "conversation").Logger(),
		pending: make(map[int64]*pending),
	}
	metrics.SetConversationActiveFn(e.Count)
	return e
}

// IsActive reports whether the user has a suspended collection.
func (e *Engine) IsActive(userID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.pending[userID]
	return ok
}

// Count returns the number of suspended collections.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Collect prompts the user for one field and blocks until the answer is in.
// It returns the validated value, or domain.ErrConversationCancelled /
// domain.ErrConversationExpired when the collection ended without one, or
// domain.ErrConversationActive when the user already has a prompt open.
func (e *Engine) Collect(ctx context.Context, userID, chatID int64, step Step) (string, error) {
	p := &pending{
		step:   step,
		chatID: chatID,
		result: make(chan outcome, 1),
	}

	e.mu.Lock()
	if _, exists := e.pending[userID]; exists {
		e.mu.Unlock()
		return "", domain.ErrConversationActive
	}
	e.pending[userID] = p
	e.mu.Unlock()

	if err := e.renderPrompt(ctx, userID, p, ""); err != nil {
		e.take(userID, p)
		return "", fmt.Errorf("render prompt for %q: %w", step.Field, err)
	}

	if e.idle > 0 {
		p.timer = time.AfterFunc(e.idle, func() { e.expire(userID, p) })
	}
	metrics.IncConversationPrompt(step.Field)
	e.log.Debug().Int64("tg_id", userID).Str("field", step.Field).Msg("collection suspended")

	select {
	case out := <-p.result:
		return out.value, out.err
	case <-ctx.Done():
		e.take(userID, p)
		return "", ctx.Err()
	}
}

// HandleInput feeds raw user input into the suspended collection, if any.
// The boolean reports whether the input was consumed; false means the user
// has nothing pending and the text should be treated as ordinary chatter.
func (e *Engine) HandleInput(ctx context.Context, userID int64, raw string) (bool, error) {
	e.mu.Lock()
	p, ok := e.pending[userID]
	var opts []Option
	if ok {
		opts = p.opts
	}
	e.mu.Unlock()
	if !ok {
		return false, nil
	}

	raw = strings.TrimSpace(raw)

	if p.step.Kind == KindChoice {
		value, matched := matchOption(opts, raw)
		if !matched {
			metrics.IncConversationReprompt(p.step.Field)
			return true, e.renderPrompt(ctx, userID, p, e.msgs.InvalidChoice)
		}
		e.resolve(userID, p, outcome{value: value})
		return true, nil
	}

	value := raw
	if p.step.Validate != nil {
		normalized, err := p.step.Validate(raw)
		if err != nil {
			metrics.IncConversationReprompt(p.step.Field)
			return true, e.renderPrompt(ctx, userID, p, err.Error())
		}
		value = normalized
	}
	e.resolve(userID, p, outcome{value: value})
	return true, nil
}

// Cancel aborts the user's suspended collection. Without one it is a silent
// no-op; with one it sends exactly one acknowledgement.
func (e *Engine) Cancel(ctx context.Context, userID int64) error {
	e.mu.Lock()
	p, ok := e.pending[userID]
	e.mu.Unlock()
	if !ok {
		return nil
	}
	if !e.take(userID, p) {
		return nil
	}
	metrics.IncConversationEnd("cancelled")
	e.log.Debug().Int64("tg_id", userID).Str("field", p.step.Field).Msg("collection cancelled")
	p.result <- outcome{err: domain.ErrConversationCancelled}
	return e.bot.SendMessage(ctx, p.chatID, e.msgs.Cancelled)
}

// renderPrompt sends (or re-sends) the prompt for the pending step. prefix
// carries the validation error on a re-prompt. Choice options are loaded
// fresh on every call.
func (e *Engine) renderPrompt(ctx context.Context, userID int64, p *pending, prefix string) error {
	text := p.step.Prompt
	if prefix != "" {
		text = prefix + "\n\n" + text
	}

	cancelRow := []adapter.InlineButton{{Text: e.msgs.CancelButton, Data: CallbackCancel}}

	if p.step.Kind == KindChoice && p.step.Options != nil {
		opts, err := p.step.Options(ctx)
		if err != nil {
			return fmt.Errorf("load options: %w", err)
		}
		e.mu.Lock()
		if cur, ok := e.pending[userID]; ok && cur == p {
			p.opts = opts
		}
		e.mu.Unlock()

		rows := make([][]adapter.InlineButton, 0, len(opts)+1)
		for _, opt := range opts {
			rows = append(rows, []adapter.InlineButton{{Text: opt.Label, Data: CallbackOptionPrefix + opt.Value}})
		}
		rows = append(rows, cancelRow)
		return e.bot.SendButtons(ctx, p.chatID, text, rows)
	}

	return e.bot.SendButtons(ctx, p.chatID, text, [][]adapter.InlineButton{cancelRow})
}

// resolve delivers the outcome if this pending entry is still registered.
// Exactly one of input, cancel and expiry wins the removal.
func (e *Engine) resolve(userID int64, p *pending, out outcome) {
	if !e.take(userID, p) {
		return
	}
	if out.err == nil {
		metrics.IncConversationEnd("resolved")
		e.log.Debug().Int64("tg_id", userID).Str("field", p.step.Field).Msg("collection resolved")
	}
	p.result <- out
}

func (e *Engine) expire(userID int64, p *pending) {
	if !e.take(userID, p) {
		return
	}
	metrics.IncConversationEnd("expired")
	e.log.Debug().Int64("tg_id", userID).Str("field", p.step.Field).Msg("collection expired")
	p.result <- outcome{err: domain.ErrConversationExpired}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.bot.SendMessage(ctx, p.chatID, e.msgs.Expired); err != nil {
		e.log.Warn().Err(err).Int64("tg_id", userID).Msg("failed to send expiry notice")
	}
}

// take atomically removes the pending entry when it is still the current one
// for the user. The caller that wins may resolve the outcome channel.
func (e *Engine) take(userID int64, p *pending) bool {
	e.mu.Lock()
	cur, ok := e.pending[userID]
	if !ok || cur != p {
		e.mu.Unlock()
		return false
	}
	delete(e.pending, userID)
	e.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	return true
}

func matchOption(opts []Option, raw string) (string, bool) {
	for _, opt := range opts {
		if raw == opt.Value || strings.EqualFold(raw, opt.Label) {
			return opt.Value, true
		}
	}
	return "", false
}
