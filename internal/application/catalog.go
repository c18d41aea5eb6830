package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"telegram-event-scheduler/internal/command"
	"telegram-event-scheduler/internal/conversation"
	"telegram-event-scheduler/internal/domain/ports/adapter"
	"telegram-event-scheduler/internal/infra/i18n"

	"github.com/rs/zerolog"
)

// Field names shared between parsers and step descriptors.
const (
	fieldTitle      = "title"
	fieldDate       = "date"
	fieldTime       = "time"
	fieldWeekday    = "weekday"
	fieldLocation   = "location"
	fieldCapacity   = "capacity"
	fieldCost       = "cost"
	fieldEventID    = "eventId"
	fieldScaffoldID = "scaffoldId"
	fieldAmount     = "amount"
	fieldNote       = "note"
)

// Catalog builds and registers every chat command: parser, step descriptors
// and handler per command. It is the single place where the group's command
// surface is defined.
type Catalog struct {
	deps   *command.Deps
	bot    adapter.TelegramBotAdapter
	tr     *i18n.Translator
	render *Renderer
	ann    *Announcer
	log    zerolog.Logger

	defaultDuration time.Duration
	defaultLeadDays int

	entries []catalogEntry
}

type catalogEntry struct {
	key  string
	def  command.Definition
	hand command.Handler
}

func NewCatalog(deps *command.Deps, bot adapter.TelegramBotAdapter, tr *i18n.Translator, render *Renderer, ann *Announcer, defaultDuration time.Duration, defaultLeadDays int, log zerolog.Logger) *Catalog {
	if defaultDuration <= 0 {
		defaultDuration = 2 * time.Hour
	}
	if defaultLeadDays <= 0 {
		defaultLeadDays = 7
	}
	c := &Catalog{
		deps:            deps,
		bot:             bot,
		tr:              tr,
		render:          render,
		ann:             ann,
		log:             log.With().Str("component", "catalog").Logger(),
		defaultDuration: defaultDuration,
		defaultLeadDays: defaultLeadDays,
	}
	c.entries = []catalogEntry{
		{"start", c.startDef(), c.handleStart},
		{"help", c.helpDef(), c.handleHelp},
		{"events", c.eventsDef(), c.handleEvents},
		{"newevent", c.newEventDef(), c.handleNewEvent},
		{"newweekly", c.newWeeklyDef(), c.handleNewWeekly},
		{"weeklies", c.weekliesDef(), c.handleWeeklies},
		{"stopweekly", c.stopWeeklyDef(), c.handleStopWeekly},
		{"join", c.joinDef(), c.handleJoin},
		{"leave", c.leaveDef(), c.handleLeave},
		{"roster", c.rosterDef(), c.handleRoster},
		{"cancelevent", c.cancelEventDef(), c.handleCancelEvent},
		{"paid", c.paidDef(), c.handlePaid},
		{"split", c.splitDef(), c.handleSplit},
		{"stats", c.statsDef(), c.handleStats},
	}
	return c
}

// Register adds every catalog entry to the registry. Fails fast on the first
// registration error so a broken catalog never goes live.
func (c *Catalog) Register(reg *command.Registry) error {
	for _, e := range c.entries {
		if err := reg.Register(e.key, e.def, e.hand); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
	}
	return nil
}

// Descriptions returns key to description pairs in catalog order, for the
// help text and the Telegram command menu.
func (c *Catalog) Descriptions() [][2]string {
	out := make([][2]string, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, [2]string{e.key, e.def.Description})
	}
	return out
}

func (c *Catalog) reply(ctx context.Context, inv command.Invocation, text string) error {
	return c.bot.SendMessage(ctx, inv.ChatID, text)
}

// parseNone accepts any argument string and reports the command complete.
func parseNone(_ context.Context, _ command.ParseRequest) (command.ParseOutcome, error) {
	return command.ParseOutcome{}, nil
}

type positionalField struct {
	name     string
	validate func(string) (string, error)
}

// parsePositional maps semicolon-separated arguments onto fields in order.
// A hole or short argument list leaves the affected fields missing; any
// present value that fails validation rejects the whole command with the
// validator's message.
func parsePositional(args string, fields []positionalField) (command.ParseOutcome, error) {
	out := command.ParseOutcome{Values: command.FieldValues{}}
	parts := splitArgs(args)
	for i, f := range fields {
		if i >= len(parts) || parts[i] == "" {
			out.Missing = append(out.Missing, f.name)
			continue
		}
		norm, err := f.validate(parts[i])
		if err != nil {
			return command.ParseOutcome{Reject: err.Error()}, nil
		}
		out.Values[f.name] = norm
	}
	return out, nil
}

func splitArgs(args string) []string {
	args = strings.TrimSpace(args)
	if args == "" {
		return nil
	}
	parts := strings.Split(args, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func firstField(args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// trimLabel keeps button labels inside Telegram's length comfort zone.
func trimLabel(s string) string {
	const max = 48
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func (c *Catalog) titleValidator(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%s", c.tr.T("err_empty_title"))
	}
	if len([]rune(s)) > 80 {
		return "", fmt.Errorf("%s", c.tr.T("err_long_title"))
	}
	return s, nil
}

// locationValidator accepts anything; a dash clears the location.
func locationValidator(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "-" {
		return "", nil
	}
	return s, nil
}

func (c *Catalog) textStep(field, promptKey string, validate func(string) (string, error)) command.StepSpec {
	return command.StepSpec{
		Field:    field,
		Prompt:   c.tr.T(promptKey),
		Kind:     conversation.KindText,
		Validate: validate,
	}
}

func (c *Catalog) choiceStep(field, promptKey string, source command.OptionSource) command.StepSpec {
	return command.StepSpec{
		Field:   field,
		Prompt:  c.tr.T(promptKey),
		Kind:    conversation.KindChoice,
		Options: source,
	}
}
