package application

import (
	"context"
	"strings"

	"telegram-event-scheduler/internal/command"
	"telegram-event-scheduler/internal/domain/ports/adapter"
)

func (c *Catalog) startDef() command.Definition {
	return command.Definition{
		Description: c.tr.T("desc_start"),
		Parse:       parseNone,
	}
}

func (c *Catalog) handleStart(ctx context.Context, inv command.Invocation, _ command.FieldValues) error {
	text := c.tr.T("welcome", inv.User.DisplayName())
	rows := [][]adapter.InlineButton{
		{
			{Text: c.tr.T("button_events"), Data: "cmd:events"},
			{Text: c.tr.T("button_join"), Data: "cmd:join"},
		},
		{
			{Text: c.tr.T("button_weeklies"), Data: "cmd:weeklies"},
			{Text: c.tr.T("button_help"), Data: "cmd:help"},
		},
	}
	return c.bot.SendButtons(ctx, inv.ChatID, text, rows)
}

func (c *Catalog) helpDef() command.Definition {
	return command.Definition{
		Description: c.tr.T("desc_help"),
		Parse:       parseNone,
	}
}

func (c *Catalog) handleHelp(ctx context.Context, inv command.Invocation, _ command.FieldValues) error {
	var b strings.Builder
	b.WriteString(c.tr.T("help_header") + "\n")
	for _, e := range c.entries {
		b.WriteString("/" + e.key + " — " + e.def.Description + "\n")
	}
	b.WriteString("/cancel — " + c.tr.T("desc_cancel") + "\n")
	if rules := strings.TrimSpace(c.tr.Rules()); rules != "" {
		b.WriteString("\n" + rules)
	}
	return c.reply(ctx, inv, strings.TrimRight(b.String(), "\n"))
}

func (c *Catalog) statsDef() command.Definition {
	return command.Definition{
		Description: c.tr.T("desc_stats"),
		Parse:       parseNone,
	}
}

func (c *Catalog) handleStats(ctx context.Context, inv command.Invocation, _ command.FieldValues) error {
	if !inv.User.IsAdmin {
		return c.reply(ctx, inv, c.tr.T("err_admin_only"))
	}
	sum, err := c.deps.Stats.Summary(ctx)
	if err != nil {
		return err
	}
	return c.reply(ctx, inv, c.render.StatsText(sum))
}
