package application

import (
	"fmt"
	"strings"
	"time"

	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/infra/i18n"
	"telegram-event-scheduler/internal/usecase"
)

// Renderer turns domain objects into chat text. All strings go through the
// translator so the catalog stays language-neutral.
type Renderer struct {
	tr  *i18n.Translator
	loc *time.Location
}

func NewRenderer(tr *i18n.Translator, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{tr: tr, loc: loc}
}

func (r *Renderer) when(t time.Time) string {
	return t.In(r.loc).Format("Mon 02 Jan 15:04")
}

func (r *Renderer) userName(u *model.User) string {
	if u == nil {
		return r.tr.T("unknown_member")
	}
	return u.DisplayName()
}

// EventLine is the one-row form used in listings and choice labels.
func (r *Renderer) EventLine(ev *model.Event) string {
	line := fmt.Sprintf("%s — %s", r.when(ev.StartsAt), ev.Title)
	if ev.Location != "" {
		line += " @ " + ev.Location
	}
	return line
}

// EventCard is the full announcement block for one event.
func (r *Renderer) EventCard(ev *model.Event, joined, waitlisted int) string {
	var b strings.Builder
	b.WriteString(r.tr.T("event_card_title", ev.Title) + "\n")
	b.WriteString(r.tr.T("event_card_when", r.when(ev.StartsAt)) + "\n")
	if ev.Location != "" {
		b.WriteString(r.tr.T("event_card_where", ev.Location) + "\n")
	}
	if ev.Unlimited() {
		b.WriteString(r.tr.T("event_card_seats_unlimited", joined) + "\n")
	} else {
		b.WriteString(r.tr.T("event_card_seats", joined, ev.Capacity) + "\n")
		if waitlisted > 0 {
			b.WriteString(r.tr.T("event_card_waitlist", waitlisted) + "\n")
		}
	}
	if ev.CostCents > 0 {
		b.WriteString(r.tr.T("event_card_cost", model.FormatMoney(ev.CostCents)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) ScaffoldLine(sc *model.Scaffold) string {
	line := fmt.Sprintf("%s %s — %s", sc.Weekday.String(), sc.StartClock, sc.Title)
	if sc.Location != "" {
		line += " @ " + sc.Location
	}
	if !sc.Active {
		line += " " + r.tr.T("scaffold_stopped_suffix")
	}
	return line
}

// RosterText renders joined members and the waitlist in join order.
func (r *Renderer) RosterText(view *usecase.RosterView) string {
	var b strings.Builder
	b.WriteString(r.EventLine(view.Event) + "\n\n")
	if len(view.Joined) == 0 {
		b.WriteString(r.tr.T("roster_empty") + "\n")
	} else {
		b.WriteString(r.tr.T("roster_joined_header", len(view.Joined)) + "\n")
		for i, entry := range view.Joined {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.userName(entry.User)))
		}
	}
	if len(view.Waitlist) > 0 {
		b.WriteString("\n" + r.tr.T("roster_waitlist_header", len(view.Waitlist)) + "\n")
		for i, entry := range view.Waitlist {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.userName(entry.User)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// StatsText renders the admin summary block.
func (r *Renderer) StatsText(sum *usecase.StatsSummary) string {
	var b strings.Builder
	b.WriteString(r.tr.T("stats_header") + "\n")
	b.WriteString(r.tr.T("stats_members", sum.Users) + "\n")
	b.WriteString(r.tr.T("stats_upcoming", sum.UpcomingEvents) + "\n")
	b.WriteString(r.tr.T("stats_weeklies", sum.ActiveScaffolds) + "\n")
	b.WriteString(r.tr.T("stats_paid", model.FormatMoney(sum.TotalPaidCents)))
	return b.String()
}

// SplitText renders the cost split: per-head share and each member's balance.
func (r *Renderer) SplitText(view *usecase.SplitView) string {
	rep := view.Report
	var b strings.Builder
	b.WriteString(r.EventLine(view.Event) + "\n\n")
	b.WriteString(r.tr.T("split_total", model.FormatMoney(rep.TotalCents), rep.Heads) + "\n")
	b.WriteString(r.tr.T("split_paid", model.FormatMoney(rep.PaidCents)) + "\n")
	if rep.Heads == 0 {
		b.WriteString("\n" + r.tr.T("split_nobody"))
		return b.String()
	}
	b.WriteString("\n")
	for _, line := range rep.Lines {
		name := r.userName(view.Users[line.UserID])
		switch {
		case line.BalanceCents < 0:
			b.WriteString(r.tr.T("split_line_owes", name, model.FormatMoney(-line.BalanceCents)) + "\n")
		case line.BalanceCents > 0:
			b.WriteString(r.tr.T("split_line_gets", name, model.FormatMoney(line.BalanceCents)) + "\n")
		default:
			b.WriteString(r.tr.T("split_line_even", name) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
