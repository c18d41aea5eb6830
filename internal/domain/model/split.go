package model

import (
	"sort"

	"telegram-event-scheduler/internal/domain"
)

// SplitLine is one member's row in a cost split.
type SplitLine struct {
	UserID       string
	ShareCents   int64
	PaidCents    int64
	BalanceCents int64 // paid minus share; negative means the member owes
}

// SplitReport is the settled view of an event's costs: the per-head share of
// the total over everyone joined, plus what each member actually paid.
type SplitReport struct {
	EventID    string
	TotalCents int64
	PaidCents  int64
	Heads      int
	Lines      []SplitLine // join order
}

// ComputeSplit divides the event cost evenly across joined participants.
// Remainder cents after integer division go to the earliest joiners, one cent
// each, so the shares always sum to the exact total. Waitlisted members carry
// no share but their recorded payments still count.
func ComputeSplit(event *Event, roster []*Participant, payments []*Payment) (*SplitReport, error) {
	if event.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	joined := make([]*Participant, 0, len(roster))
	for _, p := range roster {
		if p.Status == ParticipantStatusJoined {
			joined = append(joined, p)
		}
	}
	sort.SliceStable(joined, func(i, j int) bool { return joined[i].JoinedAt.Before(joined[j].JoinedAt) })

	paidBy := make(map[string]int64, len(payments))
	var totalPaid int64
	for _, p := range payments {
		paidBy[p.PayerID] += p.AmountCents
		totalPaid += p.AmountCents
	}

	report := &SplitReport{
		EventID:    event.ID,
		TotalCents: event.CostCents,
		PaidCents:  totalPaid,
		Heads:      len(joined),
		Lines:      make([]SplitLine, 0, len(joined)),
	}
	if len(joined) == 0 {
		return report, nil
	}

	base := event.CostCents / int64(len(joined))
	extra := event.CostCents % int64(len(joined))
	for i, p := range joined {
		share := base
		if int64(i) < extra {
			share++
		}
		paid := paidBy[p.UserID]
		report.Lines = append(report.Lines, SplitLine{
			UserID:       p.UserID,
			ShareCents:   share,
			PaidCents:    paid,
			BalanceCents: paid - share,
		})
	}
	return report, nil
}
