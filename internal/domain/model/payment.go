package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"telegram-event-scheduler/internal/domain"

	"github.com/google/uuid"
)

// Payment records money a member laid out for an event (court fee, shuttles,
// pizza). Amounts are integer cents to avoid float errors.
type Payment struct {
	ID          string // UUID
	EventID     string
	PayerID     string // UUID of the paying user
	AmountCents int64
	Note        string
	RecordedAt  time.Time
}

func NewPayment(id, eventID, payerID string, amountCents int64, note string) (*Payment, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if eventID == "" || payerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if amountCents <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Payment{
		ID:          id,
		EventID:     eventID,
		PayerID:     payerID,
		AmountCents: amountCents,
		Note:        note,
		RecordedAt:  time.Now(),
	}, nil
}

// ParseMoney converts "12", "12.5" or "12.50" into cents.
func ParseMoney(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, fmt.Errorf("invalid amount: %s", strings.TrimSpace(raw))
	}
	whole, frac, found := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("invalid amount: %s", strings.TrimSpace(raw))
	}
	cents := units * 100
	if found {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("invalid amount: %s", strings.TrimSpace(raw))
		}
		if len(frac) == 1 {
			frac += "0"
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount: %s", strings.TrimSpace(raw))
		}
		cents += f
	}
	return cents, nil
}

// FormatMoney renders cents as "12.50".
func FormatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
