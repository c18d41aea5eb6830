package application

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"telegram-event-scheduler/internal/domain/model"
)

// Validators normalize raw input and return user-facing errors. Parsers and
// interactive steps share them, so typed and collected values end up in the
// same normalized form: dates as 2006-01-02, clocks as 15:04, weekdays as
// their English name, capacity as an integer string, money as cents.

const dateLayout = "2006-01-02"

func dateValidator(loc *time.Location) func(string) (string, error) {
	return func(raw string) (string, error) {
		s := strings.TrimSpace(raw)
		now := time.Now().In(loc)
		switch strings.ToLower(s) {
		case "today":
			return now.Format(dateLayout), nil
		case "tomorrow":
			return now.AddDate(0, 0, 1).Format(dateLayout), nil
		}
		for _, layout := range []string{dateLayout, "02.01.2006", "2.1.2006"} {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t.Format(dateLayout), nil
			}
		}
		return "", fmt.Errorf("invalid date: %s", s)
	}
}

func clockValidator(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", fmt.Errorf("invalid time: %s", s)
	}
	return t.Format("15:04"), nil
}

func weekdayValidator(raw string) (string, error) {
	wd, err := model.ParseWeekday(raw)
	if err != nil {
		return "", err
	}
	return wd.String(), nil
}

func capacityValidator(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return "", fmt.Errorf("invalid capacity: %s", s)
	}
	return strconv.Itoa(n), nil
}

// moneyValidator normalizes to integer cents. Zero stays valid here because
// event costs may be free.
func moneyValidator(raw string) (string, error) {
	cents, err := model.ParseMoney(raw)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(cents, 10), nil
}

// amountValidator is moneyValidator for recorded payments, where zero makes
// no sense.
func amountValidator(raw string) (string, error) {
	norm, err := moneyValidator(raw)
	if err != nil {
		return "", err
	}
	if norm == "0" {
		return "", fmt.Errorf("invalid amount: %s", strings.TrimSpace(raw))
	}
	return norm, nil
}

// startOf combines normalized date and clock values in the group timezone.
func startOf(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout+" 15:04", date+" "+clock, loc)
}
