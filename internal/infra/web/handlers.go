package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/infra/metrics"
	"telegram-event-scheduler/internal/usecase"

	"github.com/go-chi/chi/v5"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginHandler exchanges the configured admin credentials for a session
// cookie. The signed token is also returned for Bearer-style clients.
func (s *Server) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.creds.Username == "" || s.auth == nil {
			s.log.Error().Msg("admin login is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.Username != s.creds.Username || req.Password != s.creds.Password {
			metrics.IncAdminCommand("login", "unauthorized")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		token, err := s.auth.Mint(w)
		if err != nil {
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
		metrics.IncAdminCommand("login", "authorized")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(struct {
			Token string `json:"token"`
		}{Token: token})
	}
}

func (s *Server) logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.auth != nil {
			s.auth.Clear(w)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// statsHandler serves the dashboard headline numbers.
func statsHandler(statsUC usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		summary, err := statsUC.Summary(ctx)
		if err != nil {
			http.Error(w, "Failed to get stats", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(summary)
	}
}

type eventJSON struct {
	ID         string    `json:"id"`
	ScaffoldID *string   `json:"scaffold_id,omitempty"`
	Title      string    `json:"title"`
	Location   string    `json:"location,omitempty"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	Capacity   int       `json:"capacity"`
	CostCents  int64     `json:"cost_cents"`
	Status     string    `json:"status"`
}

func toEventJSON(ev *model.Event) eventJSON {
	return eventJSON{
		ID:         ev.ID,
		ScaffoldID: ev.ScaffoldID,
		Title:      ev.Title,
		Location:   ev.Location,
		StartsAt:   ev.StartsAt,
		EndsAt:     ev.EndsAt(),
		Capacity:   ev.Capacity,
		CostCents:  ev.CostCents,
		Status:     string(ev.Status),
	}
}

// eventsListHandler lists scheduled events. An optional ?lookback=72h widens
// the window to include recently started ones.
func eventsListHandler(eventUC usecase.EventUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var (
			events []*model.Event
			err    error
		)
		if raw := r.URL.Query().Get("lookback"); raw != "" {
			lookback, perr := time.ParseDuration(raw)
			if perr != nil || lookback < 0 {
				http.Error(w, "Invalid lookback duration", http.StatusBadRequest)
				return
			}
			events, err = eventUC.UpcomingAndRecent(ctx, lookback)
		} else {
			events, err = eventUC.Upcoming(ctx)
		}
		if err != nil {
			http.Error(w, "Failed to list events", http.StatusInternalServerError)
			return
		}

		data := make([]eventJSON, 0, len(events))
		for _, ev := range events {
			data = append(data, toEventJSON(ev))
		}

		response := struct {
			Data []eventJSON `json:"data"`
		}{Data: data}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

type rosterEntryJSON struct {
	UserID   string    `json:"user_id"`
	Display  string    `json:"display"`
	JoinedAt time.Time `json:"joined_at"`
}

type splitLineJSON struct {
	UserID       string `json:"user_id"`
	Display      string `json:"display"`
	ShareCents   int64  `json:"share_cents"`
	PaidCents    int64  `json:"paid_cents"`
	BalanceCents int64  `json:"balance_cents"`
}

func displayName(u *model.User) string {
	if u == nil {
		return "unknown"
	}
	return u.DisplayName()
}

// eventDetailHandler serves one event with its roster and cost split.
func eventDetailHandler(attendanceUC usecase.AttendanceUseCase, paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Event ID is required", http.StatusBadRequest)
			return
		}

		roster, err := attendanceUC.Roster(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to get event", http.StatusInternalServerError)
			return
		}

		split, err := paymentUC.Split(ctx, id)
		if err != nil {
			http.Error(w, "Failed to compute split", http.StatusInternalServerError)
			return
		}

		joined := make([]rosterEntryJSON, 0, len(roster.Joined))
		for _, e := range roster.Joined {
			entry := rosterEntryJSON{Display: displayName(e.User), JoinedAt: e.JoinedAt}
			if e.User != nil {
				entry.UserID = e.User.ID
			}
			joined = append(joined, entry)
		}
		waitlist := make([]rosterEntryJSON, 0, len(roster.Waitlist))
		for _, e := range roster.Waitlist {
			entry := rosterEntryJSON{Display: displayName(e.User), JoinedAt: e.JoinedAt}
			if e.User != nil {
				entry.UserID = e.User.ID
			}
			waitlist = append(waitlist, entry)
		}

		lines := make([]splitLineJSON, 0, len(split.Report.Lines))
		for _, line := range split.Report.Lines {
			lines = append(lines, splitLineJSON{
				UserID:       line.UserID,
				Display:      displayName(split.Users[line.UserID]),
				ShareCents:   line.ShareCents,
				PaidCents:    line.PaidCents,
				BalanceCents: line.BalanceCents,
			})
		}

		response := struct {
			Event    eventJSON         `json:"event"`
			Joined   []rosterEntryJSON `json:"joined"`
			Waitlist []rosterEntryJSON `json:"waitlist"`
			Split    struct {
				TotalCents int64           `json:"total_cents"`
				PaidCents  int64           `json:"paid_cents"`
				Heads      int             `json:"heads"`
				Lines      []splitLineJSON `json:"lines"`
			} `json:"split"`
		}{
			Event:    toEventJSON(roster.Event),
			Joined:   joined,
			Waitlist: waitlist,
		}
		response.Split.TotalCents = split.Report.TotalCents
		response.Split.PaidCents = split.Report.PaidCents
		response.Split.Heads = split.Report.Heads
		response.Split.Lines = lines

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
