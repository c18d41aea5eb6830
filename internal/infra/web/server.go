package web

import (
	"net/http"
	"time"

	"telegram-event-scheduler/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Credentials is the single admin login the dashboard accepts. Empty
// username disables login entirely.
type Credentials struct {
	Username string
	Password string
}

// Server is the ops surface: health, prometheus metrics and a small
// JSON API for the group dashboard.
type Server struct {
	stats      usecase.StatsUseCase
	events     usecase.EventUseCase
	attendance usecase.AttendanceUseCase
	payments   usecase.PaymentUseCase
	auth       *AuthManager
	creds      Credentials
	log        *zerolog.Logger
}

func NewServer(
	stats usecase.StatsUseCase,
	events usecase.EventUseCase,
	attendance usecase.AttendanceUseCase,
	payments usecase.PaymentUseCase,
	auth *AuthManager,
	creds Credentials,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		stats:      stats,
		events:     events,
		attendance: attendance,
		payments:   payments,
		auth:       auth,
		creds:      creds,
		log:        logger,
	}
}

// Router builds the full route tree. Health and metrics stay open; the
// /api/v1 data endpoints sit behind the session check.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID(s.log))
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))
	r.Use(Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/login", s.loginHandler())
		api.Post("/logout", s.logoutHandler())

		api.Group(func(priv chi.Router) {
			priv.Use(s.requireSession)
			priv.Get("/stats", statsHandler(s.stats))
			priv.Get("/events", eventsListHandler(s.events))
			priv.Get("/events/{id}", eventDetailHandler(s.attendance, s.payments))
		})
	})
	return r
}

// requireSession rejects requests without a valid admin session token.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			s.log.Error().Msg("admin session auth is not configured")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
