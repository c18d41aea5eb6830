//go:build !integration

package web

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"telegram-event-scheduler/internal/usecase"

	"github.com/rs/zerolog"
)

// newTestLogger creates a silent logger for tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

func newTestServer() *Server {
	userRepo := &mockUserRepo{}
	eventRepo := &mockEventRepo{}
	scaffoldRepo := &mockScaffoldRepo{}
	partRepo := &mockParticipantRepo{}
	paymentRepo := &mockPaymentRepo{}
	tm := &mockTxManager{}
	logger := newTestLogger()

	statsUC := usecase.NewStatsUseCase(userRepo, eventRepo, scaffoldRepo, paymentRepo, logger)
	eventUC := usecase.NewEventUseCase(eventRepo, tm, logger)
	attendanceUC := usecase.NewAttendanceUseCase(eventRepo, partRepo, userRepo, tm, logger)
	paymentUC := usecase.NewPaymentUseCase(paymentRepo, eventRepo, partRepo, userRepo, tm, logger)

	auth := NewAuthManager("test-admin-jwt-secret-please-change", false, time.Minute)
	creds := Credentials{Username: "admin", Password: "correct-horse"}
	return NewServer(statsUC, eventUC, attendanceUC, paymentUC, auth, creds, logger)
}

func TestRequireSession(t *testing.T) {
	// A simple handler that we expect to be called on successful authentication.
	dummyHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	s := newTestServer()
	protected := s.requireSession(dummyHandler)

	t.Run("no credentials -> 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("wrong scheme -> 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.Header.Set("Authorization", "Basic aaa.bbb.ccc")
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("bearer but invalid jwt -> 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.Header.Set("Authorization", "Bearer invalid.jwt.token")
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("valid bearer jwt -> 200", func(t *testing.T) {
		dummy := httptest.NewRecorder()
		token, err := s.auth.Mint(dummy)
		if err != nil || token == "" {
			t.Fatalf("failed to mint test token: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("valid session cookie -> 200", func(t *testing.T) {
		dummy := httptest.NewRecorder()
		token, err := s.auth.Mint(dummy)
		if err != nil || token == "" {
			t.Fatalf("failed to mint test token: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("expired token -> 401", func(t *testing.T) {
		shortAuth := NewAuthManager("test-admin-jwt-secret-please-change", false, -time.Minute)
		dummy := httptest.NewRecorder()
		token, err := shortAuth.Mint(dummy)
		if err != nil || token == "" {
			t.Fatalf("failed to mint test token: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
}

func TestAdminLoginLogoutFlow(t *testing.T) {
	s := newTestServer()
	router := s.Router()

	var session *http.Cookie

	t.Run("healthz is open", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("login with wrong password -> 401", func(t *testing.T) {
		body := bytes.NewBufferString(`{"username":"admin","password":"wrong"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", body)
		req.Header.Set("content-type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("login with bad body -> 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewBufferString("not-json"))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("login with correct credentials -> 200 + cookie set", func(t *testing.T) {
		body := bytes.NewBufferString(`{"username":"admin","password":"correct-horse"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", body)
		req.Header.Set("content-type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d, body=%s", rr.Code, rr.Body.String())
		}
		for _, c := range rr.Result().Cookies() {
			if c.Name == sessionCookie {
				session = c
				break
			}
		}
		if session == nil || session.Value == "" {
			t.Fatal("expected admin_session cookie")
		}
	})

	t.Run("protected route with cookie -> 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.AddCookie(session)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("protected route without cookie -> 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("logout -> 204", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/logout", nil)
		req.AddCookie(session) // optional
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rr.Code)
		}
	})
}

func TestLoginNotConfigured(t *testing.T) {
	s := newTestServer()
	s.creds = Credentials{}
	router := s.Router()

	body := bytes.NewBufferString(`{"username":"","password":""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", body)
	req.Header.Set("content-type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}
