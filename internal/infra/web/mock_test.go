//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
)

// --- Mock Repositories (Ports) ---

type noTx struct{}

type mockTxManager struct{}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, noTx{})
}

type mockUserRepo struct {
	repository.UserRepository // Embed interface for forward compatibility
	mu                        sync.Mutex
	users                     []*model.User
	CountError                error // To simulate errors
}

func (m *mockUserRepo) ListByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []*model.User
	for _, u := range m.users {
		if _, ok := want[u.ID]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

type mockEventRepo struct {
	repository.EventRepository // Embed interface
	mu                         sync.Mutex
	events                     []*model.Event
	ListError                  error
}

func (m *mockEventRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockEventRepo) List(ctx context.Context, tx repository.Tx, f repository.EventFilter) ([]*model.Event, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Event
	for _, ev := range m.events {
		if !f.From.IsZero() && ev.StartsAt.Before(f.From) {
			continue
		}
		if !f.Until.IsZero() && !ev.StartsAt.Before(f.Until) {
			continue
		}
		if f.Status != "" && ev.Status != f.Status {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

type mockParticipantRepo struct {
	repository.ParticipantRepository // Embed interface
	mu                               sync.Mutex
	parts                            []*model.Participant
}

func (m *mockParticipantRepo) ListByEvent(ctx context.Context, tx repository.Tx, eventID string) ([]*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Participant
	for _, p := range m.parts {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockPaymentRepo struct {
	repository.PaymentRepository // Embed interface
	mu                           sync.Mutex
	payments                     []*model.Payment
	SumAllError                  error
}

func (m *mockPaymentRepo) ListByEvent(ctx context.Context, tx repository.Tx, eventID string) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.payments {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) SumAll(ctx context.Context, tx repository.Tx) (int64, error) {
	if m.SumAllError != nil {
		return 0, m.SumAllError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, p := range m.payments {
		sum += p.AmountCents
	}
	return sum, nil
}

type mockScaffoldRepo struct {
	repository.ScaffoldRepository // Embed interface
	mu                            sync.Mutex
	scaffolds                     []*model.Scaffold
}

func (m *mockScaffoldRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Scaffold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Scaffold
	for _, s := range m.scaffolds {
		if s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

// --- Seed helpers ---

func seedEvent(id, title string, startsAt time.Time, capacity int, costCents int64) *model.Event {
	return &model.Event{
		ID:        id,
		Title:     title,
		StartsAt:  startsAt,
		Duration:  2 * time.Hour,
		Capacity:  capacity,
		CostCents: costCents,
		Status:    model.EventStatusScheduled,
		CreatedBy: "creator-1",
		CreatedAt: time.Now(),
	}
}

func seedUser(id string, tgID int64, username string) *model.User {
	return &model.User{ID: id, TelegramID: tgID, Username: username, RegisteredAt: time.Now(), LastActiveAt: time.Now()}
}
