package usecase

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/repository"
)

// In-memory fakes for the repository ports. They mirror the postgres
// implementations closely enough for use-case tests: same not-found errors,
// same ordering, same filter semantics.

type fakeTxManager struct {
	err   error
	calls int
}

func (m *fakeTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	return fn(ctx, repository.NoTX)
}

// ---- users ----

type memUserRepo struct {
	users   map[string]*model.User
	saveErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (r *memUserRepo) Save(_ context.Context, _ repository.Tx, u *model.User) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) FindByTelegramID(_ context.Context, _ repository.Tx, tgID int64) (*model.User, error) {
	for _, u := range r.users {
		if u.TelegramID == tgID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) ListByIDs(_ context.Context, _ repository.Tx, ids []string) ([]*model.User, error) {
	var out []*model.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memUserRepo) CountUsers(_ context.Context, _ repository.Tx) (int, error) {
	return len(r.users), nil
}

func (r *memUserRepo) CountInactiveUsers(_ context.Context, _ repository.Tx, since time.Time) (int, error) {
	n := 0
	for _, u := range r.users {
		if u.LastActiveAt.Before(since) {
			n++
		}
	}
	return n, nil
}

var _ repository.UserRepository = (*memUserRepo)(nil)

// ---- events ----

type memEventRepo struct {
	events  map[string]*model.Event
	saveErr error
	listErr error
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[string]*model.Event)}
}

func (r *memEventRepo) Save(_ context.Context, _ repository.Tx, e *model.Event) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *memEventRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memEventRepo) List(_ context.Context, _ repository.Tx, f repository.EventFilter) ([]*model.Event, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*model.Event
	for _, e := range r.events {
		if !f.From.IsZero() && e.StartsAt.Before(f.From) {
			continue
		}
		if !f.Until.IsZero() && e.StartsAt.After(f.Until) {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.ScaffoldID != "" && (e.ScaffoldID == nil || *e.ScaffoldID != f.ScaffoldID) {
			continue
		}
		if f.CreatedBy != "" && e.CreatedBy != f.CreatedBy {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *memEventRepo) ExistsForOccurrence(_ context.Context, _ repository.Tx, scaffoldID string, startsAt time.Time) (bool, error) {
	for _, e := range r.events {
		if e.ScaffoldID != nil && *e.ScaffoldID == scaffoldID && e.StartsAt.Equal(startsAt) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memEventRepo) FinishBefore(_ context.Context, _ repository.Tx, cutoff time.Time) (int, error) {
	n := 0
	for _, e := range r.events {
		if e.Status == model.EventStatusScheduled && e.EndsAt().Before(cutoff) {
			e.Status = model.EventStatusFinished
			n++
		}
	}
	return n, nil
}

var _ repository.EventRepository = (*memEventRepo)(nil)

// ---- participants ----

type memParticipantRepo struct {
	rows    []*model.Participant // join order
	saveErr error
}

func newMemParticipantRepo() *memParticipantRepo { return &memParticipantRepo{} }

func (r *memParticipantRepo) Save(_ context.Context, _ repository.Tx, p *model.Participant) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	for i, cur := range r.rows {
		if cur.EventID == p.EventID && cur.UserID == p.UserID {
			cp := *p
			r.rows[i] = &cp
			return nil
		}
	}
	cp := *p
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memParticipantRepo) Find(_ context.Context, _ repository.Tx, eventID, userID string) (*model.Participant, error) {
	for _, p := range r.rows {
		if p.EventID == eventID && p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memParticipantRepo) Delete(_ context.Context, _ repository.Tx, eventID, userID string) error {
	for i, p := range r.rows {
		if p.EventID == eventID && p.UserID == userID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memParticipantRepo) ListByEvent(_ context.Context, _ repository.Tx, eventID string) ([]*model.Participant, error) {
	var out []*model.Participant
	for _, p := range r.rows {
		if p.EventID == eventID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memParticipantRepo) CountByStatus(_ context.Context, _ repository.Tx, eventID string, status model.ParticipantStatus) (int, error) {
	n := 0
	for _, p := range r.rows {
		if p.EventID == eventID && p.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *memParticipantRepo) FirstWaitlisted(_ context.Context, _ repository.Tx, eventID string) (*model.Participant, error) {
	for _, p := range r.rows {
		if p.EventID == eventID && p.Status == model.ParticipantStatusWaitlisted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memParticipantRepo) ListEventIDsByUser(_ context.Context, _ repository.Tx, userID string) ([]string, error) {
	var out []string
	for _, p := range r.rows {
		if p.UserID == userID {
			out = append(out, p.EventID)
		}
	}
	return out, nil
}

var _ repository.ParticipantRepository = (*memParticipantRepo)(nil)

// ---- payments ----

type memPaymentRepo struct {
	rows    []*model.Payment
	saveErr error
}

func newMemPaymentRepo() *memPaymentRepo { return &memPaymentRepo{} }

func (r *memPaymentRepo) Save(_ context.Context, _ repository.Tx, p *model.Payment) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *p
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memPaymentRepo) ListByEvent(_ context.Context, _ repository.Tx, eventID string) ([]*model.Payment, error) {
	var out []*model.Payment
	for _, p := range r.rows {
		if p.EventID == eventID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) SumByEvent(_ context.Context, _ repository.Tx, eventID string) (int64, error) {
	var sum int64
	for _, p := range r.rows {
		if p.EventID == eventID {
			sum += p.AmountCents
		}
	}
	return sum, nil
}

func (r *memPaymentRepo) SumAll(_ context.Context, _ repository.Tx) (int64, error) {
	var sum int64
	for _, p := range r.rows {
		sum += p.AmountCents
	}
	return sum, nil
}

var _ repository.PaymentRepository = (*memPaymentRepo)(nil)

// ---- scaffolds ----

type memScaffoldRepo struct {
	scaffolds map[string]*model.Scaffold
	saveErr   error
	listErr   error
}

func newMemScaffoldRepo() *memScaffoldRepo {
	return &memScaffoldRepo{scaffolds: make(map[string]*model.Scaffold)}
}

func (r *memScaffoldRepo) Save(_ context.Context, _ repository.Tx, s *model.Scaffold) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *s
	r.scaffolds[s.ID] = &cp
	return nil
}

func (r *memScaffoldRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Scaffold, error) {
	s, ok := r.scaffolds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memScaffoldRepo) ListActive(_ context.Context, _ repository.Tx) ([]*model.Scaffold, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*model.Scaffold
	for _, s := range r.scaffolds {
		if s.Active {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memScaffoldRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.Scaffold, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*model.Scaffold
	for _, s := range r.scaffolds {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

var _ repository.ScaffoldRepository = (*memScaffoldRepo)(nil)

// ---- shared helpers ----

func testLogger() *zerolog.Logger {
	log := zerolog.New(nil)
	return &log
}

func seedUser(t *testing.T, repo *memUserRepo, tgID int64, username string) *model.User {
	t.Helper()
	u, err := model.NewUser("", tgID, username, "", "")
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	if err := repo.Save(context.Background(), repository.NoTX, u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	return u
}

func seedEvent(t *testing.T, repo *memEventRepo, title string, startsAt time.Time, capacity int, costCents int64) *model.Event {
	t.Helper()
	ev, err := model.NewEvent("", title, "court 1", startsAt, 2*time.Hour, capacity, costCents, "creator-1")
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if err := repo.Save(context.Background(), repository.NoTX, ev); err != nil {
		t.Fatalf("save event: %v", err)
	}
	return ev
}
