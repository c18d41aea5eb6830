package sched

import (
	"context"
	"sync"
	"testing"
	"time"

	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/adapter"
	red "telegram-event-scheduler/internal/infra/redis"
	"telegram-event-scheduler/internal/usecase"
)

const testGroupChatID int64 = -100123456

type sentMessage struct {
	ChatID int64
	Text   string
}

// fakeBot records everything sent through the adapter port.
type fakeBot struct {
	mu       sync.Mutex
	Messages []sentMessage
	Buttons  []sentMessage
}

func (b *fakeBot) SendMessage(ctx context.Context, telegramID int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Messages = append(b.Messages, sentMessage{ChatID: telegramID, Text: text})
	return nil
}

func (b *fakeBot) SendButtons(ctx context.Context, telegramID int64, text string, rows [][]adapter.InlineButton) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Buttons = append(b.Buttons, sentMessage{ChatID: telegramID, Text: text})
	return nil
}

func (b *fakeBot) messageCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Messages)
}

func (b *fakeBot) buttonCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Buttons)
}

func (b *fakeBot) allMessages() []sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sentMessage(nil), b.Messages...)
}

func (b *fakeBot) allButtons() []sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sentMessage(nil), b.Buttons...)
}

// fakeMarkerRedis backs the reminder marker store with an in-memory SetNX.
type fakeMarkerRedis struct {
	red.RedisClient
	mu   sync.Mutex
	keys map[string]bool
	Err  error
}

func (f *fakeMarkerRedis) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	if f.keys == nil {
		f.keys = make(map[string]bool)
	}
	if f.keys[key] {
		return false, nil
	}
	f.keys[key] = true
	return true, nil
}

type fakeEventUC struct {
	usecase.EventUseCase
	UpcomingEvents []*model.Event
	UpcomingErr    error
	Finished       int
	FinishErr      error
}

func (f *fakeEventUC) Upcoming(ctx context.Context) ([]*model.Event, error) {
	return f.UpcomingEvents, f.UpcomingErr
}

func (f *fakeEventUC) FinishPast(ctx context.Context) (int, error) {
	return f.Finished, f.FinishErr
}

type fakeAttendanceUC struct {
	usecase.AttendanceUseCase
	Views map[string]*usecase.RosterView
}

func (f *fakeAttendanceUC) Roster(ctx context.Context, eventID string) (*usecase.RosterView, error) {
	if v, ok := f.Views[eventID]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

type fakeScaffoldUC struct {
	usecase.ScaffoldUseCase
	Created []*model.Event
	Err     error
}

func (f *fakeScaffoldUC) Materialize(ctx context.Context, now time.Time) ([]*model.Event, error) {
	return f.Created, f.Err
}

// fakeLocker hands out a fixed token and records lock traffic.
type fakeLocker struct {
	mu       sync.Mutex
	Held     bool
	Err      error
	Locked   []string
	Unlocked []string
}

func (f *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	if f.Held {
		return "", domain.ErrLockHeld
	}
	f.Locked = append(f.Locked, key)
	return "tok-1", nil
}

func (f *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Unlocked = append(f.Unlocked, key+"/"+token)
	return nil
}

func mustEvent(t *testing.T, title string, startsAt time.Time) *model.Event {
	t.Helper()
	ev, err := model.NewEvent("", title, "court 1", startsAt, 2*time.Hour, 4, 0, "creator-1")
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	return ev
}

// waitFor polls until cond holds or the deadline hits.
func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
